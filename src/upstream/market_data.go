package upstream

import (
	"context"
	"encoding/json"

	"nepse-gateway/src/helpers"
	"nepse-gateway/src/interfaces"
	"nepse-gateway/src/models"
)

// -----------------------------------------------------------------------------
// MarketData decodes the upstream collections into typed models. It sits on
// top of any IUpstream, so when backed by the response cache the typed reads
// share the same memoized payloads as the passthrough routes.
// -----------------------------------------------------------------------------

type MarketData struct {
	Source interfaces.IUpstream
}

// -----------------------------------------------------------------------------

func NewMarketData(source interfaces.IUpstream) *MarketData {
	return &MarketData{Source: source}
}

// -----------------------------------------------------------------------------

func decodeList[T any](ctx context.Context, source interfaces.IUpstream, path string) ([]T, error) {
	raw, err := source.FetchJSON(ctx, path)
	if err != nil {
		return nil, err
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, helpers.NewUpstreamError("unexpected payload shape for "+path, err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (m *MarketData) CompanyList(ctx context.Context) ([]models.MCompanyInfo, error) {
	return decodeList[models.MCompanyInfo](ctx, m.Source, PathCompanyList)
}

// -----------------------------------------------------------------------------

func (m *MarketData) TopTurnover(ctx context.Context) ([]models.MTopTurnover, error) {
	return decodeList[models.MTopTurnover](ctx, m.Source, PathTopTurnover)
}

// -----------------------------------------------------------------------------

func (m *MarketData) TopTransactions(ctx context.Context) ([]models.MTopTransaction, error) {
	return decodeList[models.MTopTransaction](ctx, m.Source, PathTopTransaction)
}

// -----------------------------------------------------------------------------

func (m *MarketData) TopTrades(ctx context.Context) ([]models.MTopTrade, error) {
	return decodeList[models.MTopTrade](ctx, m.Source, PathTopTrade)
}

// -----------------------------------------------------------------------------

func (m *MarketData) TopGainers(ctx context.Context) ([]models.MTopMover, error) {
	return decodeList[models.MTopMover](ctx, m.Source, PathTopGainers)
}

// -----------------------------------------------------------------------------

func (m *MarketData) TopLosers(ctx context.Context) ([]models.MTopMover, error) {
	return decodeList[models.MTopMover](ctx, m.Source, PathTopLosers)
}

// -----------------------------------------------------------------------------

func (m *MarketData) PriceVolume(ctx context.Context) ([]models.MPriceVolumeItem, error) {
	return decodeList[models.MPriceVolumeItem](ctx, m.Source, PathPriceVolume)
}

// -----------------------------------------------------------------------------

// SubIndices re-keys the upstream list by index label.
func (m *MarketData) SubIndices(ctx context.Context) (map[string]models.MSubIndex, error) {
	list, err := decodeList[models.MSubIndex](ctx, m.Source, PathSubIndices)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.MSubIndex, len(list))
	for _, idx := range list {
		out[idx.Index] = idx
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (m *MarketData) MarketStatus(ctx context.Context) (models.MMarketStatus, error) {
	raw, err := m.Source.FetchJSON(ctx, PathMarketStatus)
	if err != nil {
		return models.MMarketStatus{}, err
	}

	var st models.MMarketStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return models.MMarketStatus{}, helpers.NewUpstreamError("unexpected payload shape for "+PathMarketStatus, err)
	}
	return st, nil
}

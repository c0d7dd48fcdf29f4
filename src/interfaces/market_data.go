package interfaces

import (
	"context"

	"nepse-gateway/src/models"
)

// -----------------------------------------------------------------------------
// IMarketData exposes the typed upstream collections the aggregator, the
// market clock and the snapshot updater consume.
// -----------------------------------------------------------------------------

type IMarketData interface {

	// CompanyList returns all listed companies.
	CompanyList(ctx context.Context) ([]models.MCompanyInfo, error)

	// -----------------------------------------------------------------------------

	// TopTurnover returns the top scrips by turnover.
	TopTurnover(ctx context.Context) ([]models.MTopTurnover, error)

	// TopTransactions returns the top scrips by transaction count.
	TopTransactions(ctx context.Context) ([]models.MTopTransaction, error)

	// TopTrades returns the top scrips by traded share quantity.
	TopTrades(ctx context.Context) ([]models.MTopTrade, error)

	// -----------------------------------------------------------------------------

	TopGainers(ctx context.Context) ([]models.MTopMover, error)

	TopLosers(ctx context.Context) ([]models.MTopMover, error)

	// -----------------------------------------------------------------------------

	// PriceVolume returns the per-scrip price/volume snapshot.
	PriceVolume(ctx context.Context) ([]models.MPriceVolumeItem, error)

	// SubIndices returns the live sector sub-indices keyed by index label.
	SubIndices(ctx context.Context) (map[string]models.MSubIndex, error)

	// MarketStatus reports whether the exchange is open.
	MarketStatus(ctx context.Context) (models.MMarketStatus, error)
}

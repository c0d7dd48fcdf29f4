package upstream

import (
	"context"
	"encoding/json"
	"strings"

	"nepse-gateway/src/helpers"
	"nepse-gateway/src/logger"
	"nepse-gateway/src/network"
)

// -----------------------------------------------------------------------------
// Upstream endpoint paths. The route registry and the typed decoders share
// these; the cache keys on them.
// -----------------------------------------------------------------------------

const (
	PathHealth          = "/health"
	PathSummary         = "/Summary"
	PathPriceVolume     = "/PriceVolume"
	PathSupplyDemand    = "/SupplyDemand"
	PathTopGainers      = "/TopGainers"
	PathTopLosers       = "/TopLosers"
	PathTopTrade        = "/TopTenTradeScrips"
	PathTopTurnover     = "/TopTenTurnoverScrips"
	PathTopTransaction  = "/TopTenTransactionScrips"
	PathMarketStatus    = "/IsNepseOpen"
	PathNepseIndex      = "/NepseIndex"
	PathSubIndices      = "/NepseSubIndices"
	PathCompanyList     = "/CompanyList"
	PathSectorScrips    = "/SectorScrips"
	PathSecurityList    = "/SecurityList"
	PathLiveMarket      = "/LiveMarket"
	PathFloorsheet      = "/Floorsheet"
	PathFloorsheetOf    = "/FloorsheetOf"
	PathMarketDepth     = "/MarketDepth"
	PathCompanyDetails  = "/CompanyDetails"
	PathPriceHistory    = "/PriceVolumeHistory"
	PathDailyScripGraph = "/DailyScripPriceGraph"
)

// -----------------------------------------------------------------------------
// Client is the thin request wrapper around the remote data source,
// parameterized by base URL. Implements interfaces.IUpstream.
// -----------------------------------------------------------------------------

type Client struct {
	BaseURL string
	Network *network.Manager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewClient(baseURL string, netMgr *network.Manager, log *logger.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// FetchJSON performs a GET against baseURL+path and returns the raw payload.
// The path may carry a query string (e.g. "/CompanyDetails?symbol=NABIL").
func (c *Client) FetchJSON(ctx context.Context, path string) (json.RawMessage, error) {
	body, err := c.Network.Get(ctx, c.BaseURL+path, nil)
	if err != nil {
		return nil, helpers.NewUpstreamError("upstream fetch failed for "+path, err)
	}

	if !json.Valid(body) {
		return nil, helpers.NewUpstreamError("upstream returned malformed JSON for "+path, nil)
	}

	return json.RawMessage(body), nil
}

package aggregator

import (
	"context"

	"nepse-gateway/src/interfaces"
	"nepse-gateway/src/logger"
	"nepse-gateway/src/models"
)

// -----------------------------------------------------------------------------
// Aggregator assembles the market overview from the per-endpoint feeds. The
// upstream API has no combined view, so the overview joins the top-ten
// collections, price/volume and sub-index feeds by symbol on every request.
// -----------------------------------------------------------------------------

// sectorSubIndexLabels maps company sector names to the sub-index display
// name used in the sub-indices feed.
var sectorSubIndexLabels = map[string]string{
	"Commercial Banks":             "Banking SubIndex",
	"Development Banks":            "Development Bank Index",
	"Finance":                      "Finance Index",
	"Hotels And Tourism":           "Hotels And Tourism Index",
	"Hydro Power":                  "HydroPower Index",
	"Investment":                   "Investment Index",
	"Life Insurance":               "Life Insurance",
	"Manufacturing And Processing": "Manufacturing And Processing",
	"Microfinance":                 "Microfinance Index",
	"Mutual Fund":                  "Mutual Fund",
	"Non Life Insurance":           "Non Life Insurance",
	"Others":                       "Others Index",
	"Tradings":                     "Trading Index",
}

type Aggregator struct {
	Data   interfaces.IMarketData
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAggregator(data interfaces.IMarketData, log *logger.Logger) *Aggregator {
	return &Aggregator{Data: data, Logger: log}
}

// -----------------------------------------------------------------------------

// BuildMarketOverview fetches every contributing feed and joins them into
// per-scrip and per-sector views. Scrips with a zero last traded price or a
// zero previous close are dropped; those are halted or freshly listed
// securities with no usable day data.
func (a *Aggregator) BuildMarketOverview(ctx context.Context) (models.MMarketOverview, error) {
	var overview models.MMarketOverview

	companies, err := a.Data.CompanyList(ctx)
	if err != nil {
		return overview, err
	}
	turnovers, err := a.Data.TopTurnover(ctx)
	if err != nil {
		return overview, err
	}
	transactions, err := a.Data.TopTransactions(ctx)
	if err != nil {
		return overview, err
	}
	trades, err := a.Data.TopTrades(ctx)
	if err != nil {
		return overview, err
	}
	gainers, err := a.Data.TopGainers(ctx)
	if err != nil {
		return overview, err
	}
	losers, err := a.Data.TopLosers(ctx)
	if err != nil {
		return overview, err
	}
	priceVolume, err := a.Data.PriceVolume(ctx)
	if err != nil {
		return overview, err
	}
	subIndices, err := a.Data.SubIndices(ctx)
	if err != nil {
		return overview, err
	}

	turnoverBySymbol := make(map[string]models.MTopTurnover, len(turnovers))
	for _, t := range turnovers {
		turnoverBySymbol[t.Symbol] = t
	}
	transactionBySymbol := make(map[string]models.MTopTransaction, len(transactions))
	for _, t := range transactions {
		transactionBySymbol[t.Symbol] = t
	}
	tradeBySymbol := make(map[string]models.MTopTrade, len(trades))
	for _, t := range trades {
		tradeBySymbol[t.Symbol] = t
	}
	moverBySymbol := make(map[string]models.MTopMover, len(gainers)+len(losers))
	for _, m := range losers {
		moverBySymbol[m.Symbol] = m
	}
	for _, m := range gainers {
		moverBySymbol[m.Symbol] = m
	}
	priceBySymbol := make(map[string]models.MPriceVolumeItem, len(priceVolume))
	for _, p := range priceVolume {
		priceBySymbol[p.Symbol] = p
	}

	scrips := make(map[string]models.MScripDetail)
	sectors := make(map[string]models.MSectorDetail)

	for _, company := range companies {
		sector := company.SectorName
		if _, ok := sectors[sector]; !ok {
			sectors[sector] = models.MSectorDetail{SectorName: sector}
		}

		price := priceBySymbol[company.Symbol]
		mover := moverBySymbol[company.Symbol]

		detail := models.MScripDetail{
			Symbol:              company.Symbol,
			Sector:              sector,
			Name:                company.SecurityName,
			Category:            company.InstrumentType,
			Turnover:            turnoverBySymbol[company.Symbol].Turnover,
			Transaction:         transactionBySymbol[company.Symbol].TotalTrades,
			Volume:              tradeBySymbol[company.Symbol].ShareTraded,
			PreviousClose:       price.PreviousClose,
			LastUpdatedDateTime: price.LastUpdatedDateTime,
			LTP:                 mover.LTP,
			PointChange:         mover.PointChange,
			PercentageChange:    mover.PercentageChange,
		}

		if detail.LTP == 0 || detail.PreviousClose == 0 {
			continue
		}

		scrips[company.Symbol] = detail

		agg := sectors[sector]
		agg.Transaction += detail.Transaction
		agg.Volume += detail.Volume
		agg.TotalTurnover += detail.Turnover
		sectors[sector] = agg
	}

	for sector, agg := range sectors {
		label, ok := sectorSubIndexLabels[sector]
		if !ok {
			a.Logger.Warning("No sub-index mapping for sector %q", sector)
			sectors[sector] = agg
			continue
		}
		sub, ok := subIndices[label]
		if !ok {
			a.Logger.Warning("Sub-index %q missing from upstream feed", label)
		}
		agg.Turnover = sub
		sectors[sector] = agg
	}

	overview.ScripsDetails = scrips
	overview.SectorsDetails = sectors
	return overview, nil
}

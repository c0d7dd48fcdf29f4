package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"nepse-gateway/src/aggregator"
	"nepse-gateway/src/helpers"
	"nepse-gateway/src/interfaces"
	"nepse-gateway/src/logger"
	"nepse-gateway/src/models"
	"nepse-gateway/src/upstream"
	"nepse-gateway/src/utils"
	"nepse-gateway/src/validator"
)

// -----------------------------------------------------------------------------
// Registry maps logical route names to their execution recipe. Every
// transport (HTTP, WebSocket, queue, tool calls) resolves requests through
// the same table, so validation, market-state gating and response shaping
// behave identically no matter how a request arrives.
// -----------------------------------------------------------------------------

type RouteKind int

const (
	// RoutePassthrough relays the upstream payload untouched.
	RoutePassthrough RouteKind = iota
	// RouteSymbolPassthrough relays upstream but requires a valid symbol param.
	RouteSymbolPassthrough
	// RouteComposite computes its payload from one or more upstream feeds.
	RouteComposite
)

type MarketState int

const (
	StateAny MarketState = iota
	StateOpen
	StateClosed
)

type compositeFunc func(ctx context.Context, r *Registry) (json.RawMessage, error)

type MRouteDescriptor struct {
	Name         string
	Kind         RouteKind
	Path         string
	Precondition MarketState
	Composite    compositeFunc
}

// -----------------------------------------------------------------------------

type Registry struct {
	Source     interfaces.IUpstream
	Data       interfaces.IMarketData
	Validator  *validator.Validator
	Clock      *utils.MarketClock
	Aggregator *aggregator.Aggregator
	Logger     *logger.Logger

	routes map[string]MRouteDescriptor
}

// -----------------------------------------------------------------------------

func NewRegistry(source interfaces.IUpstream, data interfaces.IMarketData, v *validator.Validator, clock *utils.MarketClock, agg *aggregator.Aggregator, log *logger.Logger) *Registry {
	r := &Registry{
		Source:     source,
		Data:       data,
		Validator:  v,
		Clock:      clock,
		Aggregator: agg,
		Logger:     log,
	}
	r.routes = buildRouteTable()
	return r
}

// -----------------------------------------------------------------------------

func passthrough(name, path string) MRouteDescriptor {
	return MRouteDescriptor{Name: name, Kind: RoutePassthrough, Path: path}
}

func buildRouteTable() map[string]MRouteDescriptor {
	descriptors := []MRouteDescriptor{
		// Market snapshots
		passthrough("PriceVolume", upstream.PathPriceVolume),
		passthrough("TopGainers", upstream.PathTopGainers),
		passthrough("TopLosers", upstream.PathTopLosers),
		passthrough("TopTenTradeScrips", upstream.PathTopTrade),
		passthrough("TopTenTurnoverScrips", upstream.PathTopTurnover),
		passthrough("TopTenTransactionScrips", upstream.PathTopTransaction),
		passthrough("IsNepseOpen", upstream.PathMarketStatus),
		passthrough("CompanyList", upstream.PathCompanyList),
		passthrough("SectorScrips", upstream.PathSectorScrips),
		passthrough("SecurityList", upstream.PathSecurityList),

		// Open-market only
		{Name: "LiveMarket", Kind: RoutePassthrough, Path: upstream.PathLiveMarket, Precondition: StateOpen},
		{Name: "SupplyDemand", Kind: RoutePassthrough, Path: upstream.PathSupplyDemand, Precondition: StateOpen},
		{Name: "MarketDepth", Kind: RouteSymbolPassthrough, Path: upstream.PathMarketDepth, Precondition: StateOpen},

		// Closed-market only
		{Name: "Floorsheet", Kind: RoutePassthrough, Path: upstream.PathFloorsheet, Precondition: StateClosed},
		{Name: "FloorsheetOf", Kind: RouteSymbolPassthrough, Path: upstream.PathFloorsheetOf, Precondition: StateClosed},

		// Symbol-scoped
		{Name: "CompanyDetails", Kind: RouteSymbolPassthrough, Path: upstream.PathCompanyDetails},
		{Name: "PriceVolumeHistory", Kind: RouteSymbolPassthrough, Path: upstream.PathPriceHistory},
		{Name: "DailyScripPriceGraph", Kind: RouteSymbolPassthrough, Path: upstream.PathDailyScripGraph},

		// Composites
		{Name: "Summary", Kind: RouteComposite, Composite: summaryComposite},
		{Name: "NepseIndex", Kind: RouteComposite, Composite: keyedIndexComposite(upstream.PathNepseIndex)},
		{Name: "NepseSubIndices", Kind: RouteComposite, Composite: keyedIndexComposite(upstream.PathSubIndices)},
		{Name: "TradeTurnoverTransactionSubindices", Kind: RouteComposite, Composite: marketOverviewComposite},

		// Index graphs
		passthrough("DailyNepseIndexGraph", "/DailyNepseIndexGraph"),
		passthrough("DailySensitiveIndexGraph", "/DailySensitiveIndexGraph"),
		passthrough("DailyFloatIndexGraph", "/DailyFloatIndexGraph"),
		passthrough("DailySensitiveFloatIndexGraph", "/DailySensitiveFloatIndexGraph"),
		passthrough("DailyBankSubindexGraph", "/DailyBankSubindexGraph"),
		passthrough("DailyDevelopmentBankSubindexGraph", "/DailyDevelopmentBankSubindexGraph"),
		passthrough("DailyFinanceSubindexGraph", "/DailyFinanceSubindexGraph"),
		passthrough("DailyHotelTourismSubindexGraph", "/DailyHotelTourismSubindexGraph"),
		passthrough("DailyHydroPowerSubindexGraph", "/DailyHydroPowerSubindexGraph"),
		passthrough("DailyInvestmentSubindexGraph", "/DailyInvestmentSubindexGraph"),
		passthrough("DailyLifeInsuranceSubindexGraph", "/DailyLifeInsuranceSubindexGraph"),
		passthrough("DailyManufacturingProcessingSubindexGraph", "/DailyManufacturingProcessingSubindexGraph"),
		passthrough("DailyMicrofinanceSubindexGraph", "/DailyMicrofinanceSubindexGraph"),
		passthrough("DailyMutualFundSubindexGraph", "/DailyMutualFundSubindexGraph"),
		passthrough("DailyNonLifeInsuranceSubindexGraph", "/DailyNonLifeInsuranceSubindexGraph"),
		passthrough("DailyOthersSubindexGraph", "/DailyOthersSubindexGraph"),
		passthrough("DailyTradingSubindexGraph", "/DailyTradingSubindexGraph"),
	}

	table := make(map[string]MRouteDescriptor, len(descriptors))
	for _, d := range descriptors {
		table[d.Name] = d
	}
	return table
}

// -----------------------------------------------------------------------------

// Routes returns the registered route names, for the index page and tool
// registration.
func (r *Registry) Routes() []MRouteDescriptor {
	out := make([]MRouteDescriptor, 0, len(r.routes))
	for _, d := range r.routes {
		out = append(out, d)
	}
	return out
}

// Lookup resolves a route name, tolerating a leading slash.
func (r *Registry) Lookup(route string) (MRouteDescriptor, bool) {
	d, ok := r.routes[strings.TrimPrefix(route, "/")]
	return d, ok
}

// -----------------------------------------------------------------------------

// Execute runs one logical request. It returns a RouteNotFoundError,
// ValidationError or MarketStateError for caller mistakes and an
// UpstreamError when the data source fails; transports translate those into
// their own status codes.
func (r *Registry) Execute(ctx context.Context, route string, params map[string]string) (json.RawMessage, error) {
	desc, ok := r.Lookup(route)
	if !ok {
		return nil, helpers.NewRouteNotFoundError(route)
	}

	switch desc.Precondition {
	case StateOpen:
		if !r.Clock.IsOpen(ctx) {
			return nil, helpers.NewMarketStateError("OPEN")
		}
	case StateClosed:
		if r.Clock.IsOpen(ctx) {
			return nil, helpers.NewMarketStateError("CLOSE")
		}
	}

	switch desc.Kind {
	case RouteComposite:
		return desc.Composite(ctx, r)

	case RouteSymbolPassthrough:
		check := r.Validator.ValidateStockSymbol(params["symbol"])
		if !check.Valid {
			return nil, &helpers.ValidationError{
				GatewayError: helpers.GatewayError{Message: check.Error},
				Symbol:       check.Symbol,
				Suggestions:  check.Suggestions,
			}
		}
		path := fmt.Sprintf("%s?symbol=%s", desc.Path, url.QueryEscape(check.Symbol))
		return r.Source.FetchJSON(ctx, path)

	default:
		return r.Source.FetchJSON(ctx, desc.Path)
	}
}

// -----------------------------------------------------------------------------
// Composite recipes
// -----------------------------------------------------------------------------

// summaryComposite flattens the summary list into a detail->value object.
func summaryComposite(ctx context.Context, r *Registry) (json.RawMessage, error) {
	raw, err := r.Source.FetchJSON(ctx, upstream.PathSummary)
	if err != nil {
		return nil, err
	}

	var items []models.MSummaryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, helpers.NewUpstreamError("unexpected payload shape for "+upstream.PathSummary, err)
	}

	out := make(map[string]float64, len(items))
	for _, item := range items {
		out[item.Detail] = item.Value
	}
	return json.Marshal(out)
}

// keyedIndexComposite re-keys an index list by its display name.
func keyedIndexComposite(path string) compositeFunc {
	return func(ctx context.Context, r *Registry) (json.RawMessage, error) {
		raw, err := r.Source.FetchJSON(ctx, path)
		if err != nil {
			return nil, err
		}

		var indices []models.MSubIndex
		if err := json.Unmarshal(raw, &indices); err != nil {
			return nil, helpers.NewUpstreamError("unexpected payload shape for "+path, err)
		}

		out := make(map[string]models.MSubIndex, len(indices))
		for _, idx := range indices {
			out[idx.Index] = idx
		}
		return json.Marshal(out)
	}
}

func marketOverviewComposite(ctx context.Context, r *Registry) (json.RawMessage, error) {
	overview, err := r.Aggregator.BuildMarketOverview(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(overview)
}

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"nepse-gateway/src/dispatch"
	"nepse-gateway/src/logger"
	"nepse-gateway/src/ratelimit"
	"nepse-gateway/src/validator"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// -----------------------------------------------------------------------------
// MCPServer exposes the logical routes as tools so LLM agents can query
// market data over the Model Context Protocol. Tool calls resolve through
// the same registry as every other transport.
// -----------------------------------------------------------------------------

const mcpClientIdentity = "mcp"

type toolBinding struct {
	Name        string
	Route       string
	Description string
	NeedsSymbol bool
}

var toolBindings = []toolBinding{
	{Name: "market_summary", Route: "Summary", Description: "Overall market summary: total turnover, traded shares, transactions and market cap"},
	{Name: "nepse_index", Route: "NepseIndex", Description: "Current NEPSE index values keyed by index name"},
	{Name: "nepse_sub_indices", Route: "NepseSubIndices", Description: "Current sectoral sub-index values keyed by index name"},
	{Name: "price_volume", Route: "PriceVolume", Description: "Price and volume snapshot for every listed scrip"},
	{Name: "live_market", Route: "LiveMarket", Description: "Live trading data; only available while the market is open"},
	{Name: "supply_demand", Route: "SupplyDemand", Description: "Market supply and demand; only available while the market is open"},
	{Name: "top_gainers", Route: "TopGainers", Description: "Top gaining scrips of the day"},
	{Name: "top_losers", Route: "TopLosers", Description: "Top losing scrips of the day"},
	{Name: "top_trade_scrips", Route: "TopTenTradeScrips", Description: "Top ten scrips by traded share quantity"},
	{Name: "top_turnover_scrips", Route: "TopTenTurnoverScrips", Description: "Top ten scrips by turnover"},
	{Name: "top_transaction_scrips", Route: "TopTenTransactionScrips", Description: "Top ten scrips by transaction count"},
	{Name: "is_market_open", Route: "IsNepseOpen", Description: "Current market open/closed status"},
	{Name: "company_list", Route: "CompanyList", Description: "All listed companies with their sectors"},
	{Name: "sector_scrips", Route: "SectorScrips", Description: "Scrip symbols grouped by sector"},
	{Name: "security_list", Route: "SecurityList", Description: "All registered securities with listing status"},
	{Name: "floorsheet", Route: "Floorsheet", Description: "Full trade floorsheet; only available after market close"},
	{Name: "market_overview", Route: "TradeTurnoverTransactionSubindices", Description: "Combined per-scrip and per-sector overview joining trades, turnover, transactions and sub-indices"},
	{Name: "market_depth", Route: "MarketDepth", Description: "Order book depth for one scrip; only available while the market is open", NeedsSymbol: true},
	{Name: "company_details", Route: "CompanyDetails", Description: "Company profile and fundamentals for one scrip", NeedsSymbol: true},
	{Name: "floorsheet_of", Route: "FloorsheetOf", Description: "Floorsheet entries of one scrip; only available after market close", NeedsSymbol: true},
	{Name: "price_volume_history", Route: "PriceVolumeHistory", Description: "Historical price and volume series for one scrip", NeedsSymbol: true},
	{Name: "daily_scrip_price_graph", Route: "DailyScripPriceGraph", Description: "Intraday price graph points for one scrip", NeedsSymbol: true},
}

// -----------------------------------------------------------------------------

type MCPServer struct {
	Host      string
	Port      int
	Version   string
	Logger    *logger.Logger
	Registry  *dispatch.Registry
	Limiter   *ratelimit.SlidingWindowLimiter
	Validator *validator.Validator

	httpServer *server.StreamableHTTPServer
}

// -----------------------------------------------------------------------------

func NewMCPServer(host string, port int, version string, registry *dispatch.Registry, limiter *ratelimit.SlidingWindowLimiter, v *validator.Validator, log *logger.Logger) *MCPServer {
	return &MCPServer{
		Host:      host,
		Port:      port,
		Version:   version,
		Logger:    log,
		Registry:  registry,
		Limiter:   limiter,
		Validator: v,
	}
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (m *MCPServer) Start() error {
	s := server.NewMCPServer("nepse-gateway", m.Version, server.WithToolCapabilities(false))

	for _, binding := range toolBindings {
		m.registerRouteTool(s, binding)
	}
	m.registerValidationTools(s)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	m.Logger.Info("MCP server listening on %s", addr)

	m.httpServer = server.NewStreamableHTTPServer(s)

	go func() {
		if err := m.httpServer.Start(addr); err != nil {
			m.Logger.Error("MCP server stopped: %v", err)
		}
	}()
	return nil
}

// -----------------------------------------------------------------------------

func (m *MCPServer) Stop() error {
	if m.httpServer != nil {
		return m.httpServer.Shutdown(context.Background())
	}
	return nil
}

// -----------------------------------------------------------------------------
// Route Tools
// -----------------------------------------------------------------------------

func (m *MCPServer) registerRouteTool(s *server.MCPServer, binding toolBinding) {
	opts := []mcp.ToolOption{mcp.WithDescription(binding.Description)}
	if binding.NeedsSymbol {
		opts = append(opts, mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol, e.g. NABIL"),
		))
	}

	tool := mcp.NewTool(binding.Name, opts...)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !m.admit(binding.Route) {
			return mcp.NewToolResultError("rate limit exceeded, retry later"), nil
		}

		params := map[string]string{}
		if binding.NeedsSymbol {
			symbol, err := request.RequireString("symbol")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			params["symbol"] = symbol
		}

		payload, err := m.Registry.Execute(ctx, binding.Route, params)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	})
}

// -----------------------------------------------------------------------------
// Validation Tools
// -----------------------------------------------------------------------------

func (m *MCPServer) registerValidationTools(s *server.MCPServer) {
	validateStock := mcp.NewTool("validate_stock_symbol",
		mcp.WithDescription("Check whether a stock symbol is listed; suggests alternatives for unknown symbols"),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Stock symbol to validate")),
	)
	s.AddTool(validateStock, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return m.jsonResult(m.Validator.ValidateStockSymbol(symbol))
	})

	validateIndex := mcp.NewTool("validate_index_name",
		mcp.WithDescription("Check whether an index name is a known NEPSE index or sub-index"),
		mcp.WithString("index_name", mcp.Required(), mcp.Description("Index display name to validate")),
	)
	s.AddTool(validateIndex, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("index_name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return m.jsonResult(m.Validator.ValidateIndexName(name))
	})

	searchSymbol := mcp.NewTool("search_symbol_by_company",
		mcp.WithDescription("Find stock symbols by company name, exact matches first"),
		mcp.WithString("company_name", mcp.Required(), mcp.Description("Full or partial company name")),
	)
	s.AddTool(searchSymbol, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("company_name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return m.jsonResult(m.Validator.FindSymbolByCompanyName(name))
	})

	lookupName := mcp.NewTool("company_name_of_symbol",
		mcp.WithDescription("Look up the registered company name for a stock symbol"),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Stock symbol to look up")),
	)
	s.AddTool(lookupName, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return m.jsonResult(m.Validator.FindCompanyNameBySymbol(symbol))
	})

	stats := mcp.NewTool("validation_stats",
		mcp.WithDescription("Statistics about the loaded stock map and known indices"),
	)
	s.AddTool(stats, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return m.jsonResult(m.Validator.Stats())
	})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (m *MCPServer) admit(route string) bool {
	return m.Limiter.Admit(mcpClientIdentity, route).Allowed
}

func (m *MCPServer) jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

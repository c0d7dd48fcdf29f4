package models

// -----------------------------------------------------------------------------
// Upstream payload shapes. Only the fields the gateway reads are declared;
// everything else passes through as raw JSON. Missing keys decode to zero
// values, matching the defensive defaults the aggregator relies on.
// -----------------------------------------------------------------------------

// MStockRecord is one entry of the persisted stock map snapshot.
type MStockRecord struct {
	Name           string `json:"name"`
	Sector         string `json:"sector"`
	InternalSector string `json:"internalSector"`
}

// -----------------------------------------------------------------------------

type MCompanyInfo struct {
	Symbol         string `json:"symbol"`
	SecurityName   string `json:"securityName"`
	SectorName     string `json:"sectorName"`
	InstrumentType string `json:"instrumentType"`
}

type MSecurity struct {
	Symbol       string `json:"symbol"`
	SecurityName string `json:"securityName"`
	ActiveStatus string `json:"activeStatus"`
}

// -----------------------------------------------------------------------------

type MTopTurnover struct {
	Symbol       string  `json:"symbol"`
	Turnover     float64 `json:"turnover"`
	ClosingPrice float64 `json:"closingPrice"`
	SecurityName string  `json:"securityName"`
}

type MTopTransaction struct {
	Symbol          string  `json:"symbol"`
	TotalTrades     int64   `json:"totalTrades"`
	LastTradedPrice float64 `json:"lastTradedPrice"`
	SecurityName    string  `json:"securityName"`
}

type MTopTrade struct {
	Symbol       string  `json:"symbol"`
	ShareTraded  int64   `json:"shareTraded"`
	ClosingPrice float64 `json:"closingPrice"`
	SecurityName string  `json:"securityName"`
}

// MTopMover covers both the gainers and losers collections.
type MTopMover struct {
	Symbol           string  `json:"symbol"`
	LTP              float64 `json:"ltp"`
	PointChange      float64 `json:"pointChange"`
	PercentageChange float64 `json:"percentageChange"`
	SecurityName     string  `json:"securityName"`
}

type MPriceVolumeItem struct {
	Symbol              string  `json:"symbol"`
	SecurityName        string  `json:"securityName"`
	LastTradedPrice     float64 `json:"lastTradedPrice"`
	PreviousClose       float64 `json:"previousClose"`
	TotalTradeQuantity  int64   `json:"totalTradeQuantity"`
	PercentageChange    float64 `json:"percentageChange"`
	LastUpdatedDateTime string  `json:"lastUpdatedDateTime"`
}

type MSummaryItem struct {
	Detail string  `json:"detail"`
	Value  float64 `json:"value"`
}

type MSubIndex struct {
	ID           int64   `json:"id"`
	Index        string  `json:"index"`
	Change       float64 `json:"change"`
	PerChange    float64 `json:"perChange"`
	CurrentValue float64 `json:"currentValue"`
}

type MMarketStatus struct {
	IsOpen string `json:"isOpen"`
	AsOf   string `json:"asOf"`
	ID     int64  `json:"id"`
}

// -----------------------------------------------------------------------------
// Aggregated market overview. Request-scoped, never persisted.
// -----------------------------------------------------------------------------

type MScripDetail struct {
	Symbol              string  `json:"symbol"`
	Sector              string  `json:"sector"`
	Turnover            float64 `json:"Turnover"`
	Transaction         int64   `json:"transaction"`
	Volume              int64   `json:"volume"`
	PreviousClose       float64 `json:"previousClose"`
	LastUpdatedDateTime string  `json:"lastUpdatedDateTime"`
	Name                string  `json:"name"`
	Category            string  `json:"category"`
	PointChange         float64 `json:"pointChange"`
	PercentageChange    float64 `json:"percentageChange"`
	LTP                 float64 `json:"ltp"`
}

type MSectorDetail struct {
	Transaction   int64     `json:"transaction"`
	Volume        int64     `json:"volume"`
	TotalTurnover float64   `json:"totalTurnover"`
	Turnover      MSubIndex `json:"turnover"`
	SectorName    string    `json:"sectorName"`
}

type MMarketOverview struct {
	ScripsDetails  map[string]MScripDetail  `json:"scripsDetails"`
	SectorsDetails map[string]MSectorDetail `json:"sectorsDetails"`
}

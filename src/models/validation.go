package models

// -----------------------------------------------------------------------------
// Validation results. The JSON field names mirror the HTTP payloads the
// validation endpoints serve.
// -----------------------------------------------------------------------------

type MStockValidation struct {
	Valid       bool          `json:"valid"`
	Symbol      string        `json:"symbol,omitempty"`
	Info        *MStockRecord `json:"info,omitempty"`
	Error       string        `json:"error,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

type MIndexValidation struct {
	Valid            bool     `json:"valid"`
	IndexName        string   `json:"index_name,omitempty"`
	Error            string   `json:"error,omitempty"`
	AvailableIndices []string `json:"available_indices,omitempty"`
}

// -----------------------------------------------------------------------------

type MSymbolMatch struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Exact  bool   `json:"exact"`
}

type MSymbolSearchResult struct {
	Found        bool           `json:"found"`
	Matches      []MSymbolMatch `json:"matches"`
	TotalMatches int            `json:"totalMatches"`
}

type MReverseLookupResult struct {
	Found       bool          `json:"found"`
	Symbol      string        `json:"symbol"`
	CompanyName string        `json:"companyName,omitempty"`
	FullInfo    *MStockRecord `json:"fullInfo,omitempty"`
}

// -----------------------------------------------------------------------------

type MValidatorStats struct {
	TotalStocks      int      `json:"total_stocks"`
	TotalIndices     int      `json:"total_indices"`
	SampleStocks     []string `json:"sample_stocks"`
	AvailableIndices []string `json:"available_indices"`
}

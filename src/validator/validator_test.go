package validator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"nepse-gateway/src/logger"
	"nepse-gateway/src/models"

	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func writeSnapshot(t *testing.T, stocks map[string]models.MStockRecord) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stockmap.json")
	payload, err := json.Marshal(stocks)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0644))
	return path
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()

	path := writeSnapshot(t, map[string]models.MStockRecord{
		"NABIL": {Name: "Nabil Bank Limited", Sector: "Commercial Banks", InternalSector: "Banking SubIndex"},
		"NICA":  {Name: "NIC Asia Bank Limited", Sector: "Commercial Banks", InternalSector: "Banking SubIndex"},
		"NHDL":  {Name: "Nepal Hydro Developer Ltd.", Sector: "Hydro Power", InternalSector: "HydroPower Index"},
		"NLIC":  {Name: "Nepal Life Insurance Company Limited", Sector: "Life Insurance", InternalSector: "Life Insurance"},
		"ZAPPY": {Name: "Zappy Industries Limited", Sector: "Others", InternalSector: "Others Index"},
		"ZBEST": {Name: "Zbest Trading Limited", Sector: "Tradings", InternalSector: "Trading Index"},
		"ZCORP": {Name: "Zcorp Holdings Limited", Sector: "Others", InternalSector: "Others Index"},
		"ZDELT": {Name: "Zdelta Cement Limited", Sector: "Manufacturing And Processing", InternalSector: "Manufacturing And Pr."},
		"ZECHO": {Name: "Zecho Foods Limited", Sector: "Manufacturing And Processing", InternalSector: "Manufacturing And Pr."},
		"ZFOXT": {Name: "Zfox Textiles Limited", Sector: "Manufacturing And Processing", InternalSector: "Manufacturing And Pr."},
	})

	return NewValidator(path, logger.NewLogger("ERROR", "test"))
}

// -----------------------------------------------------------------------------
// Symbol validation
// -----------------------------------------------------------------------------

func TestValidateStockSymbolCaseInsensitive(t *testing.T) {
	v := newTestValidator(t)

	for _, input := range []string{"NABIL", "nabil", " Nabil "} {
		result := v.ValidateStockSymbol(input)
		require.True(t, result.Valid, "input %q", input)
		require.Equal(t, "NABIL", result.Symbol)
		require.NotNil(t, result.Info)
		require.Equal(t, "Nabil Bank Limited", result.Info.Name)
	}
}

// -----------------------------------------------------------------------------

func TestValidateStockSymbolEmpty(t *testing.T) {
	v := newTestValidator(t)

	result := v.ValidateStockSymbol("  ")
	require.False(t, result.Valid)
	require.Contains(t, result.Error, "required")
	require.Empty(t, result.Suggestions)
}

// -----------------------------------------------------------------------------

func TestValidateStockSymbolNoSharedPrefix(t *testing.T) {
	v := newTestValidator(t)

	// No snapshot symbol starts with "ZZ", so nothing qualifies
	result := v.ValidateStockSymbol("ZZZINVALID")
	require.False(t, result.Valid)
	require.Empty(t, result.Suggestions)
}

// -----------------------------------------------------------------------------

func TestValidateStockSymbolSuggestionsSharePrefix(t *testing.T) {
	v := newTestValidator(t)

	result := v.ValidateStockSymbol("NAXYZ")
	require.False(t, result.Valid)
	require.Equal(t, []string{"NABIL"}, result.Suggestions)
}

// -----------------------------------------------------------------------------

func TestValidateStockSymbolSuggestionsCappedAndSorted(t *testing.T) {
	// Six symbols share the "ZA" prefix; suggestions cap at the first five
	// alphabetically.
	path := writeSnapshot(t, map[string]models.MStockRecord{
		"ZAAAA": {Name: "A"}, "ZABBB": {Name: "B"}, "ZACCC": {Name: "C"},
		"ZADDD": {Name: "D"}, "ZAEEE": {Name: "E"}, "ZAFFF": {Name: "F"},
	})
	v := NewValidator(path, logger.NewLogger("ERROR", "test"))

	result := v.ValidateStockSymbol("ZAZZZ")
	require.False(t, result.Valid)
	require.Equal(t, []string{"ZAAAA", "ZABBB", "ZACCC", "ZADDD", "ZAEEE"}, result.Suggestions)
}

// -----------------------------------------------------------------------------
// Index validation
// -----------------------------------------------------------------------------

func TestValidateIndexName(t *testing.T) {
	v := newTestValidator(t)

	require.True(t, v.ValidateIndexName("Banking SubIndex").Valid)
	require.True(t, v.ValidateIndexName("NEPSE Index").Valid)
	// Legacy spellings stay accepted
	require.True(t, v.ValidateIndexName("Development Bank Ind.").Valid)
	require.True(t, v.ValidateIndexName("Manufacturing And Pr.").Valid)

	// Case-sensitive by contract
	result := v.ValidateIndexName("banking subindex")
	require.False(t, result.Valid)
	require.NotEmpty(t, result.AvailableIndices)

	result = v.ValidateIndexName("")
	require.False(t, result.Valid)
	require.Contains(t, result.Error, "required")
}

// -----------------------------------------------------------------------------
// Company-name search
// -----------------------------------------------------------------------------

func TestFindSymbolByCompanyNameExactBeforePartial(t *testing.T) {
	v := newTestValidator(t)

	result := v.FindSymbolByCompanyName("Nepal Hydro Developer")
	require.True(t, result.Found)
	require.NotEmpty(t, result.Matches)
	require.Equal(t, "NHDL", result.Matches[0].Symbol)
	require.True(t, result.Matches[0].Exact)
}

// -----------------------------------------------------------------------------

func TestFindSymbolByCompanyNamePartial(t *testing.T) {
	v := newTestValidator(t)

	result := v.FindSymbolByCompanyName("Nepal")
	require.True(t, result.Found)

	symbols := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		require.False(t, m.Exact)
		symbols = append(symbols, m.Symbol)
	}
	require.ElementsMatch(t, []string{"NHDL", "NLIC"}, symbols)
}

// -----------------------------------------------------------------------------

func TestFindSymbolByCompanyNameStripsSuffix(t *testing.T) {
	v := newTestValidator(t)

	result := v.FindSymbolByCompanyName("Nabil Bank Limited")
	require.True(t, result.Found)
	require.Equal(t, "NABIL", result.Matches[0].Symbol)
	require.True(t, result.Matches[0].Exact)

	// Same company without the suffix still matches exactly
	result = v.FindSymbolByCompanyName("nabil bank")
	require.True(t, result.Found)
	require.Equal(t, "NABIL", result.Matches[0].Symbol)
	require.True(t, result.Matches[0].Exact)
}

// -----------------------------------------------------------------------------

func TestFindSymbolByCompanyNameSkipsLeadingArticle(t *testing.T) {
	v := newTestValidator(t)

	// The leading article is skipped; "nepal" drives the search.
	result := v.FindSymbolByCompanyName("The Nepal Hydro")
	require.True(t, result.Found)

	symbols := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		symbols = append(symbols, m.Symbol)
	}
	require.Contains(t, symbols, "NHDL")
}

// -----------------------------------------------------------------------------

func TestFindSymbolByCompanyNameNoUsableToken(t *testing.T) {
	v := newTestValidator(t)

	require.False(t, v.FindSymbolByCompanyName("").Found)
	require.False(t, v.FindSymbolByCompanyName("the").Found)
}

// -----------------------------------------------------------------------------

func TestFindCompanyNameBySymbol(t *testing.T) {
	v := newTestValidator(t)

	result := v.FindCompanyNameBySymbol("nabil")
	require.True(t, result.Found)
	require.Equal(t, "NABIL", result.Symbol)
	require.Equal(t, "Nabil Bank Limited", result.CompanyName)
	require.NotNil(t, result.FullInfo)

	require.False(t, v.FindCompanyNameBySymbol("NOPE").Found)
}

// -----------------------------------------------------------------------------

func TestStats(t *testing.T) {
	v := newTestValidator(t)

	stats := v.Stats()
	require.Equal(t, 10, stats.TotalStocks)
	require.Equal(t, 18, stats.TotalIndices)
	require.LessOrEqual(t, len(stats.SampleStocks), 10)
	require.Contains(t, stats.AvailableIndices, "Banking SubIndex")
}

// -----------------------------------------------------------------------------

func TestMissingSnapshot(t *testing.T) {
	v := NewValidator(filepath.Join(t.TempDir(), "missing.json"), logger.NewLogger("ERROR", "test"))

	result := v.ValidateStockSymbol("NABIL")
	require.False(t, result.Valid)
	require.Contains(t, result.Error, "unavailable")
}

package validator

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"nepse-gateway/src/logger"
	"nepse-gateway/src/models"
)

// -----------------------------------------------------------------------------
// Validator answers symbol and index-name questions against the stock map
// snapshot on disk. The snapshot loads lazily on first use and is immutable
// afterwards; the updater process rewrites the file and the gateway picks the
// new map up on restart or via Reload.
// -----------------------------------------------------------------------------

// Sub-index names accepted by the graph and validation routes. The upstream
// feed has renamed several indices over time; the legacy spellings stay
// accepted so stored snapshots keep validating.
var knownIndices = []string{
	"Banking SubIndex",
	"Development Bank Index",
	"Development Bank Ind.",
	"Finance Index",
	"Hotels And Tourism Index",
	"Hotels And Tourism",
	"HydroPower Index",
	"Investment Index",
	"Investment",
	"Life Insurance",
	"Manufacturing And Processing",
	"Manufacturing And Pr.",
	"Microfinance Index",
	"Mutual Fund",
	"NEPSE Index",
	"Non Life Insurance",
	"Others Index",
	"Trading Index",
}

// Corporate suffixes stripped during company-name normalization, longest
// first so compound suffixes win over their tails.
var companySuffixes = []string{
	"microfinance bittiya sanstha limited",
	"laghubitta bittiya sanstha limited",
	"development bank limited",
	"bittiya sanstha limited",
	"limited",
	"ltd.",
	"ltd",
}

const (
	maxSuggestions   = 5
	maxSearchMatches = 10
)

type Validator struct {
	Logger       *logger.Logger
	SnapshotPath string

	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	stocks map[string]models.MStockRecord
}

// -----------------------------------------------------------------------------

func NewValidator(snapshotPath string, log *logger.Logger) *Validator {
	return &Validator{
		Logger:       log,
		SnapshotPath: snapshotPath,
		stocks:       make(map[string]models.MStockRecord),
	}
}

// -----------------------------------------------------------------------------

func (v *Validator) ensureLoaded() error {
	v.loadOnce.Do(func() {
		v.loadErr = v.Reload()
	})
	return v.loadErr
}

// Reload replaces the in-memory stock map from the snapshot file.
func (v *Validator) Reload() error {
	raw, err := os.ReadFile(v.SnapshotPath)
	if err != nil {
		return fmt.Errorf("read stock map %s: %w", v.SnapshotPath, err)
	}

	var stocks map[string]models.MStockRecord
	if err := json.Unmarshal(raw, &stocks); err != nil {
		return fmt.Errorf("parse stock map %s: %w", v.SnapshotPath, err)
	}

	v.mu.Lock()
	v.stocks = stocks
	v.mu.Unlock()

	v.Logger.Info("Loaded %d stock symbols from %s", len(stocks), v.SnapshotPath)
	return nil
}

// -----------------------------------------------------------------------------
// Symbol validation
// -----------------------------------------------------------------------------

// ValidateStockSymbol checks a symbol against the stock map. Lookups are
// case-insensitive. Unknown symbols come back with up to five suggestions
// sharing the same two-letter prefix, sorted for deterministic output.
func (v *Validator) ValidateStockSymbol(symbol string) models.MStockValidation {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.MStockValidation{
			Valid: false,
			Error: "stock symbol is required",
		}
	}

	if err := v.ensureLoaded(); err != nil {
		return models.MStockValidation{
			Valid:  false,
			Symbol: symbol,
			Error:  "stock map unavailable",
		}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if info, ok := v.stocks[symbol]; ok {
		return models.MStockValidation{
			Valid:  true,
			Symbol: symbol,
			Info:   &info,
		}
	}

	var suggestions []string
	if len(symbol) >= 2 {
		prefix := symbol[:2]
		for known := range v.stocks {
			if strings.HasPrefix(known, prefix) {
				suggestions = append(suggestions, known)
			}
		}
		sort.Strings(suggestions)
		if len(suggestions) > maxSuggestions {
			suggestions = suggestions[:maxSuggestions]
		}
	}

	return models.MStockValidation{
		Valid:       false,
		Symbol:      symbol,
		Error:       fmt.Sprintf("invalid stock symbol: %s", symbol),
		Suggestions: suggestions,
	}
}

// -----------------------------------------------------------------------------
// Index validation
// -----------------------------------------------------------------------------

// ValidateIndexName checks an index name against the known sub-index names.
// Matching is exact and case-sensitive; upstream keys indices by the exact
// display name.
func (v *Validator) ValidateIndexName(name string) models.MIndexValidation {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.MIndexValidation{
			Valid:            false,
			Error:            "index name is required",
			AvailableIndices: availableIndices(),
		}
	}

	for _, known := range knownIndices {
		if name == known {
			return models.MIndexValidation{Valid: true, IndexName: name}
		}
	}

	return models.MIndexValidation{
		Valid:            false,
		IndexName:        name,
		Error:            fmt.Sprintf("invalid index name: %s", name),
		AvailableIndices: availableIndices(),
	}
}

func availableIndices() []string {
	out := make([]string, len(knownIndices))
	copy(out, knownIndices)
	sort.Strings(out)
	return out
}

// -----------------------------------------------------------------------------
// Company-name search
// -----------------------------------------------------------------------------

func normalizeCompanyName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range companySuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSpace(strings.TrimSuffix(name, suffix))
			break
		}
	}
	return name
}

// searchToken returns the first token usable for partial matching: longer
// than 2 characters and not an article. "" when no token qualifies.
func searchToken(normalized string) string {
	for _, token := range strings.Fields(normalized) {
		if len(token) <= 2 || token == "the" || token == "a" || token == "an" {
			continue
		}
		return token
	}
	return ""
}

// FindSymbolByCompanyName looks a company name up by normalized exact match
// first, then by leading-token partial match. Results cap at ten, exact
// matches ahead of partial, alphabetical within each group.
func (v *Validator) FindSymbolByCompanyName(companyName string) models.MSymbolSearchResult {
	query := normalizeCompanyName(companyName)
	if query == "" {
		return models.MSymbolSearchResult{Found: false}
	}

	if err := v.ensureLoaded(); err != nil {
		return models.MSymbolSearchResult{Found: false}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	var exact, partial []models.MSymbolMatch
	token := searchToken(query)

	for symbol, info := range v.stocks {
		normalized := normalizeCompanyName(info.Name)
		if normalized == query {
			exact = append(exact, models.MSymbolMatch{Symbol: symbol, Name: info.Name, Exact: true})
			continue
		}
		if token != "" && strings.Contains(normalized, token) {
			partial = append(partial, models.MSymbolMatch{Symbol: symbol, Name: info.Name})
		}
	}

	sortMatches := func(m []models.MSymbolMatch) {
		sort.Slice(m, func(i, j int) bool { return m[i].Symbol < m[j].Symbol })
	}
	sortMatches(exact)
	sortMatches(partial)

	matches := append(exact, partial...)
	total := len(matches)
	if len(matches) > maxSearchMatches {
		matches = matches[:maxSearchMatches]
	}

	return models.MSymbolSearchResult{
		Found:        len(matches) > 0,
		Matches:      matches,
		TotalMatches: total,
	}
}

// -----------------------------------------------------------------------------

// FindCompanyNameBySymbol is the reverse lookup for a known symbol.
func (v *Validator) FindCompanyNameBySymbol(symbol string) models.MReverseLookupResult {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.MReverseLookupResult{Found: false}
	}

	if err := v.ensureLoaded(); err != nil {
		return models.MReverseLookupResult{Found: false}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	info, ok := v.stocks[symbol]
	if !ok {
		return models.MReverseLookupResult{Found: false, Symbol: symbol}
	}

	return models.MReverseLookupResult{
		Found:       true,
		Symbol:      symbol,
		CompanyName: info.Name,
		FullInfo:    &info,
	}
}

// -----------------------------------------------------------------------------

// Stats summarizes the loaded map for the validation stats endpoint.
func (v *Validator) Stats() models.MValidatorStats {
	_ = v.ensureLoaded()

	v.mu.RLock()
	defer v.mu.RUnlock()

	symbols := make([]string, 0, len(v.stocks))
	for symbol := range v.stocks {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	sample := symbols
	if len(sample) > 10 {
		sample = sample[:10]
	}

	return models.MValidatorStats{
		TotalStocks:      len(v.stocks),
		TotalIndices:     len(knownIndices),
		SampleStocks:     sample,
		AvailableIndices: availableIndices(),
	}
}

package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"nepse-gateway/src/helpers"
	"nepse-gateway/src/interfaces"
	"nepse-gateway/src/logger"
	"nepse-gateway/src/models"
	"nepse-gateway/src/upstream"
)

// -----------------------------------------------------------------------------
// StockMapUpdater rebuilds the stock map snapshot from the security and
// sector listings. It runs as a batch job (cmd/updater) or on demand through
// the admin endpoint; either way the write is atomic so a live gateway never
// reads a half-written snapshot.
// -----------------------------------------------------------------------------

// internalSectorMap translates upstream sector names to the sub-index labels
// the graph routes use. Upstream abbreviates some labels, so this table is
// not identical to the display names elsewhere.
var internalSectorMap = map[string]string{
	"Commercial Banks":             "Banking SubIndex",
	"Development Banks":            "Development Bank Ind.",
	"Finance":                      "Finance Index",
	"Hotels And Tourism":           "Hotels And Tourism",
	"Hydro Power":                  "HydroPower Index",
	"Investment":                   "Investment",
	"Life Insurance":               "Life Insurance",
	"Manufacturing And Processing": "Manufacturing And Pr.",
	"Microfinance":                 "Microfinance Index",
	"Mutual Fund":                  "Mutual Fund",
	"NEPSE":                        "NEPSE Index",
	"Non Life Insurance":           "Non Life Insurance",
	"Others":                       "Others Index",
	"Tradings":                     "Trading Index",
	"Promoter Share":               "Promoter Share",
}

const defaultInternalSector = "Others Index"

type StockMapUpdater struct {
	Source       interfaces.IUpstream
	Logger       *logger.Logger
	SnapshotPath string
}

// -----------------------------------------------------------------------------

func NewStockMapUpdater(source interfaces.IUpstream, snapshotPath string, log *logger.Logger) *StockMapUpdater {
	return &StockMapUpdater{
		Source:       source,
		Logger:       log,
		SnapshotPath: snapshotPath,
	}
}

// -----------------------------------------------------------------------------

// Update rebuilds the snapshot. It gates on the API's health endpoint first
// so a scheduled run against a down gateway fails fast instead of writing an
// empty map.
func (u *StockMapUpdater) Update(ctx context.Context) error {
	u.Logger.Info("Checking API health before update")
	if _, err := u.Source.FetchJSON(ctx, upstream.PathHealth); err != nil {
		return helpers.NewUpstreamError("API health check failed, aborting stock map update", err)
	}

	u.Logger.Info("Fetching security list")
	securityRaw, err := u.Source.FetchJSON(ctx, upstream.PathSecurityList)
	if err != nil {
		return helpers.NewUpstreamError("failed to fetch security list", err)
	}

	var securities []models.MSecurity
	if err := json.Unmarshal(securityRaw, &securities); err != nil {
		return fmt.Errorf("parse security list: %w", err)
	}

	u.Logger.Info("Fetching sector scrips")
	sectorRaw, err := u.Source.FetchJSON(ctx, upstream.PathSectorScrips)
	if err != nil {
		return helpers.NewUpstreamError("failed to fetch sector scrips", err)
	}

	var sectorScrips map[string][]string
	if err := json.Unmarshal(sectorRaw, &sectorScrips); err != nil {
		return fmt.Errorf("parse sector scrips: %w", err)
	}

	symbolSector := make(map[string]string)
	for sector, symbols := range sectorScrips {
		for _, symbol := range symbols {
			symbolSector[symbol] = sector
		}
	}

	stocks := make(map[string]models.MStockRecord)
	skipped := 0
	for _, sec := range securities {
		if sec.ActiveStatus != "A" || sec.Symbol == "" {
			skipped++
			continue
		}

		sector := symbolSector[sec.Symbol]
		if sector == "" {
			sector = "Unknown"
		}
		internal, ok := internalSectorMap[sector]
		if !ok {
			internal = defaultInternalSector
		}

		name := sec.SecurityName
		if name == "" {
			name = sec.Symbol
		}

		stocks[sec.Symbol] = models.MStockRecord{
			Name:           name,
			Sector:         sector,
			InternalSector: internal,
		}
	}

	u.Logger.Info("Built stock map: %d active symbols, %d skipped", len(stocks), skipped)
	if err := u.writeSnapshot(stocks); err != nil {
		return err
	}

	u.Logger.Info("Stock map written to %s", u.SnapshotPath)
	return nil
}

// -----------------------------------------------------------------------------

// writeSnapshot writes to a temp file in the target directory and renames it
// into place.
func (u *StockMapUpdater) writeSnapshot(stocks map[string]models.MStockRecord) error {
	payload, err := json.MarshalIndent(stocks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode stock map: %w", err)
	}

	dir := filepath.Dir(u.SnapshotPath)
	tmp, err := os.CreateTemp(dir, "stockmap-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, u.SnapshotPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

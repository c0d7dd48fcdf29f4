package updater

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nepse-gateway/src/helpers"
	"nepse-gateway/src/logger"
	"nepse-gateway/src/models"
	"nepse-gateway/src/upstream"

	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

type fakeSource struct {
	responses map[string]string
	failing   map[string]bool
}

func (f *fakeSource) FetchJSON(ctx context.Context, path string) (json.RawMessage, error) {
	if f.failing[path] {
		return nil, helpers.NewUpstreamError("fetch failed for "+path, nil)
	}
	if payload, ok := f.responses[path]; ok {
		return json.RawMessage(payload), nil
	}
	return nil, helpers.NewUpstreamError("no canned response for "+path, nil)
}

// -----------------------------------------------------------------------------

func newTestSource() *fakeSource {
	return &fakeSource{
		responses: map[string]string{
			upstream.PathHealth: `{"status":"ok"}`,
			upstream.PathSecurityList: `[
				{"symbol":"NABIL","securityName":"Nabil Bank Limited","activeStatus":"A"},
				{"symbol":"NHPC","securityName":"National Hydro Power Company Limited","activeStatus":"A"},
				{"symbol":"GONE","securityName":"Delisted Company","activeStatus":"D"},
				{"symbol":"","securityName":"Nameless Security","activeStatus":"A"},
				{"symbol":"WEIRD","securityName":"Weird Sector Limited","activeStatus":"A"},
				{"symbol":"NOSEC","securityName":"","activeStatus":"A"}
			]`,
			upstream.PathSectorScrips: `{
				"Commercial Banks": ["NABIL"],
				"Hydro Power": ["NHPC"],
				"Cryptocurrency": ["WEIRD"]
			}`,
		},
		failing: map[string]bool{},
	}
}

func readSnapshot(t *testing.T, path string) map[string]models.MStockRecord {
	t.Helper()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var stocks map[string]models.MStockRecord
	require.NoError(t, json.Unmarshal(raw, &stocks))
	return stocks
}

// -----------------------------------------------------------------------------

func TestUpdateBuildsStockMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockmap.json")
	u := NewStockMapUpdater(newTestSource(), path, logger.NewLogger("ERROR", "test"))

	require.NoError(t, u.Update(context.Background()))

	stocks := readSnapshot(t, path)
	require.Len(t, stocks, 4)

	require.Equal(t, models.MStockRecord{
		Name:           "Nabil Bank Limited",
		Sector:         "Commercial Banks",
		InternalSector: "Banking SubIndex",
	}, stocks["NABIL"])

	require.Equal(t, "HydroPower Index", stocks["NHPC"].InternalSector)
}

// -----------------------------------------------------------------------------

func TestUpdateFiltersInactiveAndEmptySymbols(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockmap.json")
	u := NewStockMapUpdater(newTestSource(), path, logger.NewLogger("ERROR", "test"))

	require.NoError(t, u.Update(context.Background()))

	stocks := readSnapshot(t, path)
	require.NotContains(t, stocks, "GONE")
	require.NotContains(t, stocks, "")
}

// -----------------------------------------------------------------------------

func TestUpdateUnknownSectorDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockmap.json")
	u := NewStockMapUpdater(newTestSource(), path, logger.NewLogger("ERROR", "test"))

	require.NoError(t, u.Update(context.Background()))

	stocks := readSnapshot(t, path)
	require.Equal(t, "Cryptocurrency", stocks["WEIRD"].Sector)
	require.Equal(t, "Others Index", stocks["WEIRD"].InternalSector)
}

// -----------------------------------------------------------------------------

func TestUpdateDefaultsMissingNameAndSector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockmap.json")
	u := NewStockMapUpdater(newTestSource(), path, logger.NewLogger("ERROR", "test"))

	require.NoError(t, u.Update(context.Background()))

	// NOSEC has no security name and belongs to no sector: the symbol stands
	// in for the name, and the sector reads "Unknown"
	stocks := readSnapshot(t, path)
	require.Equal(t, models.MStockRecord{
		Name:           "NOSEC",
		Sector:         "Unknown",
		InternalSector: "Others Index",
	}, stocks["NOSEC"])
}

// -----------------------------------------------------------------------------

func TestUpdateAbortsWhenHealthFails(t *testing.T) {
	source := newTestSource()
	source.failing[upstream.PathHealth] = true

	path := filepath.Join(t.TempDir(), "stockmap.json")
	u := NewStockMapUpdater(source, path, logger.NewLogger("ERROR", "test"))

	err := u.Update(context.Background())
	var upstreamErr *helpers.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

// -----------------------------------------------------------------------------

func TestUpdateKeepsOldSnapshotOnFetchFailure(t *testing.T) {
	source := newTestSource()
	path := filepath.Join(t.TempDir(), "stockmap.json")
	u := NewStockMapUpdater(source, path, logger.NewLogger("ERROR", "test"))

	require.NoError(t, u.Update(context.Background()))

	// Second run fails mid-way; the previous snapshot must survive intact
	source.failing[upstream.PathSectorScrips] = true
	require.Error(t, u.Update(context.Background()))

	stocks := readSnapshot(t, path)
	require.Len(t, stocks, 4)
}

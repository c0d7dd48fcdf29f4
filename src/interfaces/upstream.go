package interfaces

import (
	"context"
	"encoding/json"
)

// -----------------------------------------------------------------------------
// IUpstream is the single fetch-by-path contract every higher layer consumes.
// The response cache and the raw client both implement it, so callers never
// know whether a payload was memoized.
// -----------------------------------------------------------------------------

type IUpstream interface {
	FetchJSON(ctx context.Context, path string) (json.RawMessage, error)
}

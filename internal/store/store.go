package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Collection names a whole-value record held by a Store.
type Collection string

const (
	Users    Collection = "users"
	Sessions Collection = "sessions"
	Analyses Collection = "analyses"
	Metrics  Collection = "metrics"
)

// AllCollections is every collection in name order.
var AllCollections = []Collection{Analyses, Metrics, Sessions, Users}

// Store is the persistence port. Every Save replaces the entire stored value
// of a collection; there are no partial updates and no locking across
// collections, so the last writer wins.
type Store interface {
	// Load decodes the collection into dst. It reports false when the
	// collection has never been saved.
	Load(ctx context.Context, c Collection, dst any) (bool, error)
	Save(ctx context.Context, c Collection, value any) error
	Close() error
}

// Lister is implemented by stores that can describe what they hold.
type Lister interface {
	List(ctx context.Context) ([]CollectionInfo, error)
}

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns the Store for backend rooted at dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewFileStore(dataDir), nil
	case BackendSQLite:
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		return OpenSQLite(filepath.Join(dataDir, "swotlab.db"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

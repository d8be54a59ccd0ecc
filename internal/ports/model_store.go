package ports

import "context"

// ModelStore persists trained model parameters as opaque JSON blobs.
// Adapters may be backed by SQLite or an external registry.
type ModelStore interface {
	Put(ctx context.Context, name string, paramsJSON string) error
	Get(ctx context.Context, name string) (paramsJSON string, found bool, err error)
	TrainedAt(ctx context.Context, name string) (string, bool, error)
}

package domain

import "context"

// Target abstracts the remote tabular store one group syncs against.
type Target interface {
	// Name returns the target kind name
	Name() string
	// FetchExisting scans the whole database and returns its rows keyed by
	// title text. Pages may arrive in any order; groupFilter restricts the
	// scan to rows carrying that group label when non-empty.
	FetchExisting(ctx context.Context, databaseID, groupFilter string) (map[string]RemoteRecord, error)
	// EnsureSchema adds any missing option values for the given categorical
	// fields, issuing at most one schema call per field.
	EnsureSchema(ctx context.Context, databaseID string, options map[string][]string) error
	// Create inserts a new row with the given managed fields.
	Create(ctx context.Context, databaseID string, props PropertySet) error
	// Update patches an existing row, touching only the given fields.
	Update(ctx context.Context, remoteID string, props PropertySet) error
	// Close releases resources
	Close() error
}

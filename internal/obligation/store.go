package obligation

import "context"

// Store persists obligation instances keyed by (subject, kind, period-key).
// The key is the uniqueness guarantee: there is never more than one instance,
// terminal or not, for the same key.
type Store interface {
	Get(ctx context.Context, subjectID string, kind Kind, key PeriodKey) (Instance, error)
	Put(ctx context.Context, inst Instance) error
	// Open returns every non-terminal instance across all subjects.
	Open(ctx context.Context) ([]Instance, error)
}

package subject

import "context"

// Store persists subjects and their caregiver chains. Get returns
// sentinel.ErrNotFound (wrapped by implementations) when the address is
// unknown; UpdateChain serializes read-modify-write on one subject's chain.
type Store interface {
	Get(ctx context.Context, address string) (Subject, error)
	Upsert(ctx context.Context, s Subject) error
	List(ctx context.Context) ([]Subject, error)

	Chain(ctx context.Context, subjectAddress string) (CaregiverChain, error)
	UpdateChain(ctx context.Context, subjectAddress string, fn func(CaregiverChain) (CaregiverChain, error)) error
}

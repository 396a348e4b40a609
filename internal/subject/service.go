package subject

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	dErrors "github.com/lautaro2705-commits/asistente-personal/pkg/domain-errors"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
	"github.com/lautaro2705-commits/asistente-personal/pkg/sentinel"
)

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Ensure registers the address on first contact and returns the subject.
// New subjects start as independent with every monitoring feature off;
// configuration directives opt them in afterwards.
func (s *Service) Ensure(ctx context.Context, address string) (Subject, bool, error) {
	subj, err := s.store.Get(ctx, address)
	if err == nil {
		return subj, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return Subject{}, false, err
	}
	subj = Subject{
		Address:   address,
		Role:      RoleIndependent,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Upsert(ctx, subj); err != nil {
		return Subject{}, false, err
	}
	s.logger.InfoContext(ctx, "subject registered", "address", address)
	return subj, true, nil
}

func (s *Service) Get(ctx context.Context, address string) (Subject, error) {
	subj, err := s.store.Get(ctx, address)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Subject{}, dErrors.Wrap(err, dErrors.CodeNotFound, "subject not registered")
	}
	return subj, err
}

func (s *Service) List(ctx context.Context) ([]Subject, error) {
	return s.store.List(ctx)
}

func (s *Service) SetRole(ctx context.Context, address string, role Role) error {
	if role != RoleMonitored && role != RoleIndependent {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown role %q", role))
	}
	subj, _, err := s.Ensure(ctx, address)
	if err != nil {
		return err
	}
	subj.Role = role
	return s.store.Upsert(ctx, subj)
}

// Feature names accepted by SetFeature; the directive layer normalizes the
// Spanish spellings before calling.
const (
	FeatureHydration  = "hidratacion"
	FeatureWellness   = "animo"
	FeatureInactivity = "actividad"
)

func (s *Service) SetFeature(ctx context.Context, address, feature string, enabled bool) error {
	subj, _, err := s.Ensure(ctx, address)
	if err != nil {
		return err
	}
	switch strings.ToLower(feature) {
	case FeatureHydration:
		subj.Features.Hydration = enabled
	case FeatureWellness:
		subj.Features.Wellness = enabled
	case FeatureInactivity:
		subj.Features.Inactivity = enabled
	default:
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown monitoring feature %q", feature))
	}
	if enabled && subj.Role != RoleMonitored {
		subj.Role = RoleMonitored
	}
	if err := s.store.Upsert(ctx, subj); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "monitoring feature updated",
		"address", address, "feature", feature, "enabled", enabled)
	return nil
}

// SetPrimaryContact replaces the chain's primary. If the address was a
// secondary it is promoted, keeping the one-appearance-per-chain rule.
func (s *Service) SetPrimaryContact(ctx context.Context, subjectAddress, name, contactAddress string) error {
	if contactAddress == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "contact address required")
	}
	if _, _, err := s.Ensure(ctx, subjectAddress); err != nil {
		return err
	}
	return s.store.UpdateChain(ctx, subjectAddress, func(chain CaregiverChain) (CaregiverChain, error) {
		kept := chain.Secondaries[:0]
		for _, c := range chain.Secondaries {
			if c.Address != contactAddress {
				kept = append(kept, c)
			}
		}
		chain.Secondaries = kept
		chain.Primary = &Contact{Name: name, Address: contactAddress}
		return chain, nil
	})
}

func (s *Service) AddSecondaryContact(ctx context.Context, subjectAddress, contactAddress string) error {
	if contactAddress == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "contact address required")
	}
	if _, _, err := s.Ensure(ctx, subjectAddress); err != nil {
		return err
	}
	return s.store.UpdateChain(ctx, subjectAddress, func(chain CaregiverChain) (CaregiverChain, error) {
		if chain.Contains(contactAddress) {
			return CaregiverChain{}, dErrors.New(dErrors.CodeConflict, "contact already in chain")
		}
		chain.Secondaries = append(chain.Secondaries, Contact{Address: contactAddress})
		return chain, nil
	})
}

// DeleteContact removes the address from wherever it sits in the chain.
func (s *Service) DeleteContact(ctx context.Context, subjectAddress, contactAddress string) error {
	return s.store.UpdateChain(ctx, subjectAddress, func(chain CaregiverChain) (CaregiverChain, error) {
		if !chain.Contains(contactAddress) {
			return CaregiverChain{}, dErrors.New(dErrors.CodeNotFound, "contact not in chain")
		}
		if chain.Primary != nil && chain.Primary.Address == contactAddress {
			chain.Primary = nil
			return chain, nil
		}
		kept := chain.Secondaries[:0]
		for _, c := range chain.Secondaries {
			if c.Address != contactAddress {
				kept = append(kept, c)
			}
		}
		chain.Secondaries = kept
		return chain, nil
	})
}

func (s *Service) Chain(ctx context.Context, subjectAddress string) (CaregiverChain, error) {
	return s.store.Chain(ctx, subjectAddress)
}

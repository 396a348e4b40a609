package obligation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/lautaro2705-commits/asistente-personal/internal/platform/metrics"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
	"github.com/lautaro2705-commits/asistente-personal/pkg/sentinel"
)

// Notifier delivers one message to one address.
type Notifier interface {
	Send(ctx context.Context, address, text string) error
}

// Escalator alerts the subject's caregiver chain about an unanswered
// obligation. A nil error means the escalation is done (including the
// nobody-to-notify case); an error leaves the instance open for retry.
type Escalator interface {
	Escalate(ctx context.Context, inst Instance) error
}

// Composer renders the outbound texts for an instance. The first notice and
// the reminder differ in tone, so they are separate methods.
type Composer interface {
	NoticeText(ctx context.Context, inst Instance) (string, error)
	ReminderText(ctx context.Context, inst Instance) (string, error)
}

// Auditor records invariant violations in the audit trail; optional.
type Auditor interface {
	InvariantViolated(ctx context.Context, subjectID, detail string)
}

type Service struct {
	store     Store
	notifier  Notifier
	escalator Escalator
	composer  Composer
	timeouts  map[Kind]Timeouts
	auditor   Auditor
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

func NewService(store Store, notifier Notifier, escalator Escalator, composer Composer, timeouts map[Kind]Timeouts, opts ...Option) *Service {
	s := &Service{
		store:     store,
		notifier:  notifier,
		escalator: escalator,
		composer:  composer,
		timeouts:  timeouts,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin opens the obligation for (subject, kind, key) and fires the first
// notice. If an instance already exists under that key, whatever its state,
// Begin is a no-op: the key carries the day, so yesterday's instance never
// blocks today's.
func (s *Service) Begin(ctx context.Context, subjectID string, kind Kind, key PeriodKey) error {
	if _, err := s.store.Get(ctx, subjectID, kind, key); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}

	inst := Instance{
		SubjectID: subjectID,
		Kind:      kind,
		PeriodKey: key,
		State:     StatePending,
	}
	if err := s.store.Put(ctx, inst); err != nil {
		return err
	}
	s.transition(StatePending)
	return s.sendNotice(ctx, inst)
}

// Tick advances every open instance against the clock. Stale instances
// (period-key day other than today) are skipped explicitly, and one
// instance's failure never stops the scan.
func (s *Service) Tick(ctx context.Context) error {
	open, err := s.store.Open(ctx)
	if err != nil {
		return fmt.Errorf("scan open obligations: %w", err)
	}
	s.warnDuplicates(ctx, open)

	today := requestcontext.Now(ctx).Format("2006-01-02")
	for _, inst := range open {
		if inst.PeriodKey.Day() != today {
			s.logger.DebugContext(ctx, "skipping stale obligation",
				"subject", inst.SubjectID, "kind", inst.Kind, "period_key", inst.PeriodKey)
			continue
		}
		if err := s.advance(ctx, inst); err != nil {
			s.logger.ErrorContext(ctx, "obligation tick failed",
				"subject", inst.SubjectID, "kind", inst.Kind, "period_key", inst.PeriodKey, "error", err)
		}
	}
	return nil
}

func (s *Service) advance(ctx context.Context, inst Instance) error {
	now := requestcontext.Now(ctx)
	t, ok := s.timeouts[inst.Kind]
	if !ok {
		return fmt.Errorf("no timeouts configured for kind %q", inst.Kind)
	}

	switch inst.State {
	case StatePending:
		// First notice failed earlier; retry it.
		return s.sendNotice(ctx, inst)

	case StateSent:
		if now.Sub(inst.SentAt) < t.T1 {
			return nil
		}
		text, err := s.composer.ReminderText(ctx, inst)
		if err != nil {
			return fmt.Errorf("compose reminder: %w", err)
		}
		if err := s.notifier.Send(ctx, inst.SubjectID, text); err != nil {
			return fmt.Errorf("send reminder: %w", err)
		}
		inst.State = StateReminded
		inst.Attempt = 2
		inst.SentAt = now
		if err := s.store.Put(ctx, inst); err != nil {
			return err
		}
		s.transition(StateReminded)
		return nil

	case StateReminded:
		if now.Sub(inst.SentAt) < t.T2 {
			return nil
		}
		if err := s.escalator.Escalate(ctx, inst); err != nil {
			return fmt.Errorf("escalate: %w", err)
		}
		inst.State = StateEscalated
		if err := s.store.Put(ctx, inst); err != nil {
			return err
		}
		s.transition(StateEscalated)
		if s.metrics != nil {
			s.metrics.EscalationsTotal.Inc()
		}
		s.logger.WarnContext(ctx, "obligation escalated",
			"subject", inst.SubjectID, "kind", inst.Kind, "period_key", inst.PeriodKey)
		return nil

	default:
		return nil
	}
}

func (s *Service) sendNotice(ctx context.Context, inst Instance) error {
	text, err := s.composer.NoticeText(ctx, inst)
	if err != nil {
		return fmt.Errorf("compose notice: %w", err)
	}
	if err := s.notifier.Send(ctx, inst.SubjectID, text); err != nil {
		// Stays Pending; the next tick retries.
		return fmt.Errorf("send notice: %w", err)
	}
	inst.State = StateSent
	inst.Attempt = 1
	inst.SentAt = requestcontext.Now(ctx)
	if err := s.store.Put(ctx, inst); err != nil {
		return err
	}
	s.transition(StateSent)
	return nil
}

// HandleReply checks an inbound message against every open obligation the
// subject has for today and confirms the ones whose vocabulary matches.
// Returns the kinds confirmed, in scan order.
func (s *Service) HandleReply(ctx context.Context, subjectID, reply string) ([]Kind, error) {
	open, err := s.store.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan open obligations: %w", err)
	}
	today := requestcontext.Now(ctx).Format("2006-01-02")

	var confirmed []Kind
	for _, inst := range open {
		if inst.SubjectID != subjectID || inst.PeriodKey.Day() != today {
			continue
		}
		if inst.State != StateSent && inst.State != StateReminded {
			continue
		}
		if !Matches(inst.Kind, reply) {
			continue
		}
		inst.State = StateConfirmed
		inst.Response = reply
		if err := s.store.Put(ctx, inst); err != nil {
			return confirmed, err
		}
		s.transition(StateConfirmed)
		s.logger.InfoContext(ctx, "obligation confirmed",
			"subject", subjectID, "kind", inst.Kind, "period_key", inst.PeriodKey)
		confirmed = append(confirmed, inst.Kind)
	}
	return confirmed, nil
}

// Get exposes one instance, mainly for handlers and tests.
func (s *Service) Get(ctx context.Context, subjectID string, kind Kind, key PeriodKey) (Instance, error) {
	return s.store.Get(ctx, subjectID, kind, key)
}

func (s *Service) transition(to State) {
	if s.metrics != nil {
		s.metrics.IncTransition(string(to))
	}
}

// warnDuplicates flags two non-terminal instances sharing (subject, kind,
// period-key). The store key should make this impossible; seeing one is a
// defect worth telemetry, not a condition to paper over.
func (s *Service) warnDuplicates(ctx context.Context, open []Instance) {
	seen := make(map[string]struct{}, len(open))
	for _, inst := range open {
		k := fmt.Sprintf("%s|%s|%s", inst.SubjectID, inst.Kind, inst.PeriodKey)
		if _, ok := seen[k]; ok {
			s.logger.ErrorContext(ctx, "duplicate open obligation for same period",
				"subject", inst.SubjectID, "kind", inst.Kind, "period_key", inst.PeriodKey)
			if s.metrics != nil {
				s.metrics.InvariantWarnings.Inc()
			}
			if s.auditor != nil {
				s.auditor.InvariantViolated(ctx, inst.SubjectID,
					fmt.Sprintf("duplicate open %s obligation for period %s", inst.Kind, inst.PeriodKey))
			}
			continue
		}
		seen[k] = struct{}{}
	}
}

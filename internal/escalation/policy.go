// Package escalation alerts a subject's caregiver chain when an obligation
// goes unanswered. Delivery is fan-out: every contact gets the alert, each
// attempt independent of the others.
package escalation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lautaro2705-commits/asistente-personal/internal/notify"
	"github.com/lautaro2705-commits/asistente-personal/internal/obligation"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/metrics"
	"github.com/lautaro2705-commits/asistente-personal/internal/subject"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

// ChainResolver returns the caregiver chain for a subject address.
type ChainResolver interface {
	Chain(ctx context.Context, subjectAddress string) (subject.CaregiverChain, error)
}

type Notifier interface {
	Send(ctx context.Context, address, text string) error
}

// Auditor records that an escalation happened; optional.
type Auditor interface {
	EscalationRaised(ctx context.Context, subjectID string, kind string, notified int)
}

type Policy struct {
	chains   ChainResolver
	notifier Notifier
	auditor  Auditor
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Policy)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Policy) { p.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Policy) { p.metrics = m }
}

func WithAuditor(a Auditor) Option {
	return func(p *Policy) { p.auditor = a }
}

func NewPolicy(chains ChainResolver, notifier Notifier, opts ...Option) *Policy {
	p := &Policy{
		chains:   chains,
		notifier: notifier,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Escalate sends the alert to every contact in the subject's chain. A chain
// without a primary contact is nobody-to-notify: the call succeeds without
// sending so the instance still terminates. Individual send failures are
// logged and never block the remaining contacts.
func (p *Policy) Escalate(ctx context.Context, inst obligation.Instance) error {
	chain, err := p.chains.Chain(ctx, inst.SubjectID)
	if err != nil {
		return fmt.Errorf("resolve caregiver chain: %w", err)
	}
	if chain.Primary == nil {
		p.logger.WarnContext(ctx, "escalation with no primary contact, skipping sends",
			"subject", inst.SubjectID, "kind", inst.Kind)
		return nil
	}

	text := AlertText(ctx, inst)
	contacts := chain.Contacts()

	var g errgroup.Group
	for _, c := range contacts {
		c := c
		g.Go(func() error {
			if err := p.notifier.Send(ctx, c.Address, text); err != nil {
				p.logger.ErrorContext(ctx, "escalation send failed",
					"subject", inst.SubjectID, "contact", notify.Redact(c.Address), "error", err)
				if p.metrics != nil {
					p.metrics.IncNotification("error")
				}
				return nil
			}
			if p.metrics != nil {
				p.metrics.IncNotification("ok")
			}
			return nil
		})
	}
	// Send closures always return nil; failures are logged per contact.
	_ = g.Wait()

	if p.auditor != nil {
		p.auditor.EscalationRaised(ctx, inst.SubjectID, string(inst.Kind), len(contacts))
	}
	p.logger.WarnContext(ctx, "escalation dispatched",
		"subject", inst.SubjectID, "kind", inst.Kind, "contacts", len(contacts))
	return nil
}

// AlertText renders the caregiver-facing alert for an unanswered obligation.
func AlertText(ctx context.Context, inst obligation.Instance) string {
	now := requestcontext.Now(ctx)
	var b strings.Builder
	b.WriteString("🚨 *Alerta de seguimiento*\n\n")
	switch inst.Kind {
	case obligation.KindMedication:
		fmt.Fprintf(&b, "%s no confirmó la toma de medicamentos (%s) después de dos avisos.\n", inst.SubjectID, inst.PeriodKey.Qualifier())
	case obligation.KindWellness:
		fmt.Fprintf(&b, "%s no respondió al control de bienestar de hoy.\n", inst.SubjectID)
	default:
		fmt.Fprintf(&b, "%s no respondió a un control (%s).\n", inst.SubjectID, inst.Kind)
	}
	fmt.Fprintf(&b, "\nÚltimo aviso: %s\nHora actual: %s\n\nPor favor, intentá comunicarte.",
		inst.SentAt.Format("15:04"), now.Format("15:04"))
	return b.String()
}

package conversation

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lautaro2705-commits/asistente-personal/internal/medication"
	"github.com/lautaro2705-commits/asistente-personal/internal/obligation"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/metrics"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

// apologyText covers oracle failures on the conversational path; the real
// error goes to the logs.
const apologyText = "Perdón, tuve un problema para procesar tu mensaje. ¿Podés intentar de nuevo en un ratito? 🙏"

// SubjectRegistrar records that an address exists; first contact creates it.
type SubjectRegistrar interface {
	Ensure(ctx context.Context, address string) (created bool, err error)
}

// ActivityRecorder appends to the subject's activity ledger.
type ActivityRecorder interface {
	Record(ctx context.Context, subjectID string) error
}

// ObligationResponder checks a reply against open obligations.
type ObligationResponder interface {
	HandleReply(ctx context.Context, subjectID, reply string) ([]obligation.Kind, error)
}

// IntakeLogger records a confirmed medication intake.
type IntakeLogger interface {
	LogTaken(ctx context.Context, subjectID string, period medication.Period) error
}

// Dispatcher executes the directives in a raw oracle reply and returns the
// final user-visible text.
type Dispatcher interface {
	Dispatch(ctx context.Context, subjectID, reply string) string
}

// Pipeline is the conversational request path: register subject, record
// activity, confirm obligations, consult the oracle, dispatch directives.
type Pipeline struct {
	history     History
	oracle      Oracle
	dispatcher  Dispatcher
	subjects    SubjectRegistrar
	activity    ActivityRecorder
	obligations ObligationResponder
	intake      IntakeLogger
	loc         *time.Location
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

type PipelineOption func(*Pipeline)

func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

func WithMetrics(m *metrics.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

func NewPipeline(
	history History,
	oracle Oracle,
	dispatcher Dispatcher,
	subjects SubjectRegistrar,
	activity ActivityRecorder,
	obligations ObligationResponder,
	intake IntakeLogger,
	loc *time.Location,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		history:     history,
		oracle:      oracle,
		dispatcher:  dispatcher,
		subjects:    subjects,
		activity:    activity,
		obligations: obligations,
		intake:      intake,
		loc:         loc,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:      otel.Tracer("conversation"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle processes one inbound message and returns the outgoing text.
func (p *Pipeline) Handle(ctx context.Context, subjectID, text string) string {
	ctx, span := p.tracer.Start(ctx, "conversation.handle",
		trace.WithAttributes(attribute.String("subject", subjectID)))
	defer span.End()

	if p.metrics != nil {
		p.metrics.MessagesReceived.Inc()
	}

	created, err := p.subjects.Ensure(ctx, subjectID)
	if err != nil {
		p.logger.ErrorContext(ctx, "subject registration failed", "subject", subjectID, "error", err)
	}

	if err := p.activity.Record(ctx, subjectID); err != nil {
		p.logger.ErrorContext(ctx, "activity record failed", "subject", subjectID, "error", err)
	}

	p.confirmObligations(ctx, subjectID, text)

	prior, err := p.history.Messages(ctx, subjectID)
	if err != nil {
		p.logger.ErrorContext(ctx, "history read failed", "subject", subjectID, "error", err)
	}
	p.appendHistory(ctx, subjectID, Message{Role: RoleUser, Content: text})

	// A brand-new subject greeting us gets the capability tour instead of an
	// oracle round trip.
	if created && len(prior) == 0 && isGreeting(text) {
		p.appendHistory(ctx, subjectID, Message{Role: RoleAssistant, Content: welcomeMessage})
		return welcomeMessage
	}

	now := requestcontext.Now(ctx).In(p.loc)
	sys := SystemContext{
		Today:       now.Format("2006-01-02 Monday"),
		CurrentTime: now.Format("15:04"),
	}

	started := time.Now()
	raw, err := p.oracle.Reply(ctx, append(prior, Message{Role: RoleUser, Content: text}), sys)
	if p.metrics != nil {
		p.metrics.ObserveOracleLatency(time.Since(started))
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "oracle failed", "subject", subjectID, "error", err)
		return apologyText
	}

	// The raw reply, directives included, goes into history; the stripped
	// text is what the subject sees.
	p.appendHistory(ctx, subjectID, Message{Role: RoleAssistant, Content: raw})

	return p.dispatcher.Dispatch(ctx, subjectID, raw)
}

// confirmObligations feeds the reply to the state machines and mirrors a
// confirmed medication obligation into the intake log so the daily reminder
// job sees it too.
func (p *Pipeline) confirmObligations(ctx context.Context, subjectID, text string) {
	confirmed, err := p.obligations.HandleReply(ctx, subjectID, text)
	if err != nil {
		p.logger.ErrorContext(ctx, "obligation confirmation failed", "subject", subjectID, "error", err)
		return
	}
	for _, kind := range confirmed {
		if kind != obligation.KindMedication {
			continue
		}
		period := medication.InferPeriod(ctx)
		if err := p.intake.LogTaken(ctx, subjectID, period); err != nil {
			p.logger.ErrorContext(ctx, "intake log failed", "subject", subjectID, "error", err)
		}
	}
}

func (p *Pipeline) appendHistory(ctx context.Context, subjectID string, msg Message) {
	if err := p.history.Append(ctx, subjectID, msg); err != nil {
		p.logger.ErrorContext(ctx, "history append failed", "subject", subjectID, "error", err)
	}
}

package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lautaro2705-commits/asistente-personal/internal/audit"
	"github.com/lautaro2705-commits/asistente-personal/internal/calendar"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/metrics"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/middleware"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/secrets"
	dErrors "github.com/lautaro2705-commits/asistente-personal/pkg/domain-errors"
	"github.com/lautaro2705-commits/asistente-personal/pkg/platform/httputil"
)

// webSubjectID is the synthetic subject used by the browser chat endpoint,
// which carries no phone number.
const webSubjectID = "web_user"

const adminTokenTTL = 12 * time.Hour

// Conversation is the inbound message pipeline.
type Conversation interface {
	Handle(ctx context.Context, subjectID, text string) string
}

// Sender delivers outbound messages to a subject address.
type Sender interface {
	Send(ctx context.Context, address, text string) error
}

// Events exposes the calendar reads the transport needs.
type Events interface {
	Today(ctx context.Context, subjectID string) ([]calendar.Event, error)
}

// TokenIssuer mints operator bearer tokens.
type TokenIssuer interface {
	Generate(operator string, expiresIn time.Duration) (string, error)
}

// Auditor records operator actions.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}

// Handler serves the HTTP surface of the assistant.
type Handler struct {
	pipeline        Conversation
	sender          Sender
	events          Events
	tokens          TokenIssuer
	auditor         Auditor
	adminSecretHash string
	logger          *slog.Logger
	metrics         *metrics.Metrics
}

type HandlerOption func(*Handler)

func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

func NewHandler(pipeline Conversation, sender Sender, events Events, tokens TokenIssuer, auditor Auditor, adminSecretHash string, opts ...HandlerOption) *Handler {
	h := &Handler{
		pipeline:        pipeline,
		sender:          sender,
		events:          events,
		tokens:          tokens,
		auditor:         auditor,
		adminSecretHash: adminSecretHash,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleWhatsApp receives the Twilio form webhook. The reply goes out through
// the REST sender rather than TwiML, so the webhook always answers 200
// immediately and a delivery failure never makes Twilio retry the inbound
// message.
func (h *Handler) HandleWhatsApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(ctx, "malformed webhook form", "error", err, "request_id", requestID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed form body"))
		return
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	if from == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "missing From"))
		return
	}

	h.logger.InfoContext(ctx, "inbound message",
		"subject", from,
		"length", len(body),
		"request_id", requestID,
	)

	reply := h.pipeline.Handle(ctx, from, body)

	if err := h.sender.Send(ctx, from, reply); err != nil {
		h.logger.ErrorContext(ctx, "reply delivery failed",
			"subject", from,
			"error", err,
			"request_id", requestID,
		)
	}

	w.WriteHeader(http.StatusOK)
}

type chatRequest struct {
	SubjectID string `json:"subject_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// HandleChat is the browser-facing variant of the webhook. It returns the
// reply inline instead of pushing it through the message gateway.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[chatRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.Message == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "empty message"))
		return
	}
	if req.SubjectID == "" {
		req.SubjectID = webSubjectID
	}

	reply := h.pipeline.Handle(ctx, req.SubjectID, req.Message)
	httputil.WriteJSON(w, http.StatusOK, chatResponse{Response: reply})
}

type eventView struct {
	Title string `json:"title"`
	Start string `json:"start"`
}

func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID := r.URL.Query().Get("subject_id")
	if subjectID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "missing subject_id"))
		return
	}

	events, err := h.events.Today(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "event listing failed",
			"subject", subjectID,
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	views := make([]eventView, 0, len(events))
	for _, ev := range events {
		views = append(views, eventView{
			Title: ev.Title,
			Start: ev.Start.Format("2006-01-02 15:04"),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]eventView{"events": views})
}

type tokenRequest struct {
	Operator string `json:"operator"`
	Secret   string `json:"secret"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// HandleAdminToken exchanges the shared operator secret for a short-lived
// bearer token.
func (h *Handler) HandleAdminToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[tokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.Operator == "" || req.Secret == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "operator and secret are required"))
		return
	}

	if err := secrets.Verify(req.Secret, h.adminSecretHash); err != nil {
		h.logger.WarnContext(ctx, "operator secret rejected",
			"operator", req.Operator,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		return
	}

	token, err := h.tokens.Generate(req.Operator, adminTokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "token generation failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresIn: int64(adminTokenTTL.Seconds()),
	})
}

type adminSendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// HandleAdminSend pushes a message to an arbitrary address on behalf of an
// operator. Every use lands in the audit trail.
func (h *Handler) HandleAdminSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[adminSendRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.To == "" || req.Message == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "to and message are required"))
		return
	}

	if err := h.sender.Send(ctx, req.To, req.Message); err != nil {
		h.logger.ErrorContext(ctx, "admin send failed",
			"to", req.To,
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "delivery failed"))
		return
	}

	if h.auditor != nil {
		h.auditor.Emit(ctx, audit.Event{
			SubjectID: req.To,
			Kind:      audit.KindAdminSend,
			Detail:    "manual send by operator",
		})
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "enviado"})
}

package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lautaro2705-commits/asistente-personal/internal/admintoken"
	"github.com/lautaro2705-commits/asistente-personal/internal/audit"
	"github.com/lautaro2705-commits/asistente-personal/internal/calendar"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/secrets"
)

type stubPipeline struct {
	mu      sync.Mutex
	handled []string
	reply   string
}

func (p *stubPipeline) Handle(ctx context.Context, subjectID, text string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handled = append(p.handled, subjectID+"|"+text)
	return p.reply
}

type recordingSender struct {
	mu   sync.Mutex
	sent map[string][]string
	fail bool
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(map[string][]string)}
}

func (s *recordingSender) Send(ctx context.Context, address, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return assert.AnError
	}
	s.sent[address] = append(s.sent[address], text)
	return nil
}

type testEnv struct {
	server   *httptest.Server
	pipeline *stubPipeline
	sender   *recordingSender
	calendar *calendar.Service
	auditor  *audit.Publisher
	tokens   *admintoken.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipeline := &stubPipeline{reply: "¡Hola! ¿En qué te ayudo?"}
	sender := newRecordingSender()
	cal := calendar.NewService(calendar.NewMemoryStore(), time.UTC)
	auditor := audit.NewPublisher()
	tokens := admintoken.NewService("test-signing-key")

	hash, err := secrets.Hash("operator-secret")
	require.NoError(t, err)

	h := NewHandler(pipeline, sender, cal, tokens, auditor, hash, WithLogger(logger))
	srv := httptest.NewServer(NewRouter(h, tokens, logger, nil))
	t.Cleanup(srv.Close)

	return &testEnv{
		server:   srv,
		pipeline: pipeline,
		sender:   sender,
		calendar: cal,
		auditor:  auditor,
		tokens:   tokens,
	}
}

func (e *testEnv) postJSON(t *testing.T, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestWhatsAppWebhook(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{}
	form.Set("From", "whatsapp:+5491155550001")
	form.Set("Body", "hola, ¿qué tareas tengo?")

	resp, err := env.server.Client().Post(env.server.URL+"/whatsapp", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env.pipeline.mu.Lock()
	require.Len(t, env.pipeline.handled, 1)
	assert.Equal(t, "whatsapp:+5491155550001|hola, ¿qué tareas tengo?", env.pipeline.handled[0])
	env.pipeline.mu.Unlock()

	env.sender.mu.Lock()
	assert.Equal(t, []string{"¡Hola! ¿En qué te ayudo?"}, env.sender.sent["whatsapp:+5491155550001"])
	env.sender.mu.Unlock()
}

func TestWhatsAppWebhookMissingFrom(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.server.Client().Post(env.server.URL+"/whatsapp", "application/x-www-form-urlencoded", strings.NewReader("Body=hola"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWhatsAppWebhookAnswersOKWhenDeliveryFails(t *testing.T) {
	env := newTestEnv(t)
	env.sender.fail = true

	form := url.Values{}
	form.Set("From", "whatsapp:+5491155550001")
	form.Set("Body", "hola")

	resp, err := env.server.Client().Post(env.server.URL+"/whatsapp", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer resp.Body.Close()

	// Twilio retries the inbound message on non-2xx, which would double
	// process it. Delivery failures only get logged.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatReturnsReplyInline(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/chat", map[string]string{"message": "resumen por favor"}, nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "¡Hola! ¿En qué te ayudo?", body.Response)

	env.pipeline.mu.Lock()
	require.Len(t, env.pipeline.handled, 1)
	assert.Equal(t, "web_user|resumen por favor", env.pipeline.handled[0])
	env.pipeline.mu.Unlock()

	env.sender.mu.Lock()
	assert.Empty(t, env.sender.sent, "chat replies must not go through the gateway")
	env.sender.mu.Unlock()
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/chat", map[string]string{"message": ""}, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEventsListsToday(t *testing.T) {
	env := newTestEnv(t)

	today := time.Now().UTC().Format("2006-01-02")
	_, err := env.calendar.Create(context.Background(), "whatsapp:+5491155550001", "Turno médico", today, "12:34", 60)
	require.NoError(t, err)

	resp, err := env.server.Client().Get(env.server.URL + "/events?subject_id=" + url.QueryEscape("whatsapp:+5491155550001"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Events []eventView `json:"events"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Events, 1)
	assert.Equal(t, "Turno médico", body.Events[0].Title)
	assert.Equal(t, today+" 12:34", body.Events[0].Start)
}

func TestEventsRequiresSubject(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.server.Client().Get(env.server.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminTokenExchange(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/admin/token", tokenRequest{Operator: "lautaro", Secret: "operator-secret"}, nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body tokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)

	claims, err := env.tokens.ValidateToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "lautaro", claims.Operator)
}

func TestAdminTokenRejectsWrongSecret(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/admin/token", tokenRequest{Operator: "lautaro", Secret: "guess"}, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminSendRequiresBearer(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/admin/send-reminder", adminSendRequest{To: "whatsapp:+54911", Message: "hola"}, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminSendDeliversAndAudits(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.tokens.Generate("lautaro", time.Hour)
	require.NoError(t, err)

	resp := env.postJSON(t, "/admin/send-reminder",
		adminSendRequest{To: "whatsapp:+5491155550002", Message: "💊 Recordá tus medicamentos"},
		map[string]string{"Authorization": "Bearer " + token})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	env.sender.mu.Lock()
	assert.Equal(t, []string{"💊 Recordá tus medicamentos"}, env.sender.sent["whatsapp:+5491155550002"])
	env.sender.mu.Unlock()

	select {
	case ev := <-env.auditor.Inbox():
		assert.Equal(t, audit.KindAdminSend, ev.Kind)
		assert.Equal(t, "whatsapp:+5491155550002", ev.SubjectID)
	default:
		t.Fatal("expected an audit event for the admin send")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.server.Client().Get(env.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

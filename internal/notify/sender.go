package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lautaro2705-commits/asistente-personal/internal/platform/metrics"
)

// Sender chunks long messages and sends each part through the underlying
// gateway. A failed chunk aborts the remaining ones so the recipient never
// sees a message with its middle missing.
type Sender struct {
	gateway Gateway
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Sender)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sender) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sender) { s.metrics = m }
}

func NewSender(gateway Gateway, opts ...Option) *Sender {
	s := &Sender{
		gateway: gateway,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sender) Send(ctx context.Context, address, text string) error {
	parts := SplitMessage(text)
	for i, part := range parts {
		if err := s.gateway.Send(ctx, address, part); err != nil {
			if s.metrics != nil {
				s.metrics.IncNotification("error")
			}
			s.logger.ErrorContext(ctx, "send failed, aborting remaining chunks",
				"address", Redact(address), "chunk", i+1, "chunks", len(parts), "error", err)
			return fmt.Errorf("send chunk %d/%d: %w", i+1, len(parts), err)
		}
		if s.metrics != nil {
			s.metrics.IncNotification("ok")
		}
	}
	return nil
}

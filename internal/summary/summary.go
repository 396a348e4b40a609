// Package summary composes the morning digest: greeting, date, quote,
// weather, dólar, today's events and pending tasks. External feeds are
// fetched in parallel and fall back to their own apology lines, so one dead
// feed never suppresses the digest.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lautaro2705-commits/asistente-personal/internal/calendar"
	"github.com/lautaro2705-commits/asistente-personal/internal/organizer"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

const pendingTasksShown = 5

// WeatherFeed reports current conditions for a city as a display block.
type WeatherFeed interface {
	Current(ctx context.Context, city string) (string, error)
}

// DollarFeed reports exchange quotes as a display block.
type DollarFeed interface {
	Quotes(ctx context.Context) (string, error)
}

// Organizer is the slice of the organizer the digest reads.
type Organizer interface {
	PendingTasks(ctx context.Context, subjectID string) ([]organizer.Task, error)
	Location(ctx context.Context, subjectID string) (string, error)
}

// Events lists today's calendar entries for a subject.
type Events interface {
	Today(ctx context.Context, subjectID string) ([]calendar.Event, error)
}

type Service struct {
	weather   WeatherFeed
	dollar    DollarFeed
	organizer Organizer
	events    Events
	quote     func() string
	loc       *time.Location
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithQuote overrides the quote source, mainly for deterministic tests.
func WithQuote(quote func() string) Option {
	return func(s *Service) { s.quote = quote }
}

func NewService(weather WeatherFeed, dollar DollarFeed, org Organizer, events Events, quote func() string, loc *time.Location, opts ...Option) *Service {
	s := &Service{
		weather:   weather,
		dollar:    dollar,
		organizer: org,
		events:    events,
		quote:     quote,
		loc:       loc,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Daily renders the digest for one subject.
func (s *Service) Daily(ctx context.Context, subjectID string) (string, error) {
	now := requestcontext.Now(ctx).In(s.loc)

	city, err := s.organizer.Location(ctx, subjectID)
	if err != nil {
		return "", err
	}

	var weatherBlock, dollarBlock string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		block, err := s.weather.Current(gctx, city)
		if err != nil {
			s.logger.WarnContext(gctx, "weather feed unavailable", "error", err)
		}
		weatherBlock = block
		return nil
	})
	g.Go(func() error {
		block, err := s.dollar.Quotes(gctx)
		if err != nil {
			s.logger.WarnContext(gctx, "dollar feed unavailable", "error", err)
		}
		dollarBlock = block
		return nil
	})
	_ = g.Wait() // feed goroutines never return errors

	var b strings.Builder
	b.WriteString(greetingFor(now.Hour()))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "📅 *%s*\n\n", spanishDate(now))
	b.WriteString(s.quote())
	b.WriteString("\n\n")
	b.WriteString(weatherBlock)
	b.WriteString("\n\n")
	b.WriteString(dollarBlock)
	b.WriteString("\n")

	events, err := s.events.Today(ctx, subjectID)
	if err != nil {
		return "", err
	}
	if len(events) > 0 {
		b.WriteString("📆 *Eventos de hoy:*\n")
		for _, ev := range events {
			fmt.Fprintf(&b, "  • %s - %s\n", ev.Start.In(s.loc).Format("15:04"), ev.Title)
		}
	} else {
		b.WriteString("📆 No tienes eventos programados para hoy.\n")
	}
	b.WriteString("\n")

	tasks, err := s.organizer.PendingTasks(ctx, subjectID)
	if err != nil {
		return "", err
	}
	if len(tasks) > 0 {
		b.WriteString("📋 *Tareas pendientes:*\n")
		for i, task := range tasks {
			if i == pendingTasksShown {
				fmt.Fprintf(&b, "  _...y %d más_\n", len(tasks)-pendingTasksShown)
				break
			}
			fmt.Fprintf(&b, "  • %s\n", task.Text)
		}
	} else {
		b.WriteString("📋 No tienes tareas pendientes. ¡Buen trabajo!\n")
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func greetingFor(hour int) string {
	switch {
	case hour < 12:
		return "¡Buenos días! ☀️"
	case hour < 19:
		return "¡Buenas tardes! 🌤"
	default:
		return "¡Buenas noches! 🌙"
	}
}

var spanishWeekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var spanishMonths = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

func spanishDate(t time.Time) string {
	return fmt.Sprintf("%s %02d de %s, %d",
		spanishWeekdays[t.Weekday()], t.Day(), spanishMonths[t.Month()-1], t.Year())
}

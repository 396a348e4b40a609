package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/lautaro2705-commits/asistente-personal/internal/activity"
	"github.com/lautaro2705-commits/asistente-personal/internal/admintoken"
	"github.com/lautaro2705-commits/asistente-personal/internal/audit"
	"github.com/lautaro2705-commits/asistente-personal/internal/calendar"
	"github.com/lautaro2705-commits/asistente-personal/internal/conversation"
	"github.com/lautaro2705-commits/asistente-personal/internal/dispatch"
	"github.com/lautaro2705-commits/asistente-personal/internal/escalation"
	"github.com/lautaro2705-commits/asistente-personal/internal/feeds"
	"github.com/lautaro2705-commits/asistente-personal/internal/medication"
	"github.com/lautaro2705-commits/asistente-personal/internal/notify"
	"github.com/lautaro2705-commits/asistente-personal/internal/obligation"
	"github.com/lautaro2705-commits/asistente-personal/internal/organizer"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/config"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/httpserver"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/logger"
	"github.com/lautaro2705-commits/asistente-personal/internal/platform/metrics"
	platformredis "github.com/lautaro2705-commits/asistente-personal/internal/platform/redis"
	"github.com/lautaro2705-commits/asistente-personal/internal/reminder"
	"github.com/lautaro2705-commits/asistente-personal/internal/scheduler"
	"github.com/lautaro2705-commits/asistente-personal/internal/subject"
	"github.com/lautaro2705-commits/asistente-personal/internal/summary"
	httptransport "github.com/lautaro2705-commits/asistente-personal/internal/transport/http"
)

// stores groups the persistence backends so the postgres/memory decision
// happens in one place.
type stores struct {
	organizerTasks     organizer.TaskStore
	organizerNotes     organizer.NoteStore
	organizerShopping  organizer.ShoppingStore
	organizerExpenses  organizer.ExpenseStore
	organizerLocations organizer.LocationStore
	medications        medication.Store
	reminders          reminder.Store
	subjects           subject.Store
	activity           activity.Store
	obligations        obligation.Store
	calendar           calendar.Store
	audit              audit.Store
}

func memoryStores() stores {
	org := organizer.NewMemoryStore()
	return stores{
		organizerTasks:     org.Tasks(),
		organizerNotes:     org.Notes(),
		organizerShopping:  org.Shopping(),
		organizerExpenses:  org.Expenses(),
		organizerLocations: org.Locations(),
		medications:        medication.NewMemoryStore(),
		reminders:          reminder.NewMemoryStore(),
		subjects:           subject.NewMemoryStore(),
		activity:           activity.NewMemoryStore(),
		obligations:        obligation.NewMemoryStore(),
		calendar:           calendar.NewMemoryStore(),
		audit:              audit.NewMemoryStore(),
	}
}

func postgresStores(db *sql.DB) stores {
	org := organizer.NewPostgresStores(db)
	return stores{
		organizerTasks:     org.Tasks,
		organizerNotes:     org.Notes,
		organizerShopping:  org.Shopping,
		organizerExpenses:  org.Expenses,
		organizerLocations: org.Locations,
		medications:        medication.NewPostgresStore(db),
		reminders:          reminder.NewPostgresStore(db),
		subjects:           subject.NewPostgresStore(db),
		activity:           activity.NewPostgresStore(db),
		obligations:        obligation.NewPostgresStore(db),
		calendar:           calendar.NewPostgresStore(db),
		audit:              audit.NewPostgresStore(db),
	}
}

// registrar adapts the subject service to the pipeline, which only cares
// whether the address was new.
type registrar struct {
	subjects *subject.Service
}

func (r registrar) Ensure(ctx context.Context, address string) (bool, error) {
	_, created, err := r.subjects.Ensure(ctx, address)
	return created, err
}

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	loc := cfg.Location()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st stores
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		st = postgresStores(db)
		log.Info("using postgres persistence")
	} else {
		st = memoryStores()
		log.Warn("POSTGRES_URL not set, state will not survive restarts")
	}

	var history conversation.History
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		history = conversation.NewRedisHistory(redisClient.Client)
		log.Info("using redis conversation history")
	} else {
		history = conversation.NewMemoryHistory()
		log.Warn("REDIS_URL not set, conversation history is in-memory")
	}

	// Outbound messaging.
	gateway := notify.NewTwilioGateway(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.GatewayTimeout)
	sender := notify.NewSender(gateway, notify.WithLogger(log), notify.WithMetrics(m))

	// Domain services.
	subjects := subject.NewService(st.subjects, log)
	org := organizer.NewService(st.organizerTasks, st.organizerNotes, st.organizerShopping, st.organizerExpenses, st.organizerLocations)
	meds := medication.NewService(st.medications)
	reminders := reminder.NewService(st.reminders, sender, loc, reminder.WithLogger(log), reminder.WithMetrics(m))
	cal := calendar.NewService(st.calendar, loc)
	activities := activity.NewService(st.activity)

	// Audit trail.
	auditor := audit.NewPublisher(audit.WithLogger(log))
	auditWorker := audit.NewWorker(st.audit, auditor.Inbox(), audit.WithWorkerLogger(log))

	// Confirmation and escalation.
	policy := escalation.NewPolicy(subjects, sender,
		escalation.WithLogger(log), escalation.WithMetrics(m), escalation.WithAuditor(auditor))
	composer := dispatch.NewCareComposer(meds)
	timeouts := map[obligation.Kind]obligation.Timeouts{
		obligation.KindMedication: {T1: cfg.MedicationT1, T2: cfg.MedicationT2},
		obligation.KindWellness:   {T1: cfg.WellnessT1, T2: cfg.WellnessT2},
	}
	obligations := obligation.NewService(st.obligations, sender, policy, composer, timeouts,
		obligation.WithLogger(log), obligation.WithMetrics(m), obligation.WithAuditor(auditor))

	// Feeds and the daily digest.
	weather := feeds.NewWeatherClient()
	dollar := feeds.NewDollarClient()
	digest := summary.NewService(weather, dollar, org, cal, feeds.MotivationalQuote, loc, summary.WithLogger(log))

	dispatcher := dispatch.NewDispatcher(org, meds, reminders, cal, subjects, weather, dollar, digest,
		dispatch.WithLogger(log), dispatch.WithMetrics(m))

	anthropicClient := anthropic.NewClient()
	oracle := conversation.NewAnthropicOracle(&anthropicClient, cfg.AnthropicModel, cfg.OracleTimeout)
	pipeline := conversation.NewPipeline(history, oracle, dispatcher, registrar{subjects}, activities, obligations, meds, loc,
		conversation.WithLogger(log), conversation.WithMetrics(m))

	// Background schedules.
	runner := scheduler.NewRunner(loc, scheduler.WithLogger(log))
	jobs := scheduler.NewCareJobs(subjects, meds, obligations, reminders, cal, activities, digest, sender, loc,
		scheduler.WithJobsLogger(log))
	jobs.Register(runner)

	// HTTP surface.
	tokens := admintoken.NewService(cfg.AdminJWTSigningKey)
	handler := httptransport.NewHandler(pipeline, sender, cal, tokens, auditor, cfg.AdminTokenHash,
		httptransport.WithLogger(log), httptransport.WithMetrics(m))
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler, tokens, log, m))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return auditWorker.Run(ctx) })
	g.Go(func() error { return runner.Run(ctx) })
	g.Go(func() error {
		log.Info("asistente personal listening", "addr", cfg.Addr, "timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

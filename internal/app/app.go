package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"DailyEdition/internal/config"
	"DailyEdition/internal/domain"
	"DailyEdition/internal/infrastructure/feed"
	"DailyEdition/internal/infrastructure/imagegen"
	"DailyEdition/internal/infrastructure/kafka"
	"DailyEdition/internal/infrastructure/llm"
	"DailyEdition/internal/infrastructure/quotes"
	"DailyEdition/internal/infrastructure/scheduler"
	"DailyEdition/internal/infrastructure/storage"
	"DailyEdition/internal/infrastructure/telegram"
	"DailyEdition/internal/logging"
	"DailyEdition/internal/market"
	"DailyEdition/internal/orchestrator"
	"DailyEdition/internal/ports"
	"DailyEdition/internal/sections"
	"DailyEdition/internal/source"
	"DailyEdition/internal/telemetry"
	"DailyEdition/internal/transport/httpapi"
	"DailyEdition/internal/usecase"
)

// Application wires configs to producers, the orchestrator and the trigger surface.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	telemetry *telemetry.Providers
	producers *sections.Registry
	sinks     []ports.ReportSink
	closers   []func() error
}

// New builds every collaborator named in cfg. Nothing talks to the network
// except the document store, which is verified on open.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format, nil)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	providers, err := telemetry.Init(ctx, cfg.Telemetry, baseLogger.With("component", "telemetry"))
	if err != nil {
		return nil, err
	}
	a.telemetry = providers

	store, err := a.openStore(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	judge, err := llm.NewFromConfig(cfg.Judge, baseLogger.With("component", "judge"))
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Feeds.Timeout}
	quoteClient := quotes.NewYahooClient(cfg.Market.QuotesURL, cfg.Feeds.UserAgent, httpClient)
	marketService := market.NewService(quoteClient, baseLogger.With("component", "market"))

	registry := source.NewRegistry(
		feed.NewRSSFetcher(httpClient, cfg.Feeds.UserAgent, baseLogger.With("component", "source.rss")),
		feed.NewHTMLFetcher(httpClient, cfg.Feeds.UserAgent, baseLogger.With("component", "source.html")),
		market.NewQuoteSource(marketService, map[string][]market.Symbol{
			"ticker":     market.SymbolsFromConfig(cfg.Market.Ticker),
			"indicators": market.SymbolsFromConfig(cfg.Market.Indicators),
		}),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources: registry,
		Judge:   judge,
		Store:   store,
		Logger:  baseLogger.With("component", "pipeline"),
		Tracer:  providers.Tracer,
	})

	producers, err := sections.Build(sections.Deps{
		Pipeline:    pipeline,
		Market:      marketService,
		Illustrator: imagegen.NewIllustrator(judge, cfg.Images.IllustrationEndpoint),
		Config:      cfg,
		Logger:      baseLogger,
	})
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.producers = producers
	a.sinks = a.buildSinks()
	return a, nil
}

func (a *Application) openStore(ctx context.Context) (ports.DocumentStore, error) {
	sc := a.cfg.Store
	switch sc.Driver {
	case "postgres":
		db, err := storage.OpenPostgres(ctx, sc.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		store := storage.NewPostgresStore(db, sc.Postgres.Table)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "elasticsearch":
		es, err := storage.NewElasticClient(sc.Elasticsearch.Addresses)
		if err != nil {
			return nil, err
		}
		store := storage.NewElasticStore(es, sc.Elasticsearch.IndexPrefix, sc.Elasticsearch.Pipeline)
		if err := store.EnsurePipeline(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return storage.NewMemoryStore(), nil
	}
}

func (a *Application) buildSinks() []ports.ReportSink {
	var sinks []ports.ReportSink
	tg := a.cfg.Notifications.Telegram
	if tg.BotToken != "" && tg.ChatID != "" {
		sinks = append(sinks, telegram.NewNotifier(tg.BotToken, tg.ChatID, tg.APIBase))
	}
	kc := a.cfg.Notifications.Kafka
	if len(kc.Brokers) > 0 && kc.Topic != "" {
		publisher := kafka.NewReportPublisher(kc.Brokers, kc.Topic)
		a.closers = append(a.closers, publisher.Close)
		sinks = append(sinks, publisher)
	}
	return sinks
}

// Tasks lists the configured tasks in order. Ids without a producer stay in
// the list and are reported as skipped.
func (a *Application) Tasks() []orchestrator.Task {
	tasks := make([]orchestrator.Task, 0, len(a.cfg.Orchestrator.Tasks))
	for _, id := range a.cfg.Orchestrator.Tasks {
		task := orchestrator.Task{ID: id, Name: id}
		if p, ok := a.producers.Lookup(id); ok {
			task.Name = p.Name()
			task.Available = true
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// RunTask produces a single section in the current process.
func (a *Application) RunTask(ctx context.Context, id string) error {
	p, ok := a.producers.Lookup(id)
	if !ok {
		return fmt.Errorf("unknown task %q", id)
	}
	logger := a.logger.With("task", id)
	logger.InfoContext(ctx, "task started")
	if err := p.Produce(ctx); err != nil {
		logger.ErrorContext(ctx, "task failed", "error", err)
		return err
	}
	logger.InfoContext(ctx, "task finished")
	return nil
}

// Orchestrator builds the daily runner. Out receives the human readable report.
func (a *Application) Orchestrator(out io.Writer, inProcess bool) (*orchestrator.Orchestrator, error) {
	runner, err := a.runner(a.inProcess(inProcess))
	if err != nil {
		return nil, err
	}
	metrics, err := orchestrator.NewMetrics(a.telemetry.Meter)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(orchestrator.Options{
		Tasks:   a.Tasks(),
		Runner:  runner,
		Timeout: a.cfg.Orchestrator.TaskTimeout,
		Out:     out,
		Sinks:   a.sinks,
		Metrics: metrics,
		Logger:  a.logger.With("component", "orchestrator"),
	}), nil
}

// inProcess reports whether tasks share this process. Child processes would
// each open their own memory store and drop every write on exit.
func (a *Application) inProcess(requested bool) bool {
	if requested {
		return true
	}
	if a.cfg.RunsInProcess() {
		a.logger.Info("tasks run in-process", "store", a.cfg.Store.Driver)
		return true
	}
	return false
}

func (a *Application) runner(inProcess bool) (orchestrator.Runner, error) {
	if !inProcess {
		runner, err := orchestrator.NewProcessRunner()
		if err != nil {
			return nil, err
		}
		return runner, nil
	}
	funcs := orchestrator.FuncRunner{}
	for _, id := range a.producers.IDs() {
		funcs[id] = func(ctx context.Context) error { return a.RunTask(ctx, id) }
	}
	return funcs, nil
}

// RunDaily runs every task once and returns the report.
func (a *Application) RunDaily(ctx context.Context, out io.Writer, inProcess bool) (domain.RunReport, error) {
	orch, err := a.Orchestrator(out, inProcess)
	if err != nil {
		return domain.RunReport{}, err
	}
	return orch.Run(ctx, ""), nil
}

// Serve exposes the trigger surface and the daily scheduler until ctx ends.
func (a *Application) Serve(ctx context.Context, out io.Writer) error {
	orch, err := a.Orchestrator(out, false)
	if err != nil {
		return err
	}
	dispatcher := orchestrator.NewDispatcher(ctx, orch.Run, a.logger.With("component", "dispatcher"))
	defer dispatcher.Wait()

	if a.cfg.Scheduler.Enabled {
		driver, err := scheduler.NewDailyScheduler(a.cfg.Scheduler.RunAt, a.cfg.Scheduler.Location())
		if err != nil {
			return err
		}
		sched := usecase.NewScheduler(driver, dispatcher, a.logger.With("component", "scheduler"))
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = sched.Stop(stopCtx)
		}()
	}

	router := httpapi.NewRouter(dispatcher, httpapi.Options{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Metrics:        a.telemetry.MetricsHandler,
		Logger:         a.logger.With("component", "http"),
	})
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return httpapi.Serve(ctx, srv, a.cfg.Server.ShutdownTimeout, a.logger)
}

// Close releases stores, sinks and telemetry.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

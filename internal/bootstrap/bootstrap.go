package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	healthstoreinadapter "pulse/internal/modules/healthstore/adapter/in"
	healthstoreoutadapter "pulse/internal/modules/healthstore/adapter/out"
	healthstoredomain "pulse/internal/modules/healthstore/domain"
	healthstoreservice "pulse/internal/modules/healthstore/service"
	healthstoreusecase "pulse/internal/modules/healthstore/usecase"
	heartrateinadapter "pulse/internal/modules/heartrate/adapter/in"
	heartrateoutadapter "pulse/internal/modules/heartrate/adapter/out"
	heartratein "pulse/internal/modules/heartrate/port/in"
	heartrateservice "pulse/internal/modules/heartrate/service"
	heartrateusecase "pulse/internal/modules/heartrate/usecase"
	permissioninadapter "pulse/internal/modules/permission/adapter/in"
	permissionoutadapter "pulse/internal/modules/permission/adapter/out"
	permissionservice "pulse/internal/modules/permission/service"
	permissionusecase "pulse/internal/modules/permission/usecase"
	"pulse/internal/platform/clock"
	"pulse/internal/platform/config"
	"pulse/internal/platform/healthrpc"
	"pulse/internal/platform/id"
	"pulse/internal/platform/logging"
	"pulse/internal/platform/metrics"
	uiapp "pulse/internal/ui/app"
)

type App struct {
	Config  config.Config
	Log     zerolog.Logger
	Metrics *metrics.Metrics

	HeartRateCLI  heartrateinadapter.CLIHandler
	HeartRateTUI  heartrateinadapter.TUIHandler
	PermissionCLI permissioninadapter.CLIHandler
	SettingsCLI   healthstoreinadapter.CLIHandler

	session heartratein.Usecase
	closers []func() error
}

// Provider is a health store backed by the local data dir.
type Provider struct {
	Handler healthstoreinadapter.RPCHandler
	CLI     healthstoreinadapter.CLIHandler
	Close   func() error
}

// NewProvider builds the SQLite-backed health store for cfg. It serves
// both the embedded broker and the healthbroker plugin binary.
func NewProvider(cfg config.Config, m *metrics.Metrics, log zerolog.Logger) (*Provider, error) {
	records, err := healthstoreoutadapter.NewSQLiteRecordStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new record store: %w", err)
	}
	grants := healthstoreoutadapter.NewFileGrantStore(cfg.GrantsPath)
	storeUC := healthstoreusecase.NewInteractor(healthstoreservice.NewStoreService(
		id.UUID{},
		records,
		grants,
		healthstoredomain.ConsentPolicy(cfg.Broker.Consent),
		m,
		log,
	))
	return &Provider{
		Handler: healthstoreinadapter.NewRPCHandler(storeUC),
		CLI:     healthstoreinadapter.NewCLIHandler(storeUC),
		Close:   records.Close,
	}, nil
}

func New(cfg config.Config) (*App, error) {
	log, logCloser, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Log: log, Metrics: metrics.New()}
	app.closers = append(app.closers, logCloser.Close)

	provider, err := NewProvider(cfg, app.Metrics, log)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.closers = append(app.closers, provider.Close)

	var client healthrpc.Client
	switch cfg.Broker.Mode {
	case config.BrokerModePlugin:
		launched, stop, err := healthrpc.Launch(cfg.Broker.Binary, cfg.DataDir, log)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.closers = append(app.closers, func() error { stop(); return nil })
		client = launched
	default:
		client = healthrpc.NewLocalClient(provider.Handler)
	}
	log.Info().Str("broker", cfg.Broker.Mode).Str("data_dir", cfg.DataDir).Msg("health store ready")

	permissionUC := permissionusecase.NewInteractor(permissionservice.NewPermissionService(
		permissionoutadapter.NewBrokerCapabilityClient(client),
		permissionoutadapter.NewOSSettingsLauncher(cfg.SettingsCommand, cfg.GrantsPath),
		log,
	))

	session := heartrateusecase.NewInteractor(
		heartrateservice.NewHeartRateService(clock.SystemClock{}, cfg.Location, cfg.WindowHours, heartrateoutadapter.NewBrokerSampleStore(client), log),
		permissionUC,
		app.Metrics,
		log,
	)

	app.session = session
	app.HeartRateCLI = heartrateinadapter.NewCLIHandler(session)
	app.HeartRateTUI = heartrateinadapter.NewTUIHandler(session)
	app.PermissionCLI = permissioninadapter.NewCLIHandler(permissionUC)
	app.SettingsCLI = provider.CLI
	return app, nil
}

// Close ends the session first, then releases resources in reverse order.
func (a *App) Close() error {
	if a.session != nil {
		a.session.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// RunTUI blocks until the user quits. A non-empty metricsAddr serves
// Prometheus metrics for the lifetime of the UI.
func RunTUI(app *App, metricsAddr string) error {
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: app.Metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.Log.Error().Err(err).Str("addr", metricsAddr).Msg("metrics server")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	updates, unsubscribe := app.HeartRateTUI.Subscribe()
	defer unsubscribe()

	model := uiapp.NewModel(app.HeartRateTUI, updates, app.Config.GrantsPath)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

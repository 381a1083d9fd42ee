// Package daemon wires the local cache, the gateway client, the sync engine
// and the scheduler into the long-running sync process.
package daemon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nipa/healthsync/internal/client/attachments"
	"github.com/nipa/healthsync/internal/client/client"
	"github.com/nipa/healthsync/internal/client/config"
	"github.com/nipa/healthsync/internal/client/device"
	"github.com/nipa/healthsync/internal/client/scheduler"
	"github.com/nipa/healthsync/internal/client/services"
	"github.com/nipa/healthsync/internal/logging"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	remote    client.Remote
	sync      *services.SyncService
	records   *services.RecordService
	scheduler *scheduler.Scheduler
	watcher   *device.ConnectivityWatcher
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if c.OwnerID == "" {
		return nil, errors.New("owner id is required (-o)")
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	remote, err := client.NewGRPCClient(c.GatewayAddr, c.AccessToken, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("gateway client error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, remote)
	if err != nil {
		_ = remote.Close()
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// newApp builds everything above the database and transport.
func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, remote client.Remote) (*App, error) {
	uploader, err := attachments.NewS3Uploader(ctx, attachments.S3Config{
		Region:       c.S3.Region,
		AccessKey:    c.S3.AccessKey,
		SecretKey:    c.S3.SecretKey,
		BaseEndpoint: c.S3.BaseEndpoint,
		Bucket:       c.S3.Bucket,
	})
	if err != nil {
		return nil, fmt.Errorf("attachment storage error: %w", err)
	}

	repos := client.NewRepositories(db)
	ss := services.NewSyncService(remote, repos.Notifications, repos.ClientHistory, repos.Metadata, logger,
		services.WithUploader(uploader))

	app := &App{
		config:  c,
		logger:  logger,
		db:      db,
		remote:  remote,
		sync:    ss,
		records: services.NewRecordService(repos.Notifications, repos.ClientHistory, logger),
	}

	battery := device.NewBatteryMonitor(c.PowerSupplyDir, c.BatteryThreshold)
	app.scheduler = scheduler.New(app.runJob, scheduler.Config{
		Interval:       c.SyncInterval,
		InitialBackoff: c.InitialBackoff,
		MaxBackoff:     c.MaxBackoff,
		Conditions: []scheduler.Condition{
			{Name: "network", Met: func() bool { return app.watcher.Online() }},
			{Name: "battery", Met: func() bool { return !battery.Low() }},
		},
	}, logger)
	app.watcher = device.NewConnectivityWatcher(remote, c.ProbeInterval, app.scheduler.TriggerNow, logger)

	return app, nil
}

// Records is the entry point for local user actions on the cache. Changes
// made through it are uploaded by the next sync run.
func (app *App) Records() *services.RecordService {
	return app.records
}

// SyncNow asks the scheduler for a run without waiting for the next period.
func (app *App) SyncNow() {
	app.scheduler.TriggerNow()
}

func (app *App) runJob(ctx context.Context) scheduler.Outcome {
	return app.sync.RunJob(ctx, app.config.OwnerID)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the connectivity watcher and the scheduler and blocks until a
// termination signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting sync daemon...", "owner", app.config.OwnerID, "gateway", app.config.GatewayAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = app.watcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := app.scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	st := app.scheduler.Status()
	app.logger.Info(context.Background(), "sync daemon stopped", "state", st.State.String(), "runs", st.Runs)
	app.close()
}

func (app *App) close() {
	if err := app.remote.Close(); err != nil {
		app.logger.Warn(context.Background(), "closing gateway client", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "closing database", "error", err)
	}
}

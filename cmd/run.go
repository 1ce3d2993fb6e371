package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/config"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/api"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/cache"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/db"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/hardware"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/kiosk"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/remote"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/repository"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the kiosk",
	Long:  `Run the kiosk: code entry loop, order sync, outbox drain and the admin API`,
	RunE:  runKiosk,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runKiosk(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	orderRepo := repository.NewOrderRepository(gormDB)
	pendingRepo := repository.NewPendingActionRepository(gormDB)
	remoteClient := remote.NewClient(cfg.Remote)

	throttle, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without throttling")
		throttle, _ = cache.NewRedisCache(config.RedisConfig{Enabled: false})
	}
	defer throttle.Close()

	doors, closePort, err := buildDoorOpener(cfg)
	if err != nil {
		return err
	}
	if closePort != nil {
		defer closePort.Close()
	}

	resolver := service.NewResolver(orderRepo, pendingRepo, cfg.Kiosk.GraceWindow)
	syncer := service.NewSyncer(orderRepo, remoteClient)
	reporter := service.NewReporter(pendingRepo, remoteClient)
	drainer := service.NewDrainer(pendingRepo, remoteClient)
	poller := service.NewUnlockPoller(remoteClient, doors)

	loop := kiosk.New(
		resolver, syncer, reporter,
		doors, &hardware.ConsoleDisplay{Out: os.Stdout}, hardware.NewConsoleInput(os.Stdin),
		throttle, cfg.Kiosk.OpenAllCode, cfg.Kiosk.AllDoors,
	)

	// Prime the replica before accepting codes; a failure here is fine, the
	// kiosk serves whatever local state it has.
	syncer.RunOnce(ctx)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runScheduler(ctx, cfg.Sync, syncer, drainer, poller)
	})

	g.Go(func() error {
		return loop.Run(ctx)
	})

	if cfg.Server.Enabled {
		server := api.NewServer(cfg.Server, orderRepo, pendingRepo, syncer, doors)
		g.Go(func() error {
			return server.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			return server.Shutdown(context.Background())
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Kiosk error")
		return err
	}

	log.Info().Msg("Kiosk shutting down gracefully")
	return nil
}

// runScheduler hosts the periodic jobs: order sync, outbox drain and the
// remote unlock poll. Each job logs and skips on failure; none of them may
// block the code entry loop.
func runScheduler(ctx context.Context, cfg config.SyncConfig, syncer *service.Syncer, drainer *service.Drainer, poller *service.UnlockPoller) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(cfg.OrdersInterval),
		gocron.NewTask(func() { syncer.RunOnce(ctx) }),
	); err != nil {
		return err
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(cfg.OutboxInterval),
		gocron.NewTask(func() { drainer.DrainOnce(ctx) }),
	); err != nil {
		return err
	}

	if cfg.UnlockEnabled {
		if _, err := scheduler.NewJob(
			gocron.DurationJob(cfg.UnlockInterval),
			gocron.NewTask(func() { poller.PollOnce(ctx) }),
		); err != nil {
			return err
		}
	}

	scheduler.Start()
	<-ctx.Done()
	return scheduler.Shutdown()
}

// buildDoorOpener picks the relay board or the dry-run opener
func buildDoorOpener(cfg config.Config) (hardware.DoorOpener, io.Closer, error) {
	if !cfg.Serial.Enabled {
		log.Info().Msg("Serial disabled, door openings are dry runs")
		return hardware.NoopDoorOpener{}, nil, nil
	}

	port, err := hardware.OpenSerialPort(cfg.Serial.Device)
	if err != nil {
		return nil, nil, err
	}
	opener := hardware.NewRelayBoard(port, cfg.Kiosk.DoorStagger, cfg.Kiosk.DoorHold)
	return opener, port, nil
}

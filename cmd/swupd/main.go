package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/desertwitch/swupd/internal/configuration"
	"github.com/desertwitch/swupd/internal/operation"
	"github.com/desertwitch/swupd/internal/resource"
	"github.com/desertwitch/swupd/internal/schema"
	"github.com/desertwitch/swupd/internal/ui"
	"github.com/desertwitch/swupd/internal/updater"
	"github.com/lmittmann/tint"
)

const (
	stackTraceBufMax = 1 << 24

	terminalLogHandler = "terminal"
	uiLogHandler       = "ui"
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	configFile = flag.String("config", configuration.DefaultConfigFile, "application configuration file")
	uiEnabled  = flag.Bool("ui", false, "enable the UI")
	planOnly   = flag.Bool("plan", false, "print the parsed update description and exit")
	debug      = flag.Bool("debug", false, "enable debug logging")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")

	logManager = NewSlogManager()
)

func logLevel() slog.Level {
	if *debug {
		return slog.LevelDebug
	}

	return slog.LevelInfo
}

func setupLogging() {
	logManager.RemoveHandler(uiLogHandler)
	logManager.AddHandler(terminalLogHandler, tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel(),
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(slog.New(logManager))
}

func setupUILogging(uiHandler *ui.Handler) {
	logManager.AddHandler(uiLogHandler, ui.NewLogHandler(uiHandler.LogWriter, logLevel()))
	logManager.RemoveHandler(terminalLogHandler)
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, syscall.SIGUSR1)
	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			os.Stderr.Write(buf[:stacklen])
		}
	}()
}

func startApp(ctx context.Context, wg *sync.WaitGroup, app *App) {
	defer wg.Done()

	if app.uiHandler != nil {
		slog.Info("Waiting for UI...")
		for !app.uiHandler.Initialized.Load() && !app.uiHandler.Failed.Load() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Millisecond): //nolint:mnd
			}
		}
	}

	if err := app.Launch(ctx); err != nil {
		ExitCode = 1
	}
}

func startUI(wg *sync.WaitGroup, app *App) {
	defer wg.Done()

	if app.uiHandler != nil {
		defer setupLogging()

		setupUILogging(app.uiHandler)

		if err := app.LaunchUI(); err != nil {
			setupLogging()
			slog.Error("UI failure: falling back to terminal.", "err", err)
		}
	}
}

func printPlan(path string) {
	cfg, err := loadDescription(path)
	if err != nil {
		slog.Error("Failed to load the update description.", "err", err)
		ExitCode = 1

		return
	}

	out, err := cfg.MarshalPlan()
	if err != nil {
		slog.Error("Failed to render the update plan.", "err", err)
		ExitCode = 1

		return
	}

	fmt.Fprint(os.Stdout, string(out))
}

//nolint:funlen
func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <update-description.xml>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()
	setupLogging()
	setupSignalHandlers(cancel)

	if flag.NArg() != 1 {
		slog.Error("Failed to start.", "err", ErrMissingDescription)
		flag.Usage()
		ExitCode = 2

		return
	}
	descriptionPath := flag.Arg(0)

	if *planOnly {
		printPlan(descriptionPath)

		return
	}

	memObserver := newMemoryObserver(ctx)
	defer memObserver.Stop()

	cpuProfiler := newProfiler(ctx, profileCPU, *cpuprofile)
	defer cpuProfiler.Stop()

	allocProfiler := newProfiler(ctx, profileAllocs, *memprofile)
	defer allocProfiler.Stop()

	osProvider := &schema.OS{}
	unixProvider := &schema.Unix{}
	configHandler := configuration.NewHandler(&configuration.GodotenvProvider{Environment: true})

	appConfig, err := configHandler.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load the application configuration.", "err", err)
		ExitCode = 1

		return
	}

	cfg, err := loadDescription(descriptionPath)
	if err != nil {
		slog.Error("Failed to load the update description.", "err", err)
		ExitCode = 1

		return
	}

	platform := appConfig.Platform
	if platform == "" {
		platform, err = schema.Platform(unixProvider)
		if err != nil {
			slog.Error("Failed to detect the platform.", "err", err)
			ExitCode = 1

			return
		}
	}

	resources := resource.NewManager(appConfig.TargetRoot)
	opHandler := operation.NewHandler(resources, osProvider, unixProvider, operation.Options{
		StagingDir:   appConfig.StagingDir,
		VerifyCopies: appConfig.VerifyCopies,
	})

	delegate := newCLIDelegate(appConfig.RemoteRoot, osProvider, nil)
	upd := updater.New(cfg, delegate, opHandler, updater.Options{Platform: platform})

	var uiHandler *ui.Handler
	if *uiEnabled {
		uiHandler = ui.NewHandler(ctx, cancel, upd)
		delegate.notifier = uiHandler
	}

	app := NewApp(appConfig, upd, uiHandler)

	var wg sync.WaitGroup

	wg.Add(1)
	go startUI(&wg, app)

	wg.Add(1)
	go startApp(ctx, &wg, app)

	wg.Wait()
}

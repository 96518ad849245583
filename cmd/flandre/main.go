package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flandre-go/flandre/internal/config"
	"github.com/flandre-go/flandre/internal/core/ecs"
	"github.com/flandre-go/flandre/internal/core/event"
	coresys "github.com/flandre-go/flandre/internal/core/system"
	"github.com/flandre-go/flandre/internal/data"
	"github.com/flandre-go/flandre/internal/gfx"
	"github.com/flandre-go/flandre/internal/input"
	"github.com/flandre-go/flandre/internal/persist"
	"github.com/flandre-go/flandre/internal/scripting"
	"github.com/flandre-go/flandre/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/flandre.toml"
	if p := os.Getenv("FLANDRE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger; the terminal owns stdout
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	log.Info("starting", zap.String("name", cfg.App.Name), zap.String("version", cfg.App.Version))

	// 3. Read the script manifest
	manifest, err := data.LoadManifest(filepath.Join(cfg.Script.Dir, cfg.Script.Manifest))
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	if cfg.Script.Entry != "" {
		if err := manifest.SetEntry(cfg.Script.Entry); err != nil {
			return fmt.Errorf("script.entry: %w", err)
		}
	}
	log.Info("script manifest loaded", zap.String("name", manifest.Name), zap.Int("files", manifest.Count()))

	// 4. Optional failure journal
	bus := event.NewBus()
	if cfg.Diagnostics.Enabled {
		journal, closeJournal, err := openJournal(cfg.Diagnostics, log)
		if err != nil {
			return fmt.Errorf("diagnostics: %w", err)
		}
		defer closeJournal()
		system.RecordFailures(bus, journal, time.Now, log)
	}

	// 5. Terminal
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	term, err := gfx.NewTerminal(screen, cfg.Window, log)
	if err != nil {
		return err
	}
	poller := input.NewPoller(screen, 256)
	// Fini unblocks PollEvent, so the screen goes before the poller.
	// Deferred calls also run while panicking, leaving the terminal usable.
	defer func() {
		term.Close()
		poller.Stop()
	}()
	state := input.NewState(cfg.Input.KeyHold)
	system.TrackResize(bus, term.Sync)

	// 6. Registry and scripts
	reg := ecs.NewRegistry(ecs.RegistryConfig{
		Layers:     cfg.Entity.Layers,
		MaxObjects: cfg.Entity.MaxObjects,
	}, log)
	engine := scripting.NewEngine(reg, scripting.Deps{
		Backend: term,
		Input:   state,
		Bus:     bus,
	}, log)
	defer engine.Close()

	if err := engine.Load(cfg.Script.Dir, manifest, cfg.Script.Encoding); err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	log.Info("scripts loaded", zap.String("hash", engine.ScriptHash()), zap.Int("entities", reg.Len()))

	// 7. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(poller, state, bus, time.Now, log))
	runner.Register(system.NewEventSystem(bus, log))
	runner.Register(system.NewUpdateSystem(engine))
	runner.Register(system.NewDrawSystem(engine, term))
	runner.Register(system.NewCleanupSystem(state, time.Now))

	// 8. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	ticker := time.NewTicker(cfg.Frame.TickRate)
	defer ticker.Stop()
	log.Info("frame loop started", zap.Duration("tick", cfg.Frame.TickRate))

	for {
		select {
		case <-ticker.C:
			if err := runner.Tick(cfg.Frame.TickRate); err != nil {
				log.Error("frame failed, stopping", zap.Error(err))
				return err
			}
			switch {
			case engine.Terminated():
				log.Info("stopped by script")
				return nil
			case state.QuitRequested():
				log.Info("stopped by keyboard interrupt")
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("received shutdown signal", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// openJournal connects to PostgreSQL, migrates, and starts the async journal.
func openJournal(cfg config.DiagnosticsConfig, log *zap.Logger) (*persist.Journal, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	if _, err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	journal := persist.NewJournal(persist.NewFailureRepo(db), cfg.QueueSize, cfg.Timeout, log)
	return journal, func() {
		journal.Close()
		if n := journal.Dropped(); n > 0 {
			log.Warn("failure journal dropped records", zap.Int64("dropped", n))
		}
		db.Close()
	}, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	out := "stderr"
	if cfg.File != "" {
		out = cfg.File
	}
	zapCfg.OutputPaths = []string{out}
	zapCfg.ErrorOutputPaths = []string{out}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("log output %s: %w", out, err)
	}
	return log, nil
}

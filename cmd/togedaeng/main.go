// togedaeng: yard simulation server for the Togedaeng dog
// Dogs wander a generated yard, recover when stuck, and perform tricks on
// voice or button commands from the dashboard and remote controllers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/togedaeng/go-togedaeng/internal/config"
	"github.com/togedaeng/go-togedaeng/internal/log"
	"github.com/togedaeng/go-togedaeng/pkg/animation"
	"github.com/togedaeng/go-togedaeng/pkg/web"
	"github.com/togedaeng/go-togedaeng/pkg/world"
)

var (
	version = "0.1.0"

	configPath = flag.String("config", "", "YAML config file (overrides TOGEDAENG_CONFIG)")
	port       = flag.String("port", "", "HTTP server port (overrides config)")
	dogs       = flag.String("dogs", "", "Comma-separated dog names to spawn (overrides config)")
	seed       = flag.Int64("seed", 0, "Yard and wander seed (overrides config when non-zero)")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFile    = flag.String("log-file", "", "Also write logs to this rotating file")
	debug      = flag.Bool("debug", false, "Log every HTTP request")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(config.Path(*configPath))
	if err == nil {
		err = cfg.Apply(overrides())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	log.InitFile(cfg.Log.Level, cfg.Log.File)

	fmt.Println()
	fmt.Println("🐶 Togedaeng v" + version)
	fmt.Println("   Yard simulation server")
	fmt.Println()

	if err := run(cfg); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func overrides() config.Overrides {
	o := config.Overrides{
		Port:     *port,
		Seed:     *seed,
		LogLevel: *logLevel,
		LogFile:  *logFile,
		Debug:    *debug,
	}
	for _, name := range strings.Split(*dogs, ",") {
		if name = strings.TrimSpace(name); name != "" {
			o.Dogs = append(o.Dogs, name)
		}
	}
	return o
}

func run(cfg config.File) error {
	var opts []world.Option
	if cfg.Clips != "" {
		clips, err := animation.LoadClipsFile(cfg.Clips)
		if err != nil {
			return err
		}
		opts = append(opts, world.WithClips(clips))
	}

	w, err := world.NewWorld(cfg.World, opts...)
	if err != nil {
		return err
	}
	for _, name := range cfg.Dogs {
		if _, err := w.Spawn(name); err != nil {
			return fmt.Errorf("spawn %q: %w", name, err)
		}
	}

	serverOpts := []web.Option{web.WithDebug(cfg.Server.Debug)}
	if cfg.Server.Static != "" {
		serverOpts = append(serverOpts, web.WithStatic(cfg.Server.Static))
	}
	srv := web.NewServer(w, cfg.Server.Port, serverOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 2)
	go func() {
		errc <- w.Run(ctx)
	}()
	go func() {
		if err := srv.Start(ctx); err != nil {
			errc <- fmt.Errorf("server: %w", err)
		}
	}()

	log.Info("ready",
		"dashboard", "http://localhost:"+cfg.Server.Port,
		"state", "ws://localhost:"+cfg.Server.Port+"/ws/state",
		"control", "ws://localhost:"+cfg.Server.Port+"/ws/control",
		"dogs", len(cfg.Dogs))

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil && !errors.Is(err, context.Canceled) {
			stop()
			return err
		}
	}

	fmt.Println("\n👋 Shutting down...")
	w.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.App().ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("shutdown error", "error", err)
	}

	fmt.Println("✅ Goodbye!")
	return nil
}

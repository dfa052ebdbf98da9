// gpuwatch - GPU telemetry over HTTP, backed by NVML with a simulated
// fallback when no GPU or driver is present.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gpuwatch-project/gpuwatch/internal/config"
	"github.com/gpuwatch-project/gpuwatch/internal/gpu"
	"github.com/gpuwatch-project/gpuwatch/internal/logger"
	"github.com/gpuwatch-project/gpuwatch/internal/server"
	"github.com/gpuwatch-project/gpuwatch/internal/shutdown"
	"github.com/gpuwatch-project/gpuwatch/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	port := flag.Int("port", 0, "override the configured HTTP port")
	showVersion := flag.Bool("version", false, "print version information")
	flag.Parse()

	if *showVersion {
		info := version.GetVersionInfo()
		fmt.Printf("gpuwatch %s\n", info.String())
		fmt.Printf("Build Date: %s\n", info.BuildDate)
		fmt.Printf("Go Version: %s\n", info.GoVersion)
		fmt.Printf("Platform: %s\n", info.Platform)
		os.Exit(0)
	}

	configMgr := config.NewManager(*configPath)
	cfg, err := configMgr.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if *port != 0 {
		cfg.Server.Port = *port
	}

	if err := logger.InitLogger(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to initialize logger: %v\n", err)
	}

	logger.Infof("gpuwatch %s starting", version.GetVersion())
	logger.Infof("config file: %s", configMgr.GetConfigPath())

	// Backend selection happens exactly once; a failed hardware init
	// degrades to the mock backend instead of refusing to start.
	selector := gpu.Bootstrap(gpu.BootstrapConfig{
		MockDevices: cfg.GPU.MockDevices,
		MockSeed:    cfg.GPU.MockSeed,
	}, logger.GetLogger())

	status := selector.Provider().Status()
	logger.WithFields(map[string]interface{}{
		"backend": status.BackendActive,
		"devices": status.DeviceCount,
	}).Info("device provider ready")

	srv := server.NewServer(&server.Config{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		TelemetryInterval: time.Duration(cfg.Telemetry.IntervalSeconds) * time.Second,
	}, selector.Provider())

	if err := srv.Start(); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}

	shutdownMgr := shutdown.NewManager(10 * time.Second)
	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	}, shutdown.PriorityCritical)
	shutdownMgr.Register("websocket-hub", func(ctx context.Context) error {
		srv.WebSocketManager().Stop()
		return nil
	}, shutdown.PriorityHigh)
	shutdownMgr.Register("nvml", func(ctx context.Context) error {
		selector.Close()
		return nil
	}, shutdown.PriorityNormal)
	shutdownMgr.Register("logger", func(ctx context.Context) error {
		return logger.GetLogger().Close()
	}, shutdown.PriorityLow)

	shutdownMgr.Start()
	shutdownMgr.Wait()
}

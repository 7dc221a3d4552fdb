package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/admin"
	"github.com/RyanBerge/SphereDefender-sub000/internal/config"
	"github.com/RyanBerge/SphereDefender-sub000/internal/core/event"
	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/handler"
	gonet "github.com/RyanBerge/SphereDefender-sub000/internal/net"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"github.com/RyanBerge/SphereDefender-sub000/internal/persist"
	"github.com/RyanBerge/SphereDefender-sub000/internal/scripting"
	"github.com/RyanBerge/SphereDefender-sub000/internal/system"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// drainTimeout bounds how long shutdown waits for evicted clients to
// receive their last messages.
const drainTimeout = 2 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             Sphere Defender               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m          co-op convoy game server         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Environment and config
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfgPath := "config/server.toml"
	if p := os.Getenv("SPHERED_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Static definitions and scripts
	printSection("data")
	defs, err := data.LoadDefinitions(cfg.Server.DataDir)
	if err != nil {
		return fmt.Errorf("load definitions: %w", err)
	}
	printStat("entities", defs.Entities.Count())
	printStat("weapons", defs.Weapons.Count())
	printStat("items", defs.Items.Count())
	printStat("regions", defs.Regions.Count())
	printStat("menu events", defs.MenuEvents.Count())

	luaEngine, err := scripting.NewEngine(cfg.Server.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("lua scripts loaded")
	fmt.Println()

	// 4. World state
	seed := cfg.Server.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	worldState := world.NewState(defs, gameConfig(cfg.Game), seed)
	worldState.Damage = luaEngine
	worldState.Scripts = luaEngine
	bus := event.NewBus()
	deps := &handler.Deps{Log: log, World: worldState, Bus: bus}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 5. Optional session history
	var recorder *persist.Recorder
	if cfg.Database.DSN != "" {
		printSection("database")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("postgres connected")

		err = persist.RunMigrations(dbCtx, db.Pool)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()

		recorder = persist.NewRecorder(persist.NewHistoryRepo(db), 0, log)
		recorder.Subscribe(bus)
		go recorder.Run()
	}

	// 6. Admin HTTP
	metrics := admin.NewMetrics()
	board := &admin.StatusBoard{}
	if cfg.Admin.Enabled {
		router := admin.NewRouter(admin.RouterConfig{
			Metrics:     metrics,
			Status:      board,
			CORSOrigins: cfg.Admin.CORSOrigins,
		})
		go func() {
			if err := admin.Serve(ctx, cfg.Admin.BindAddress, router, log); err != nil {
				log.Error("admin server stopped", zap.Error(err))
			}
		}()
	}

	// 7. Handlers and network
	registry := packet.NewRegistry(log)
	handler.RegisterAll(registry, deps)

	peerOpts := gonet.PeerOptions{
		InQueueSize:  cfg.Network.InQueueSize,
		OutQueueSize: cfg.Network.OutQueueSize,
		ReadTimeout:  cfg.Network.ReadTimeout,
		WriteTimeout: cfg.Network.WriteTimeout,
	}
	if cfg.RateLimit.Enabled {
		peerOpts.RateLimit = cfg.RateLimit.MessagesPerSecond
		peerOpts.RateBurst = cfg.RateLimit.Burst
	}
	netServer, err := gonet.NewServer(cfg.Network.BindAddress, peerOpts, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 8. Game loop
	opts := system.Options{
		Sessions:   netServer.NewSessions(),
		Registry:   registry,
		Deps:       deps,
		Network:    cfg.Network,
		ServerName: cfg.Server.Name,
		Metrics:    metrics,
	}
	if cfg.Admin.Enabled {
		opts.Status = board
	}
	if recorder != nil {
		opts.Recorder = recorder
	}
	loop := system.NewLoop(opts)

	printSection("ready")
	printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	if cfg.Admin.Enabled {
		printReady(fmt.Sprintf("admin on %s", cfg.Admin.BindAddress))
	}
	printReady(fmt.Sprintf("tick %s, snapshots every %s", cfg.Network.TickRate, cfg.Network.BroadcastInterval()))
	fmt.Println()

	err = loop.Run(ctx)
	netServer.Shutdown()
	if err != nil {
		log.Info("shutdown signal received", zap.Int("players", worldState.PlayerCount()))
		if worldState.Initialized && worldState.PlayerCount() > 0 {
			event.Emit(bus, event.GameEnded{Regions: worldState.Visited, At: time.Now()})
		}
	} else {
		log.Info("session over, all players left", zap.Int("regions", worldState.Visited))
	}

	// Deliver the final tick's events before the recorder stops.
	bus.SwapBuffers()
	bus.DispatchAll()
	if recorder != nil {
		recorder.Close()
	}
	loop.Drain(drainTimeout)
	log.Info("server stopped")
	return nil
}

func gameConfig(c config.GameConfig) world.GameConfig {
	return world.GameConfig{
		MaxPlayers:         c.MaxPlayers,
		MaxNameLength:      c.MaxNameLength,
		SpawnRadius:        c.SpawnRadius,
		BatteryStart:       c.BatteryStart,
		BatteryMax:         c.BatteryMax,
		LeylineChargeRate:  c.LeylineChargeRate,
		BatteryCostPerUnit: c.BatteryCostPerUnit,
		ZoneColumns:        c.ZoneColumns,
		ZoneRows:           c.ZoneRows,
	}
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
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	if cfg.File == "" {
		return log, nil
	}

	// Rolling file copy, always JSON so it can be shipped.
	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(lj),
		zapCfg.Level,
	)
	return log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}

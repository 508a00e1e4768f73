package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coupfree/coup-server-go/internal/config"
	"github.com/coupfree/coup-server-go/internal/game"
	"github.com/coupfree/coup-server-go/internal/repository"
	"github.com/coupfree/coup-server-go/internal/server"
	"github.com/coupfree/coup-server-go/internal/session"
	"github.com/coupfree/coup-server-go/internal/table"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting coup server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Match-result persistence is optional; the server runs fine in-memory.
	var matchRepo *repository.MatchRepository
	if cfg.Database.Enabled {
		db, dbErr := repository.NewDB(ctx, cfg.Database, logger)
		if dbErr != nil {
			logger.Fatal("failed to connect to database", zap.Error(dbErr))
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		matchRepo = repository.NewMatchRepository(db)
	}

	sessionMgr := session.NewManager(cfg.Server.LeasePeriod, logger)
	logger.Info("session manager initialized",
		zap.Duration("lease_period", cfg.Server.LeasePeriod),
	)
	go sessionMgr.CleanupExpiredSessions(ctx)

	matchMgr := game.NewManager(logger)
	logger.Info("match manager initialized")

	tableMgr := table.NewManager(matchMgr, logger)
	logger.Info("table manager initialized")

	relay := server.NewRelay(matchMgr, sessionMgr, logger)
	matchMgr.SetNotificationHandler(func(n game.MatchNotification) {
		relay.HandleNotification(n)
		if n.Phase == game.PhaseGameOver.String() {
			if t, ok := tableMgr.TableForMatch(n.MatchID); ok {
				tableMgr.FinishMatch(t.ID)
			}
			persistResult(ctx, matchMgr, tableMgr, matchRepo, logger, n)
		}
	})

	go func() {
		if serveErr := relay.Serve(cfg.Server.Address); serveErr != nil {
			logger.Error("relay error", zap.Error(serveErr))
		}
	}()

	logger.Info("coup server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	sessionMgr.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := relay.Shutdown(shutdownCtx); err != nil {
		logger.Error("relay shutdown error", zap.Error(err))
	}

	logger.Info("coup server stopped")
}

// persistResult records a finished match when a repository is configured.
func persistResult(ctx context.Context, matches *game.Manager, tables *table.Manager, repo *repository.MatchRepository, logger *zap.Logger, n game.MatchNotification) {
	if repo == nil {
		return
	}
	state, err := matches.CurrentState(n.MatchID)
	if err != nil {
		return
	}

	players := make([]string, 0, len(state.Players))
	var winnerName string
	for _, p := range state.Players {
		players = append(players, p.ID)
		if p.ID == state.WinnerID {
			winnerName = p.Name
		}
	}

	result := repository.MatchResult{
		MatchID:    n.MatchID,
		WinnerID:   state.WinnerID,
		WinnerName: winnerName,
		Players:    players,
		Turns:      state.Turn,
		FinishedAt: n.Timestamp,
	}
	// Ad-hoc matches have no table; their rows keep the zero values.
	if t, ok := tables.TableForMatch(n.MatchID); ok {
		snap := t.Snapshot()
		result.TableID = snap.ID
		if snap.StartTime != nil {
			result.StartedAt = *snap.StartTime
		}
	}
	if err := repo.SaveResult(ctx, result); err != nil {
		logger.Error("failed to persist match result",
			zap.String("match_id", n.MatchID),
			zap.Error(err),
		)
		return
	}
	logger.Info("match result persisted",
		zap.String("match_id", n.MatchID),
		zap.String("winner", state.WinnerID),
	)
}

// initLogger initializes the zap logger based on configuration.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

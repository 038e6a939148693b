package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/rocketrun/rocketrun-server/internal/background"
	"github.com/rocketrun/rocketrun-server/internal/config"
	"github.com/rocketrun/rocketrun-server/internal/handler"
	"github.com/rocketrun/rocketrun-server/internal/level"
	"github.com/rocketrun/rocketrun-server/internal/session"
	"github.com/rocketrun/rocketrun-server/internal/store"
	"github.com/rocketrun/rocketrun-server/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	opts := &slog.HandlerOptions{}

	switch cfg.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	switch cfg.LogFormat {
	case "json":
		h = slog.NewJSONHandler(os.Stdout, opts)
	default:
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	levels, err := loadLevels(cfg)
	if err != nil {
		return fmt.Errorf("load levels: %w", err)
	}
	slog.Info("levels loaded", "names", levels.Names())

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var sm *session.Manager
	if cfg.SpawnSeed != 0 {
		sm = session.NewManagerWithSeed(levels, st, cfg.SpawnSeed)
		slog.Info("spawn seed pinned", "seed", cfg.SpawnSeed)
	} else {
		sm = session.NewManager(levels, st)
	}

	hub := ws.NewHub()
	router := handler.NewRouter(sm, st)
	hub.OnMessage = router.HandleMessage
	hub.OnDisconnect = router.HandleDisconnect

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(hub, w, r)
	})
	mux.HandleFunc("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		handleLeaderboard(st, cfg.LeaderboardLimit, w, r)
	})
	mux.HandleFunc("/debug/background.png", handleBackgroundPNG)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func loadLevels(cfg *config.Config) (*level.Registry, error) {
	if cfg.LevelsDir != "" {
		slog.Info("loading levels from directory", "dir", cfg.LevelsDir)
		return level.LoadDir(cfg.LevelsDir)
	}
	return level.LoadEmbedded()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, runs will not survive a restart")
		return store.NewMemoryStore(), nil
	}
	return store.NewPostgresStore(ctx, cfg.DatabaseURL)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleWebSocket(hub *ws.Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(fmt.Sprintf("client-%d", hub.ClientCount()+1), hub, conn)
	hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

func handleLeaderboard(st store.Store, limit int, w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	runs, err := st.TopRuns(ctx, limit)
	if err != nil {
		slog.Error("leaderboard query failed", "error", err)
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// handleBackgroundPNG renders one frame of the menu background so the
// grid tuning can be eyeballed without a client.
func handleBackgroundPNG(w http.ResponseWriter, r *http.Request) {
	grid := background.DefaultGrid()
	if t := r.URL.Query().Get("t"); t != "" {
		if secs, err := strconv.ParseFloat(t, 64); err == nil {
			grid.Time = secs
		}
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, grid.Render(640, 360)); err != nil {
		slog.Error("background render failed", "error", err)
	}
}

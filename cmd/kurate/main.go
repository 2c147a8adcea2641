// Command kurate runs the document ingestion service: an HTTP API for
// uploading documents, submitting URLs and curating snippet carts, or an
// MCP stdio server exposing the same operations as tools.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/kurate/kurate/cart"
	"github.com/kurate/kurate/fetch"
	"github.com/kurate/kurate/ingest"
	"github.com/kurate/kurate/parse"
	"github.com/kurate/kurate/server"
	"github.com/kurate/kurate/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := run(cfg, *mcpMode, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *Config, mcpMode bool, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	fetcher := fetch.New(fetch.Config{Timeout: cfg.FetchTimeout()})
	pipeline := parse.New(parse.Config{
		MaxFileSize: int64(cfg.MaxFileMB) << 20,
		Fetcher:     fetcher,
		Logger:      logger,
	})

	ing := ingest.New(st, pipeline, ingest.WithLogger(logger))
	defer ing.Wait()

	carts := cart.New(st, ing, logger)

	if mcpMode || cfg.MCP.Enabled {
		return runMCP(ctx, ing, logger)
	}

	srv := server.New(ing, carts, server.HeaderAuth(cfg.AuthHeader), logger)
	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func runMCP(ctx context.Context, ing *ingest.Service, logger *slog.Logger) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: "kurate", Version: "1.0.0"}, nil)
	ing.RegisterMCP(srv)
	logger.Info("serving MCP over stdio")
	return srv.Run(ctx, &mcp.StdioTransport{})
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

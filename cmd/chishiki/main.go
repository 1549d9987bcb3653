// Package main is the Chishiki CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/chishiki/internal/analytics"
	"github.com/hyperjump/chishiki/internal/cli"
	"github.com/hyperjump/chishiki/internal/config"
	"github.com/hyperjump/chishiki/internal/index"
	"github.com/hyperjump/chishiki/internal/models"
	"github.com/hyperjump/chishiki/internal/query"
	"github.com/hyperjump/chishiki/internal/search"
	"github.com/hyperjump/chishiki/internal/server"
	"github.com/hyperjump/chishiki/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/chishiki/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// applyEnvOverrides lets deploys point at a different index or analytics
// database without editing the config file. A .env file is honored when
// present.
func applyEnvOverrides(cfg *config.Config) {
	_ = godotenv.Load()
	if v := os.Getenv("CHISHIKI_INDEX_URL"); v != "" {
		cfg.Index.URL = v
	}
	if v := os.Getenv("CHISHIKI_ANALYTICS_DB"); v != "" {
		cfg.Analytics.DatabasePath = v
	}
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "retrieve":
		runRetrieve()
	case "analytics":
		runAnalytics()
	case "version", "--version", "-v":
		fmt.Printf("chishiki version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// buildEngine wires the retrieval engine and its collaborators from config.
func buildEngine(cfg *config.Config, logger *zap.Logger) (*search.Engine, *analytics.Tracker, func(), error) {
	trackerOpts := []analytics.Option{
		analytics.WithMaxRecords(cfg.Analytics.MaxRecords),
		analytics.WithLogger(logger),
	}
	closeFn := func() {}
	if cfg.Analytics.DatabasePath != "" {
		store, err := analytics.NewSQLiteStore(cfg.Analytics.DatabasePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open analytics store: %w", err)
		}
		trackerOpts = append(trackerOpts, analytics.WithStore(store))
		closeFn = func() { _ = store.Close() }
	}
	tracker := analytics.NewTracker(trackerOpts...)
	if err := tracker.Restore(); err != nil {
		logger.Warn("failed to restore usage log", zap.Error(err))
	}

	client := index.NewHTTPClient(cfg.Index.URL, time.Duration(cfg.Index.TimeoutSeconds)*time.Second)
	engine := search.NewEngine(client, query.NewProcessor(nil), tracker, logger)
	return engine, tracker, closeFn, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	watchConfig := fs.Bool("watch-config", true, "reload retrieval defaults when the config file changes")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyEnvOverrides(cfg)
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("index_url", cfg.Index.URL),
		zap.Bool("debug", debugMode),
	)

	engine, tracker, closeFn, err := buildEngine(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer closeFn()

	srv := server.NewServer(engine, tracker, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	if *watchConfig {
		watcher := config.NewWatcher(resolvedConfigPath, func(updated *config.Config) {
			srv.UpdateRetrievalDefaults(updated.Retrieval)
		}, logger)
		g.Go(func() error {
			if err := watcher.Start(gctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-gctx.Done():
	}

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if err := g.Wait(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func printRetrieveUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: chishiki retrieve [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  chishiki retrieve -workspace ws1 machine learning
  chishiki retrieve -workspace ws1 -hybrid=false neural networks   # semantic only
  chishiki retrieve -workspace ws1 -exact "error code 1045"        # exact phrase scoring
  chishiki retrieve -workspace ws1 -output json your query
`)
}

// buildQuery joins all positional args with spaces so multi-word queries work
// the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runRetrieve() {
	fs := flag.NewFlagSet("retrieve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = talk to the vector index directly)")
	workspaceID := fs.String("workspace", "", "workspace ID (required)")
	limit := fs.Int("limit", 0, "number of results (0 = config default)")
	threshold := fs.Float64("threshold", 0, "similarity threshold (0 = config default)")
	hybrid := fs.Bool("hybrid", true, "enable hybrid (keyword + semantic) reranking")
	exact := fs.Bool("exact", false, "score the whole query as an exact phrase")
	maxContext := fs.Int("max-context", 0, "context length budget (0 = config default)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printRetrieveUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	queryStr := buildQuery(fs.Args())
	if queryStr == "" || *workspaceID == "" {
		printRetrieveUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	opts := models.RetrievalOptions{
		WorkspaceID:      *workspaceID,
		Limit:            *limit,
		Threshold:        *threshold,
		UseHybridSearch:  hybrid,
		ExactMatch:       *exact,
		MaxContextLength: *maxContext,
	}

	if *serverURL != "" {
		result, err := retrieveViaHTTP(*serverURL, queryStr, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Retrieval failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteRetrievalResult(os.Stdout, result, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyEnvOverrides(cfg)
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	engine, _, closeFn, err := buildEngine(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer closeFn()

	result, err := engine.RetrieveKnowledge(context.Background(), queryStr, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Retrieval failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRetrievalResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func retrieveViaHTTP(serverURL, queryStr string, opts models.RetrievalOptions) (*models.RetrievalResult, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query":   queryStr,
		"options": opts,
	})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/retrieve", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result models.RetrievalResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func runAnalytics() {
	fs := flag.NewFlagSet("analytics", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	limit := fs.Int("limit", 10, "number of top documents")
	workspaceID := fs.String("workspace", "", "optional workspace filter")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	url := fmt.Sprintf("%s/api/v1/analytics/documents/top?limit=%d", *serverURL, *limit)
	if *workspaceID != "" {
		url += "&workspace_id=" + *workspaceID
	}
	resp, err := http.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var docs []models.DocumentUsage
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		fmt.Fprintf(os.Stderr, "Decode failed: %v\n", err)
		os.Exit(1)
	}
	format := cli.OutputText
	if *outputFormat == "json" {
		format = cli.OutputJSON
	}
	if err := cli.WriteTopDocuments(os.Stdout, docs, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`chishiki - knowledge retrieval engine

Usage:
  chishiki server [-config path] [-debug] [-watch-config]   start the HTTP API
  chishiki retrieve [flags] <query>                          run a retrieval
  chishiki analytics [-limit n] [-workspace id]              show top documents
  chishiki version                                           print version
  chishiki help                                              show this help`)
}

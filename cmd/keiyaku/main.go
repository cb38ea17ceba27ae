// Package main is the Keiyaku CLI entry point.
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

	"go.uber.org/zap"

	"github.com/hyperjump/keiyaku/internal/audit"
	"github.com/hyperjump/keiyaku/internal/cli"
	"github.com/hyperjump/keiyaku/internal/config"
	"github.com/hyperjump/keiyaku/internal/extract"
	"github.com/hyperjump/keiyaku/internal/extraction"
	"github.com/hyperjump/keiyaku/internal/ingest"
	"github.com/hyperjump/keiyaku/internal/llm"
	"github.com/hyperjump/keiyaku/internal/metrics"
	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/retrieval"
	"github.com/hyperjump/keiyaku/internal/server"
	"github.com/hyperjump/keiyaku/internal/storage"
	"github.com/hyperjump/keiyaku/internal/vector"
	"github.com/hyperjump/keiyaku/internal/watcher"
	"github.com/hyperjump/keiyaku/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/keiyaku/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so that "keiyaku server" from the project dir uses the project's
// config (including debug). Returns the config and the path actually loaded.
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

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "ask":
		runAsk()
	case "audit":
		runAudit()
	case "extract":
		runExtract()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("keiyaku version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (file drops, ingestion, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ing := components.Ingestor
	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.New(
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		func(path string) {
			if _, err := ing.IngestFile(context.Background(), path); err != nil {
				logger.Warn("drop-folder ingest failed", zap.String("path", path), zap.Error(err))
			}
		},
		nil, // removing a dropped file does not delete the stored contract
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Watch.Directories) > 0 {
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExistingFiles()
	}

	srv := server.NewServer(
		components.Ingestor,
		components.Answerer,
		components.Extractor,
		components.Auditor,
		components.Storage,
		components.VectorIndex,
		components.Counters,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if cfg.Storage.VectorIndexPath != "" {
		if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index save failed",
				zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	watchSvc.Stop()
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// askArgsReorder moves any flags (and their values) that appear after the
// question to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument, so "keiyaku ask \"question\"
// -citations 3" would otherwise leave -citations unparsed.
func askArgsReorder(args []string) []string {
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

func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: keiyaku ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "Question is all remaining arguments joined by spaces. Multi-word questions work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  keiyaku ask what is the termination notice period
  keiyaku ask "what is the termination notice period"   # same as above
  keiyaku ask --documents doc:abc123 --citations 3 who are the parties
  keiyaku ask --output json "governing law"             # parseable output
`)
}

func runAsk() {
	askArgs := askArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	documents := fs.String("documents", "", "comma-separated document IDs to scope the question to")
	citations := fs.Int("citations", 5, "maximum number of citations")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(askArgs)

	if fs.NArg() < 1 {
		printAskUsage(fs)
		os.Exit(1)
	}
	question := buildQuestion(fs.Args())
	if question == "" {
		printAskUsage(fs)
		os.Exit(1)
	}

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	req := &models.AskRequest{
		Question:     question,
		MaxCitations: *citations,
	}
	if *documents != "" {
		req.DocumentIDs = splitIDs(*documents)
	}

	if *serverURL != "" {
		// Use HTTP API when server is running (avoids SQLite lock conflict).
		resp, err := askViaHTTP(*serverURL, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteAnswer(os.Stdout, resp, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct storage access (when server is not running).
	components, cleanup := mustInitialize(*configPath)
	defer cleanup()

	resp, err := components.Answerer.Answer(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func splitIDs(s string) []string {
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func askViaHTTP(serverURL string, req *models.AskRequest) (*models.AskResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: keiyaku ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	components, cleanup := mustInitialize(*configPath)
	defer cleanup()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		exts := components.Config.Watch.Extensions
		n := 0
		err := filepath.WalkDir(path, func(p string, d os.DirEntry, walkErr error) error {
			if walkErr != nil || d.IsDir() {
				return walkErr
			}
			if !hasExtension(p, exts) {
				return nil
			}
			if _, err := components.Ingestor.IngestFile(ctx, p); err != nil {
				fmt.Printf("Skipped %s: %v\n", p, err)
				return nil
			}
			n++
			return nil
		})
		if err != nil {
			fmt.Printf("Ingesting directory failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %d contract(s) from %s\n", n, path)
		return
	}
	doc, err := components.Ingestor.IngestFile(ctx, path)
	if err != nil {
		fmt.Printf("Ingestion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Contract ingested: %s (%s, %d page(s))\n", doc.ID, doc.Filename, doc.PageCount)
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func runAudit() {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: keiyaku audit [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	components, cleanup := mustInitialize(*configPath)
	defer cleanup()

	ctx := context.Background()
	doc, err := components.Storage.GetDocument(ctx, docID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Audit failed: %v\n", err)
		os.Exit(1)
	}
	findings := components.Auditor.Audit(doc.ID, doc.FullText, doc.Pages)
	if err := components.Storage.ReplaceFindings(ctx, doc.ID, findings); err != nil {
		fmt.Fprintf(os.Stderr, "Saving findings failed: %v\n", err)
		os.Exit(1)
	}
	report := models.NewAuditReport(doc.ID, findings)
	if err := cli.WriteAuditReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: keiyaku extract [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	components, cleanup := mustInitialize(*configPath)
	defer cleanup()

	ex, err := components.Extractor.Extract(context.Background(), docID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteExtraction(os.Stdout, ex, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: keiyaku delete [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	components, cleanup := mustInitialize(*configPath)
	defer cleanup()

	if err := components.Ingestor.Delete(context.Background(), docID); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Contract deleted: %s\n", docID)
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Documents       int64          `json:"documents"`
	Chunks          int64          `json:"chunks"`
	Findings        int64          `json:"findings"`
	VectorIndexSize int            `json:"vector_index_size"`
	DiskUsageBytes  *int64         `json:"disk_usage_bytes,omitempty"`
	Counters        map[string]any `json:"counters,omitempty"`
	Config          map[string]any `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		components, cleanup := mustInitialize(*configPath)
		defer cleanup()
		ctx := context.Background()
		docCount, err := components.Storage.CountDocuments(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
			os.Exit(1)
		}
		chunkCount, err := components.Storage.CountChunks(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count chunks failed: %v\n", err)
			os.Exit(1)
		}
		findingCount, err := components.Storage.CountFindings(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count findings failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Documents:       docCount,
			Chunks:          chunkCount,
			Findings:        findingCount,
			VectorIndexSize: components.VectorIndex.Size(),
		}
		cfg := components.Config
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.VectorIndexPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("documents:          %d   # count of ingested contracts\n", status.Documents)
		fmt.Printf("chunks:             %d   # count of text chunks\n", status.Chunks)
		fmt.Printf("findings:           %d   # count of stored risk findings\n", status.Findings)
		fmt.Printf("vector_index_size:  %d   # count of vectors in semantic index\n", status.VectorIndexSize)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:   %d   # database + index snapshot on disk\n", *status.DiskUsageBytes)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Config      *config.Config
	Storage     storage.Storage
	Client      llm.Client
	VectorIndex vector.Index
	Counters    *metrics.Counters
	Ingestor    *ingest.Ingestor
	Answerer    *retrieval.Answerer
	Extractor   *extraction.Service
	Auditor     *audit.Engine
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Client != nil {
		_ = c.Client.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
}

// mustInitialize loads config, builds a logger, and initializes all
// components, exiting on failure. cleanup must be deferred by the caller.
func mustInitialize(configPath string) (*Components, func()) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, func() {
		components.Close()
		_ = logger.Sync()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var client llm.Client
	apiKey := cfg.LLM.ResolveAPIKey()
	if apiKey != "" {
		openaiClient, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:          apiKey,
			BaseURL:         cfg.LLM.BaseURL,
			CompletionModel: cfg.LLM.CompletionModel,
			EmbeddingModel:  cfg.LLM.EmbeddingModel,
			Dimensions:      cfg.LLM.Dimensions,
			Timeout:         cfg.LLM.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
		}
		client = llm.WithCache(openaiClient, cfg.LLM.CacheSize)
	} else {
		// No API key: embeddings and answers degrade to deterministic
		// placeholders; rule-based audit and extraction still work.
		logger.Warn("no API key configured, using mock LLM client")
		client = llm.NewMockClient(cfg.LLM.Dimensions)
	}

	vectorIndex, err := vector.NewMemoryIndex(client.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}

	counters := &metrics.Counters{}
	ingestOpts := []ingest.IngestorOption{}
	if debug {
		ingestOpts = append(ingestOpts, ingest.WithLogger(logger))
	}
	ing := ingest.NewIngestor(store, client, vectorIndex, &cfg.Chunking, extract.NewExtractor(), counters, ingestOpts...)

	if cfg.Storage.VectorIndexPath != "" {
		if loadErr := vectorIndex.Load(cfg.Storage.VectorIndexPath); loadErr != nil {
			n, rebuildErr := ing.RebuildVectorIndex(context.Background())
			if rebuildErr != nil {
				return nil, fmt.Errorf("failed to rebuild vector index: %w", rebuildErr)
			}
			logger.Info("vector index rebuilt from storage", zap.Int("vectors", n))
		}
	}

	retriever := retrieval.NewRetriever(client, vectorIndex, store)
	answerer := retrieval.NewAnswerer(retriever, client, store, counters, logger, cfg.Retrieval.ContextCharBudget)
	extractor := extraction.NewService(store, client, counters, logger)

	return &Components{
		Config:      cfg,
		Storage:     store,
		Client:      client,
		VectorIndex: vectorIndex,
		Counters:    counters,
		Ingestor:    ing,
		Answerer:    answerer,
		Extractor:   extractor,
		Auditor:     audit.NewEngine(),
	}, nil
}

func printUsage() {
	fmt.Println(`keiyaku - Contract intelligence: ingestion, Q&A, risk audit, extraction

Usage:
  keiyaku server [flags]             Start the HTTP server
  keiyaku ingest [flags] <path>      Ingest a contract file or directory
  keiyaku ask [flags] <question>     Ask a question about ingested contracts
  keiyaku audit [flags] <id>         Run the risk audit on a contract
  keiyaku extract [flags] <id>       Extract key fields from a contract
  keiyaku delete [flags] <id>        Delete a contract
  keiyaku status [flags]             Show storage/index status
  keiyaku version                    Show version
  keiyaku help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/keiyaku/config.yaml)
  --debug            Enable debug logging (file drops, ingestion, etc.)

Ask Flags:
  --config string      Config file path (for direct storage mode)
  --server string      Server URL (default: http://localhost:8080). Use empty (--server "") to use direct storage when server is not running.
  --documents string   Comma-separated document IDs to scope the question to
  --citations int      Maximum number of citations (default: 5)
  --output string      Output format: text or json (default: text)

Audit / Extract Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  keiyaku server
  keiyaku ingest contracts/msa.pdf
  keiyaku ask "what is the termination notice period"
  keiyaku ask --documents doc:abc123 who are the parties
  keiyaku audit doc:abc123
  keiyaku extract doc:abc123 --output json
  keiyaku status`)
}

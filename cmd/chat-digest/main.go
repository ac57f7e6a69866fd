package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffyaml"

	"github.com/zombor/chat-digest/internal/conversation"
	"github.com/zombor/chat-digest/internal/digest"
	"github.com/zombor/chat-digest/internal/language"
	"github.com/zombor/chat-digest/internal/scanning"
	"github.com/zombor/chat-digest/internal/summary"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// languageBackend attributes speakers and summarizes messages
type languageBackend interface {
	conversation.NameExtractor
	summary.Summarizer
	Close() error
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("chat-digest")
	var (
		port              = fs.IntLong("port", 8080, "HTTP server port")
		dbPath            = fs.StringLong("db", "chat-digest.db", "Database file path")
		storagePath       = fs.StringLong("storage", "./uploads", "Storage directory path")
		scannerType       = fs.StringLong("scanner", "gemini", "Scanner type: 'gemini' or 'ollama'")
		nlpType           = fs.StringLong("nlp", "gemini", "Language backend: 'gemini', 'ollama' or 'openai'")
		geminiKey         = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel       = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL         = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaVisionModel = fs.StringLong("ollama-vision-model", "qwen2.5vl", "Ollama model used to read screenshots")
		ollamaTextModel   = fs.StringLong("ollama-text-model", "llama3.1", "Ollama model used for names and summaries")
		openaiKey         = fs.StringLong("openai-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		openaiURL         = fs.StringLong("openai-url", "", "OpenAI-compatible base URL (optional)")
		openaiModel       = fs.StringLong("openai-model", "gpt-4o-mini", "OpenAI model name")
		workers           = fs.IntLong("workers", 4, "Concurrent summarization requests per digest")
		requestTimeout    = fs.DurationLong("request-timeout", digest.DefaultRequestTimeout, "Deadline for a whole summarization request")
		_                 = fs.StringLong("config", "", "YAML config file (optional)")
		showVersion       = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("CHAT_DIGEST"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parse),
		ff.WithConfigAllowMissingFile(),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Get API keys from flags or environment
	if *geminiKey == "" {
		*geminiKey = os.Getenv("GEMINI_API_KEY")
	}
	if *openaiKey == "" {
		*openaiKey = os.Getenv("OPENAI_API_KEY")
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := digest.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize scanner based on type
	var scanner scanning.Scanner
	switch *scannerType {
	case "gemini":
		requireGeminiKey(*geminiKey)
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(*geminiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", *ollamaURL, "model", *ollamaVisionModel)
		scanner, err = scanning.NewOllama(*ollamaURL, *ollamaVisionModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	defer scanner.Close()

	// Initialize language backend based on type
	var nlp languageBackend
	switch *nlpType {
	case "gemini":
		requireGeminiKey(*geminiKey)
		slog.Info("Initializing Gemini language backend...", "model", *geminiModel)
		nlp, err = language.NewGemini(*geminiKey, *geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama language backend...", "url", *ollamaURL, "model", *ollamaTextModel)
		nlp, err = language.NewOllama(*ollamaURL, *ollamaTextModel)
	case "openai":
		slog.Info("Initializing OpenAI language backend...", "url", *openaiURL, "model", *openaiModel)
		nlp, err = language.NewOpenAI(*openaiKey, *openaiURL, *openaiModel)
	default:
		slog.Error("Invalid language backend", "type", *nlpType, "valid", "gemini, ollama or openai")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize language backend", "type", *nlpType, "error", err)
		os.Exit(1)
	}
	defer nlp.Close()

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := digest.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize service
	digestService := digest.NewService(
		db,
		scanner,
		store,
		conversation.NewBuilder(nlp),
		summary.NewComposer(nlp, summary.WithWorkers(*workers)),
	)

	// Initialize server
	server := digest.NewServer(digestService, *requestTimeout)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "scanner", *scannerType, "nlp", *nlpType)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

func requireGeminiKey(key string) {
	if key == "" {
		slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
		os.Exit(1)
	}
}

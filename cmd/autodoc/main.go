package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/smalter/autodoc/constants"
	"github.com/smalter/autodoc/internal/agents"
	"github.com/smalter/autodoc/internal/common"
	"github.com/smalter/autodoc/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		file    = flag.String("file", "", "document to process (required)")
		docType = flag.String("type", "FACTURE", "declared document type (FACTURE, RELEVE_BANCAIRE, TICKET_Z)")
		lang    = flag.String("lang", "auto", "document language: fr, en or auto")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(1)
	}

	// Optional .env next to the binary; environment wins.
	_ = godotenv.Load()

	// Logs go to stderr so stdout stays a clean JSON outcome.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	router := agents.NewRouter(cfg.LLM, logger)
	orch := pipeline.New(cfg, router, logger)

	out := orch.Process(context.Background(), pipeline.Request{
		FilePath:     *file,
		DeclaredType: constants.NormalizeDocumentType(*docType),
		Language:     *lang,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		printError("Error: failed to encode outcome: %v\n", err)
		os.Exit(1)
	}

	if !out.Completed() {
		os.Exit(2)
	}
}

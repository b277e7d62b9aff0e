package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/smalter/autodoc/constants"
	"github.com/smalter/autodoc/internal/agents"
	"github.com/smalter/autodoc/internal/common"
	"github.com/smalter/autodoc/internal/export"
	"github.com/smalter/autodoc/internal/pipeline"
	"github.com/smalter/autodoc/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory to process documents from (required)")
		out     = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		docType = flag.String("type", "FACTURE", "declared document type applied to every file")
		lang    = flag.String("lang", "auto", "document language: fr, en or auto")
		workers = flag.Int("workers", 4, "number of documents processed concurrently")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "autodoc.xlsx")
	}
	if *workers < 1 {
		*workers = 1
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	files, err := collectFiles(*dir)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		printError("Error: no processable files found in %s\n", *dir)
		os.Exit(1)
	}
	logger.Info("batch.start", "dir", *dir, "files", len(files), "workers", *workers)

	store, err := repository.Open(ctx, cfg.Audit, logger)
	if err != nil {
		logger.Error("failed to open audit store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("audit store close failed", "error", err)
		}
	}()

	router := agents.NewRouter(cfg.LLM, logger)
	orch := pipeline.New(cfg, router, logger)
	declared := constants.NormalizeDocumentType(*docType)

	var (
		mu       sync.Mutex
		outcomes []pipeline.Outcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)
	for _, path := range files {
		g.Go(func() error {
			res := orch.Process(gctx, pipeline.Request{
				FilePath:     path,
				DeclaredType: declared,
				Language:     *lang,
			})
			mu.Lock()
			outcomes = append(outcomes, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].FileName < outcomes[j].FileName })

	completed := 0
	for _, res := range outcomes {
		if res.Completed() {
			completed++
		}
		if err := store.SaveOutcome(ctx, res); err != nil {
			logger.Warn("audit save failed", "document_id", res.DocumentID, "error", err)
		}
	}

	xlsxBytes, err := export.NewService(logger).OutcomesXLSX(outcomes)
	if err != nil {
		logger.Error("failed to build XLSX export", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write XLSX file", "path", *out, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Processed %d documents: %d completed, %d rejected\n",
		len(outcomes), completed, len(outcomes)-completed)
	fmt.Printf("Report written to %s\n", *out)
}

// collectFiles walks dir and keeps only files with an accepted extension.
func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"

	docgen "github.com/goliatone/go-docgen"
	"github.com/goliatone/go-docgen/pkg/config"
	"github.com/goliatone/go-docgen/pkg/fieldcfg"
	"github.com/goliatone/go-docgen/pkg/orchestrator"
	"github.com/goliatone/go-docgen/pkg/store"
	"github.com/goliatone/go-docgen/pkg/templates"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	fieldsPath := flag.String("fields", "config/fields.json", "field configuration path or URL")
	templatesPath := flag.String("templates", "config/templates.json", "template registry path or URL")
	templateID := flag.String("template", "", "template ID (first registered template if empty)")
	valuesPath := flag.String("values", "", "JSON file with form values (interactive prompts if empty)")
	storePath := flag.String("store", "", "SQLite file for loading and saving form drafts")
	output := flag.String("output", "", "output file (document name in the current directory if empty)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})

	loader := config.NewLoader(config.LoaderOptions{AllowHTTPFallback: true})

	fields, err := fieldcfg.Load(ctx, loader, parseSource(*fieldsPath))
	if err != nil {
		return fmt.Errorf("load fields: %w", err)
	}
	logger.Debug("fields loaded", "count", len(fields), "source", *fieldsPath)

	registry, err := templates.Load(ctx, loader, parseSource(*templatesPath))
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	logger.Debug("templates loaded", "count", len(registry))

	var draft store.Store
	if *storePath != "" {
		sqlite, err := store.OpenSQLite(*storePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = sqlite.Close() }()
		draft = sqlite
	}

	values, err := collectValues(ctx, logger, fields, *valuesPath, draft)
	if err != nil {
		return err
	}

	if draft != nil {
		if err := draft.Save(ctx, values); err != nil {
			logger.Warn("could not persist draft", "error", err)
		}
	}

	result, err := docgen.GenerateDocument(ctx, values, *templateID,
		docgen.WithFields(fields),
		docgen.WithRegistry(registry),
		orchestrator.WithLogger(logger),
	)
	if err != nil {
		var validationErr *docgen.ValidationError
		if errors.As(err, &validationErr) {
			for name := range validationErr.Fields {
				logger.Error("required field missing", "field", name)
			}
			return errors.New("generation blocked by missing required fields")
		}
		return fmt.Errorf("generate document: %w", err)
	}

	target := *output
	if target == "" {
		target = result.DocumentName
	}
	if err := os.WriteFile(target, result.Document, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Info("document written", "path", target, "images", result.ContainsImages)
	return nil
}

func collectValues(ctx context.Context, logger *log.Logger, fields []fieldcfg.Field, valuesPath string, draft store.Store) (map[string]any, error) {
	if valuesPath != "" {
		data, err := os.ReadFile(valuesPath)
		if err != nil {
			return nil, fmt.Errorf("read values: %w", err)
		}
		values := map[string]any{}
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("parse values: %w", err)
		}
		return values, nil
	}

	defaults := map[string]any{}
	if draft != nil {
		saved, err := draft.Load(ctx)
		if err != nil {
			logger.Warn("could not load draft", "error", err)
		} else if len(saved) > 0 {
			logger.Info("draft loaded", "fields", len(saved))
			defaults = saved
		}
	}

	return promptValues(ctx, fields, defaults)
}

func parseSource(raw string) config.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return config.SourceFromURL(path)
	}
	return config.SourceFromFile(path)
}

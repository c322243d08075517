package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-docgen/components/formapi"
	"github.com/goliatone/go-docgen/pkg/config"
	"github.com/goliatone/go-docgen/pkg/fieldcfg"
	"github.com/goliatone/go-docgen/pkg/orchestrator"
	"github.com/goliatone/go-docgen/pkg/preview"
	"github.com/goliatone/go-docgen/pkg/templates"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	addr := flag.String("addr", ":8080", "listen address")
	basePath := flag.String("base", "", "base path the API routes mount under")
	fieldsPath := flag.String("fields", "config/fields.json", "field configuration path or URL")
	templatesPath := flag.String("templates", "config/templates.json", "template registry path or URL")
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
	registry, err := templates.Load(ctx, loader, parseSource(*templatesPath))
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	renderer, err := preview.New()
	if err != nil {
		return fmt.Errorf("build preview renderer: %w", err)
	}

	generator := orchestrator.New(
		orchestrator.WithFields(fields),
		orchestrator.WithRegistry(registry),
		orchestrator.WithLogger(logger),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	component := formapi.New(
		formapi.WithFields(fields),
		formapi.WithRegistry(registry),
		formapi.WithGenerator(generator),
		formapi.WithPreview(renderer),
		formapi.WithLogger(logger),
	)
	routes, err := component.RegisterRoutes(router, *basePath)
	if err != nil {
		return fmt.Errorf("register routes: %w", err)
	}
	logger.Info("routes mounted",
		"fields", routes.Fields,
		"templates", routes.Templates,
		"validate", routes.Validate,
		"generate", routes.Generate,
		"preview", routes.Preview,
	)

	server := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", *addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
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

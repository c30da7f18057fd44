package main

import (
	"log"

	"go.uber.org/dig"

	"github.com/davidbz/freeloader/internal/catalog/openrouter"
	"github.com/davidbz/freeloader/internal/config"
	"github.com/davidbz/freeloader/internal/domain"
	"github.com/davidbz/freeloader/internal/http"
	"github.com/davidbz/freeloader/internal/http/middleware"
	"github.com/davidbz/freeloader/internal/observability"
	"github.com/davidbz/freeloader/internal/ranking/llm"
	"github.com/davidbz/freeloader/internal/store"
)

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}
	if err := container.Provide(config.Profiles); err != nil {
		log.Fatalf("Failed to provide profile definitions: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(observability.NewEventBus); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}
	if err := container.Provide(func(bus *observability.EventBus) domain.EventPublisher {
		return bus
	}); err != nil {
		log.Fatalf("Failed to provide event publisher: %v", err)
	}

	// Artifact Store
	if err := container.Provide(func(cfg *store.Config) domain.ArtifactStore {
		return store.NewFileStore(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide artifact store: %v", err)
	}

	// Catalog Client
	if err := container.Provide(func(cfg *openrouter.Config) domain.CatalogClient {
		return openrouter.NewClient(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide catalog client: %v", err)
	}

	// Capability Ranker (optional, nil when disabled or keyless)
	if err := container.Provide(func(cfg *llm.Config) (domain.CapabilityRanker, error) {
		if !cfg.Enabled || cfg.APIKey == "" {
			return nil, nil
		}

		ranker, err := llm.NewRanker(*cfg)
		if err != nil {
			return nil, err
		}
		return ranker, nil
	}); err != nil {
		log.Fatalf("Failed to provide capability ranker: %v", err)
	}

	// Pipeline Runner
	if err := container.Provide(domain.NewRunner); err != nil {
		log.Fatalf("Failed to provide runner: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

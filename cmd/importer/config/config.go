// Package config assembles the import pipeline from CLI settings.
package config

import (
	"context"
	"fmt"
	"time"

	"statement-import-service/internal/aifallback"
	"statement-import-service/internal/bankconfig"
	"statement-import-service/internal/categories"
	"statement-import-service/internal/dedup"
	"statement-import-service/internal/extractor"
	"statement-import-service/internal/grammar"
	"statement-import-service/internal/importer"
	"statement-import-service/internal/models"
	"statement-import-service/internal/store"

	"github.com/shopspring/decimal"
)

// Settings holds the pipeline options read from flags and environment
type Settings struct {
	RegistryURL   string
	RegistryTTL   time.Duration
	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration
}

// DefaultSettings returns pipeline defaults
func DefaultSettings() Settings {
	return Settings{
		RegistryTTL:   12 * time.Hour,
		GeminiModel:   aifallback.DefaultGeminiModel,
		GeminiTimeout: 60 * time.Second,
	}
}

// CreateRegistry builds the parser config registry from the settings
func CreateRegistry(settings Settings) (*bankconfig.Registry, error) {
	registryConfig := bankconfig.DefaultRegistryConfig()
	registryConfig.URL = settings.RegistryURL
	if settings.RegistryTTL > 0 {
		registryConfig.TTL = settings.RegistryTTL
	}
	return bankconfig.NewRegistry(registryConfig)
}

// CreateGenerator builds the AI generator. Without an API key a disabled
// generator is returned so the grammar path still works; the AI path then
// fails with a clear message instead of a nil dereference.
func CreateGenerator(ctx context.Context, settings Settings) (aifallback.Generator, func() error, error) {
	if settings.GeminiAPIKey == "" {
		return &disabledGenerator{}, func() error { return nil }, nil
	}

	generator, err := aifallback.NewGeminiGenerator(ctx, aifallback.GeminiConfig{
		APIKey: settings.GeminiAPIKey,
		Model:  settings.GeminiModel,
	})
	if err != nil {
		return nil, nil, err
	}

	if settings.GeminiTimeout > 0 {
		bounded := &timeoutGenerator{inner: generator, timeout: settings.GeminiTimeout}
		return bounded, generator.Close, nil
	}
	return generator, generator.Close, nil
}

// CreateService assembles the full import pipeline over the given store
func CreateService(generator aifallback.Generator, registry *bankconfig.Registry, s store.Store) *importer.Service {
	return importer.NewService(
		importer.NewOrchestrator(extractor.NewPDFExtractor(), registry, grammar.NewParser()),
		aifallback.NewFallbackParser(generator, nil, s),
		categories.NewResolver(s),
		dedup.NewEngine(s),
		importer.NewCommitter(s),
	)
}

// CreateSeededStore builds an in-memory store preloaded with the default
// category set and one account, for standalone CLI runs.
func CreateSeededStore(ctx context.Context) (*store.MemoryStore, store.Account, error) {
	s := store.NewMemoryStore()

	defaults := []struct {
		name   string
		txType models.TransactionType
	}{
		{"Покупки", models.TypeExpense},
		{"Переводы", models.TypeExpense},
		{"Снятие наличных", models.TypeExpense},
		{"Комиссии", models.TypeExpense},
		{"Пополнения", models.TypeIncome},
	}
	for _, d := range defaults {
		if _, err := s.CreateCategory(ctx, d.name, d.txType, true); err != nil {
			return nil, store.Account{}, err
		}
	}

	account, err := s.CreateAccount(ctx, "default", decimal.Zero)
	if err != nil {
		return nil, store.Account{}, err
	}
	return s, account, nil
}

// disabledGenerator rejects every call; used when no API key is configured
type disabledGenerator struct{}

func (d *disabledGenerator) Generate(ctx context.Context, prompt string, images [][]byte) (string, error) {
	return "", fmt.Errorf("AI parsing is not configured: set STATEMENT_IMPORT_GEMINI_API_KEY or --gemini-api-key")
}

// timeoutGenerator bounds each model call with a deadline
type timeoutGenerator struct {
	inner   aifallback.Generator
	timeout time.Duration
}

func (t *timeoutGenerator) Generate(ctx context.Context, prompt string, images [][]byte) (string, error) {
	bounded, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(bounded, prompt, images)
}

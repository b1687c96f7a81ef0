package bankconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// Document is the wire shape of a parser config registry document
type Document struct {
	Banks []*ParserConfig `json:"banks"`
}

// RegistryConfig holds configuration for the parser config registry
type RegistryConfig struct {
	// URL of the remote registry document. Empty disables remote fetching
	// and the bundled defaults are used directly.
	URL string
	// TTL is how long a fetched document is served from the in-memory
	// cache before a refresh is attempted.
	TTL time.Duration
	// HTTPTimeout bounds a single remote fetch
	HTTPTimeout time.Duration
}

// DefaultRegistryConfig returns a registry configuration with sensible
// defaults matching the remote-config fetch interval.
func DefaultRegistryConfig() *RegistryConfig {
	return &RegistryConfig{
		TTL:         12 * time.Hour,
		HTTPTimeout: 10 * time.Second,
	}
}

// Registry supplies per-bank parser configs. It fetches a remote JSON
// document, falls back to the bundled default document on fetch or decode
// failure, and caches the result in memory for the TTL period. Concurrent
// refreshes share a single in-flight fetch.
type Registry struct {
	config   *RegistryConfig
	client   *http.Client
	fallback []*ParserConfig
	logger   logger.Logger

	mu        sync.RWMutex
	cached    []*ParserConfig
	fetchedAt time.Time

	group singleflight.Group
}

// NewRegistry creates a registry with the bundled default configs as
// fallback. The defaults are validated here; a broken bundled config is a
// programming error.
func NewRegistry(config *RegistryConfig) (*Registry, error) {
	if config == nil {
		config = DefaultRegistryConfig()
	}
	if config.TTL <= 0 {
		config.TTL = DefaultRegistryConfig().TTL
	}
	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = DefaultRegistryConfig().HTTPTimeout
	}

	fallback, err := DefaultConfigs()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.CodeInvalidPattern, "bundled default registry is invalid")
	}

	return &Registry{
		config:   config,
		client:   &http.Client{Timeout: config.HTTPTimeout},
		fallback: fallback,
		logger:   logger.GetGlobalLogger().WithComponent("bank_registry"),
	}, nil
}

// Configs returns the current registry snapshot, refreshing from the remote
// document when the cache has expired. It never fails: any fetch or decode
// problem degrades to the bundled defaults.
func (r *Registry) Configs(ctx context.Context) []*ParserConfig {
	r.mu.RLock()
	if r.cached != nil && time.Since(r.fetchedAt) < r.config.TTL {
		snapshot := r.cached
		r.mu.RUnlock()
		return snapshot
	}
	r.mu.RUnlock()

	// Single-flight guard: concurrent sessions hitting an expired cache
	// share one remote fetch instead of issuing duplicates.
	result, _, _ := r.group.Do("refresh", func() (interface{}, error) {
		configs := r.fetch(ctx)

		r.mu.Lock()
		r.cached = configs
		r.fetchedAt = time.Now()
		r.mu.Unlock()

		return configs, nil
	})

	return result.([]*ParserConfig)
}

// Invalidate drops the cached snapshot so the next Configs call refreshes
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.fetchedAt = time.Time{}
	r.mu.Unlock()
}

func (r *Registry) fetch(ctx context.Context) []*ParserConfig {
	if r.config.URL == "" {
		r.logger.Debug("No registry URL configured, using bundled defaults")
		return r.fallback
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.config.URL, nil)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to build registry request, using bundled defaults")
		return r.fallback
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.WithError(err).Warn("Registry fetch failed, using bundled defaults")
		return r.fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.WithField("status", resp.StatusCode).Warn("Registry fetch returned non-OK status, using bundled defaults")
		return r.fallback
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to read registry response, using bundled defaults")
		return r.fallback
	}

	configs, err := ParseDocument(body)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to decode registry document, using bundled defaults")
		return r.fallback
	}

	r.logger.WithFields(logger.Fields{
		"url":   r.config.URL,
		"banks": len(configs),
	}).Info("Loaded parser config registry")

	return configs
}

// ParseDocument decodes and validates a registry document. Individual
// malformed configs are dropped with a warning; the document as a whole
// fails only when it decodes to nothing usable.
func ParseDocument(data []byte) ([]*ParserConfig, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode registry document: %w", err)
	}

	log := logger.GetGlobalLogger().WithComponent("bank_registry")

	valid := make([]*ParserConfig, 0, len(doc.Banks))
	rejected := 0
	for _, config := range doc.Banks {
		if config == nil {
			continue
		}
		if err := config.Validate(); err != nil {
			rejected++
			log.WithError(err).WithField("bank_id", config.BankID).Warn("Rejecting malformed parser config")
			continue
		}
		valid = append(valid, config)
	}

	if rejected > 0 {
		log.WithFields(logger.Fields{
			"accepted": len(valid),
			"rejected": rejected,
		}).Warn("Registry document contained malformed configs")
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("registry document contains no valid bank configs")
	}

	return valid, nil
}

package app

import (
	"context"

	"go.uber.org/zap"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/catalog"
	"agentbuilder/internal/infra/health"
	"agentbuilder/internal/infra/telemetry"
)

// CatalogSummary describes a validated catalog document.
type CatalogSummary struct {
	Path   string
	Tools  int
	ByType map[domain.ToolType]int
}

// ValidateCatalog checks the catalog document referenced by cfg without
// starting any server.
func ValidateCatalog(cfg Config, logger *zap.Logger) (CatalogSummary, error) {
	logger = NewLogger(LoggingConfig{Logger: logger})

	doc, err := catalog.ReadDocument(cfg.CatalogPath)
	if err != nil {
		return CatalogSummary{}, err
	}
	if err := catalog.Validate(doc); err != nil {
		return CatalogSummary{}, err
	}

	summary := CatalogSummary{
		Path:   cfg.CatalogPath,
		Tools:  len(doc.Tools),
		ByType: make(map[domain.ToolType]int),
	}
	for _, entry := range doc.Tools {
		summary.ByType[entry.Type]++
	}
	logger.Info("catalog validated",
		zap.String("path", summary.Path),
		zap.Int("tools", summary.Tools),
	)
	return summary, nil
}

// Toolbox is the catalog plus a health checker, usable without a platform.
type Toolbox struct {
	Catalog *catalog.Registry
	Checker *health.Checker
}

// OpenToolbox loads the catalog and builds a checker against it.
func OpenToolbox(cfg Config, logger *zap.Logger) (*Toolbox, error) {
	logger = NewLogger(LoggingConfig{Logger: logger})
	registry, err := NewCatalog(cfg, logger)
	if err != nil {
		return nil, err
	}
	metrics := telemetry.NewNoopMetrics()
	fetcher := NewDescriptorFetcher(cfg, metrics, logger)
	return &Toolbox{
		Catalog: registry,
		Checker: NewHealthChecker(cfg, registry, fetcher, metrics, logger),
	}, nil
}

// CheckAll probes ids in order, or every catalog tool when ids is empty.
func (t *Toolbox) CheckAll(ctx context.Context, ids []string) []domain.HealthResult {
	if len(ids) == 0 {
		for _, summary := range t.Catalog.List() {
			ids = append(ids, summary.ID)
		}
	}
	results := make([]domain.HealthResult, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		results = append(results, t.Checker.Check(ctx, id))
	}
	return results
}

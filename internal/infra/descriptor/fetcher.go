package descriptor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/telemetry"
)

const maxDescriptorBytes = 16 << 20

// Fetcher retrieves descriptor documents over HTTP.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	metrics domain.Metrics
	logger  *zap.Logger
}

type FetcherOptions struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Metrics    domain.Metrics
	Logger     *zap.Logger
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultDescriptorTimeoutSeconds) * time.Second
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:  client,
		timeout: timeout,
		metrics: metrics,
		logger:  logger.Named("descriptor"),
	}
}

// WithTimeout returns a copy of the fetcher bounded by timeout.
func (f *Fetcher) WithTimeout(timeout time.Duration) *Fetcher {
	clone := *f
	if timeout > 0 {
		clone.timeout = timeout
	}
	return &clone
}

// Fetch downloads and decodes the document at rawURL without rewriting it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (doc Document, err error) {
	const op = "descriptor.fetch"
	start := time.Now()
	defer func() {
		f.metrics.ObserveDescriptorFetch(domain.MetricStatus(err), time.Since(start))
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, op, fmt.Sprintf("invalid descriptor url %q", rawURL), err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.E(domain.CodeUpstream, op, fmt.Sprintf("fetch %s: %v", rawURL, err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.Errorf(domain.CodeUpstream, op, "fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxDescriptorBytes))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, domain.E(domain.CodeUpstream, op, fmt.Sprintf("decode %s: %v", rawURL, err), err)
	}
	if doc == nil {
		return nil, domain.Errorf(domain.CodeUpstream, op, "decode %s: document is not a JSON object", rawURL)
	}
	return doc, nil
}

// FetchAndNormalize downloads the document and normalizes it for the platform.
func (f *Fetcher) FetchAndNormalize(ctx context.Context, rawURL string) (Document, error) {
	doc, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if version := Version(doc); NeedsDowngrade(version) {
		telemetry.LoggerWithRequest(ctx, f.logger).Info("downgrading descriptor",
			zap.String("url", rawURL),
			zap.String("from", version),
			zap.String("to", domain.TargetDescriptorVersion),
		)
	}
	return Normalize(doc, rawURL), nil
}

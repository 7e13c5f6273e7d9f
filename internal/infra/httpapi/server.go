package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/telemetry"
)

const maxBodyBytes = 4 << 20

// ToolCatalog is the catalog surface exposed over HTTP.
type ToolCatalog interface {
	Len() int
	List() []domain.ToolSummary
	Get(id string) (domain.ToolEntry, error)
	Create(entry domain.ToolEntry) (domain.ToolEntry, error)
	Update(id string, patch domain.ToolPatch) (domain.ToolEntry, error)
	Delete(id string) error
	ParamSchema(id string) (*jsonschema.Schema, error)
}

type Options struct {
	Catalog     ToolCatalog
	Health      domain.HealthChecker
	Agents      domain.AgentService
	Chat        domain.ChatService
	Metrics     domain.Metrics
	Logger      *zap.Logger
	CORSOrigins []string
	FrontendDir string
}

// Server exposes the tool catalog, agent lifecycle and chat proxy as JSON over HTTP.
type Server struct {
	catalog     ToolCatalog
	health      domain.HealthChecker
	agents      domain.AgentService
	chat        domain.ChatService
	metrics     domain.Metrics
	logger      *zap.Logger
	validator   *Validator
	corsOrigins []string
	frontendDir string
}

func NewServer(opts Options) *Server {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		catalog:     opts.Catalog,
		health:      opts.Health,
		agents:      opts.Agents,
		chat:        opts.Chat,
		metrics:     metrics,
		logger:      logger.Named("http").With(zap.String(telemetry.FieldLogSource, telemetry.LogSourceHTTP)),
		validator:   NewValidator(),
		corsOrigins: opts.CORSOrigins,
		frontendDir: strings.TrimSpace(opts.FrontendDir),
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/tools", s.listTools)
	mux.HandleFunc("POST /api/tools", s.createTool)
	mux.HandleFunc("GET /api/tools/{id}", s.getTool)
	mux.HandleFunc("PATCH /api/tools/{id}", s.updateTool)
	mux.HandleFunc("DELETE /api/tools/{id}", s.deleteTool)
	mux.HandleFunc("GET /api/tools/{id}/schema", s.toolSchema)
	mux.HandleFunc("GET /api/tools/{id}/health", s.toolHealth)

	mux.HandleFunc("POST /api/agents", s.deployAgent)
	mux.HandleFunc("GET /api/agents", s.listAgents)
	mux.HandleFunc("GET /api/agents/{name}", s.getAgent)
	mux.HandleFunc("DELETE /api/agents/{name}", s.deleteAgent)

	mux.HandleFunc("POST /api/chat", s.sendChat)

	mux.Handle("GET /healthz", telemetry.HealthHandler(func() telemetry.HealthReport {
		return telemetry.HealthReport{Status: "ok", Tools: s.catalog.Len()}
	}))

	if s.frontendDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.frontendDir)))
	}

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{telemetry.RequestIDHeader},
		AllowCredentials: true,
	})
	return corsHandler.Handler(s.instrument(mux))
}

// Serve listens on addr until ctx is canceled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("api server shutdown error", zap.Error(err))
			return err
		}
		s.logger.Info("api server stopped")
		return nil
	}
}

// decode validates the raw body against dst's schema, then decodes it.
func (s *Server) decode(r *http.Request, dst any) error {
	const op = "httpapi.decode"

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return domain.E(domain.CodeInvalidArgument, op, "unable to read request body", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return domain.E(domain.CodeInvalidArgument, op, "request body is required", nil)
	}
	if err := s.validator.Validate(body, dst); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.E(domain.CodeInvalidArgument, op, fmt.Sprintf("invalid JSON body: %v", err), err)
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := StatusFor(err)
	logger := telemetry.LoggerWithRequest(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, err)
}

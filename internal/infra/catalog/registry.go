package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/fsutil"
	"agentbuilder/internal/infra/telemetry"
)

// Registry is the in-memory tool catalog backed by a single JSON document.
// Mutations are written through to disk before the in-memory view changes.
type Registry struct {
	path   string
	logger *zap.Logger

	mu     sync.RWMutex
	tools  []domain.ToolEntry
	loaded bool
}

func NewRegistry(path string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		path:   strings.TrimSpace(path),
		logger: logger.Named("catalog"),
	}
}

// Path returns the catalog document location.
func (r *Registry) Path() string {
	return r.path
}

// Load reads the catalog document. Entries without a source are treated as builtin.
func (r *Registry) Load() error {
	doc, err := ReadDocument(r.path)
	if err != nil {
		return err
	}
	if err := Validate(doc); err != nil {
		return err
	}
	for i := range doc.Tools {
		if doc.Tools[i].Source == "" {
			doc.Tools[i].Source = domain.ToolSourceBuiltin
		}
	}

	r.mu.Lock()
	r.tools = doc.Tools
	r.loaded = true
	r.mu.Unlock()

	r.logger.Info("catalog loaded", zap.String("path", r.path), zap.Int("tools", len(doc.Tools)))
	return nil
}

// Len returns the number of loaded entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

func (r *Registry) List() []domain.ToolSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ToolSummary, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool.Summary())
	}
	return out
}

func (r *Registry) Get(id string) (domain.ToolEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return domain.ToolEntry{}, notFound("catalog.get", id)
	}
	return r.tools[idx].Clone(), nil
}

// Create appends a custom entry. The id must be unique.
func (r *Registry) Create(entry domain.ToolEntry) (domain.ToolEntry, error) {
	const op = "catalog.create"

	entry.ID = strings.TrimSpace(entry.ID)
	if entry.ID == "" {
		return domain.ToolEntry{}, domain.E(domain.CodeInvalidArgument, op, "tool id is required", nil)
	}
	if !entry.Type.Valid() {
		return domain.ToolEntry{}, domain.E(domain.CodeInvalidArgument, op,
			fmt.Sprintf("unsupported tool type %q", entry.Type), domain.ErrInvalidToolType)
	}
	entry.Source = domain.ToolSourceCustom
	entry = entry.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(entry.ID) >= 0 {
		return domain.ToolEntry{}, domain.E(domain.CodeAlreadyExists, op,
			fmt.Sprintf("tool %q already exists", entry.ID), domain.ErrToolExists)
	}

	next := make([]domain.ToolEntry, 0, len(r.tools)+1)
	next = append(next, r.tools...)
	next = append(next, entry)
	if err := r.commitLocked(op, next); err != nil {
		return domain.ToolEntry{}, err
	}

	r.logger.Info("tool created",
		telemetry.EventField(telemetry.EventCatalogWrite),
		telemetry.ToolIDField(entry.ID),
		telemetry.ToolTypeField(string(entry.Type)),
	)
	return entry.Clone(), nil
}

// Update merges the non-nil patch fields into an existing entry.
func (r *Registry) Update(id string, patch domain.ToolPatch) (domain.ToolEntry, error) {
	const op = "catalog.update"

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return domain.ToolEntry{}, notFound(op, id)
	}

	updated := patch.Apply(r.tools[idx].Clone())
	next := make([]domain.ToolEntry, len(r.tools))
	copy(next, r.tools)
	next[idx] = updated
	if err := r.commitLocked(op, next); err != nil {
		return domain.ToolEntry{}, err
	}

	r.logger.Info("tool updated", telemetry.EventField(telemetry.EventCatalogWrite), telemetry.ToolIDField(id))
	return updated.Clone(), nil
}

func (r *Registry) Delete(id string) error {
	const op = "catalog.delete"

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return notFound(op, id)
	}
	if r.tools[idx].Source != domain.ToolSourceCustom {
		return domain.E(domain.CodeInvalidArgument, op, fmt.Sprintf("tool %q is built-in and cannot be deleted", id), nil)
	}

	next := make([]domain.ToolEntry, 0, len(r.tools)-1)
	next = append(next, r.tools[:idx]...)
	next = append(next, r.tools[idx+1:]...)
	if err := r.commitLocked(op, next); err != nil {
		return err
	}

	r.logger.Info("tool deleted", telemetry.EventField(telemetry.EventCatalogWrite), telemetry.ToolIDField(id))
	return nil
}

func (r *Registry) indexLocked(id string) int {
	for i := range r.tools {
		if r.tools[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) commitLocked(op string, next []domain.ToolEntry) error {
	if err := fsutil.WriteJSONAtomic(r.path, domain.CatalogDocument{Tools: next}); err != nil {
		r.logger.Error("catalog write failed", zap.String("path", r.path), zap.Error(err))
		return domain.Wrap(domain.CodeInternal, op, err)
	}
	r.tools = next
	return nil
}

func notFound(op, id string) error {
	return domain.E(domain.CodeNotFound, op, fmt.Sprintf("tool %q not found", id), domain.ErrToolNotFound)
}

// ReadDocument decodes a catalog document from path.
func ReadDocument(path string) (domain.CatalogDocument, error) {
	const op = "catalog.read"

	if strings.TrimSpace(path) == "" {
		return domain.CatalogDocument{}, domain.E(domain.CodeInvalidArgument, op, "catalog path is required", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.CatalogDocument{}, domain.Wrap(domain.CodeInternal, op, fmt.Errorf("read catalog: %w", err))
	}
	var doc domain.CatalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.CatalogDocument{}, domain.Wrap(domain.CodeInvalidArgument, op, fmt.Errorf("decode catalog %s: %w", path, err))
	}
	return doc, nil
}

// Validate reports every structural problem of a catalog document.
func Validate(doc domain.CatalogDocument) error {
	var errs []error
	seen := make(map[string]struct{}, len(doc.Tools))
	for i, tool := range doc.Tools {
		id := strings.TrimSpace(tool.ID)
		if id == "" {
			errs = append(errs, fmt.Errorf("tools[%d]: id is required", i))
			continue
		}
		if _, ok := seen[id]; ok {
			errs = append(errs, fmt.Errorf("tools[%d]: duplicate id %q", i, id))
		}
		seen[id] = struct{}{}
		if !tool.Type.Valid() {
			errs = append(errs, fmt.Errorf("tools[%d]: %q has unsupported type %q", i, id, tool.Type))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return domain.E(domain.CodeInvalidArgument, "catalog.validate", "", errors.Join(errs...))
}

package paramstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/fsutil"
)

// JSONStore keeps every entry in one JSON object on disk. The file is read on
// each call so edits made while the process runs are picked up.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Get(name string) ([]domain.PromptParam, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, false, wrapIO("paramstore.get", err)
	}
	params, ok := data[name]
	return params, ok, nil
}

func (s *JSONStore) All() (map[string][]domain.PromptParam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, wrapIO("paramstore.all", err)
	}
	return data, nil
}

// Put replaces the entry for name.
func (s *JSONStore) Put(name string, params []domain.PromptParam) error {
	const op = "paramstore.put"
	if err := requireName(op, name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return wrapIO(op, err)
	}
	data[name] = cloneParams(params)
	if err := fsutil.WriteJSONAtomic(s.path, data); err != nil {
		return wrapIO(op, err)
	}
	return nil
}

// Remove deletes the entry for name; a missing entry is not an error.
func (s *JSONStore) Remove(name string) error {
	const op = "paramstore.remove"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return wrapIO(op, err)
	}
	if _, ok := data[name]; !ok {
		return nil
	}
	delete(data, name)
	if err := fsutil.WriteJSONAtomic(s.path, data); err != nil {
		return wrapIO(op, err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) load() (map[string][]domain.PromptParam, error) {
	data := make(map[string][]domain.PromptParam)
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = make(map[string][]domain.PromptParam)
	}
	return data, nil
}

var _ Store = (*JSONStore)(nil)

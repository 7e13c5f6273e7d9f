package paramstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"agentbuilder/internal/domain"
)

var (
	bucketName     = []byte("prompt_params")
	ErrStoreClosed = errors.New("prompt param store is closed")
)

// BoltStore keeps one key per agent name in a bbolt bucket.
type BoltStore struct {
	mu     sync.RWMutex
	db     *bolt.DB
	closed bool
}

func OpenBoltStore(path string) (*BoltStore, error) {
	const op = "paramstore.open"

	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, domain.E(domain.CodeInvalidArgument, op, "store path is required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, wrapIO(op, fmt.Errorf("ensure store dir: %w", err))
	}
	db, err := bolt.Open(trimmed, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, wrapIO(op, fmt.Errorf("open store db: %w", err))
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, wrapIO(op, err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(name string) ([]domain.PromptParam, bool, error) {
	var (
		params []domain.PromptParam
		found  bool
	)
	err := s.view(func(tx *bolt.Tx) error {
		value := tx.Bucket(bucketName).Get([]byte(name))
		if value == nil {
			return nil
		}
		found = true
		return json.Unmarshal(value, &params)
	})
	if err != nil {
		return nil, false, wrapIO("paramstore.get", err)
	}
	return params, found, nil
}

func (s *BoltStore) All() (map[string][]domain.PromptParam, error) {
	out := make(map[string][]domain.PromptParam)
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(key, value []byte) error {
			var params []domain.PromptParam
			if err := json.Unmarshal(value, &params); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			out[string(key)] = params
			return nil
		})
	})
	if err != nil {
		return nil, wrapIO("paramstore.all", err)
	}
	return out, nil
}

func (s *BoltStore) Put(name string, params []domain.PromptParam) error {
	const op = "paramstore.put"
	if err := requireName(op, name); err != nil {
		return err
	}
	value, err := json.Marshal(cloneParams(params))
	if err != nil {
		return wrapIO(op, err)
	}
	if err := s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(name), value)
	}); err != nil {
		return wrapIO(op, err)
	}
	return nil
}

func (s *BoltStore) Remove(name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	if err := s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(name))
	}); err != nil {
		return wrapIO("paramstore.remove", err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *BoltStore) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.View(fn)
}

func (s *BoltStore) update(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.Update(fn)
}

var _ Store = (*BoltStore)(nil)

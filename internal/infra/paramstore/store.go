package paramstore

import (
	"fmt"
	"strings"

	"agentbuilder/internal/domain"
)

const (
	DriverJSON = "json"
	DriverBolt = "bolt"
)

// Store is a closable prompt-parameter side store.
type Store interface {
	domain.PromptParamStore
	Close() error
}

// Open selects a store implementation by driver name.
func Open(driver, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverJSON:
		return NewJSONStore(path), nil
	case DriverBolt:
		return OpenBoltStore(path)
	default:
		return nil, domain.Errorf(domain.CodeInvalidArgument, "paramstore.open", "unsupported driver %q", driver)
	}
}

func cloneParams(params []domain.PromptParam) []domain.PromptParam {
	if params == nil {
		return nil
	}
	return append([]domain.PromptParam(nil), params...)
}

func requireName(op, name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.E(domain.CodeInvalidArgument, op, "agent name is required", nil)
	}
	return nil
}

func wrapIO(op string, err error) error {
	return domain.Wrap(domain.CodeInternal, op, fmt.Errorf("prompt param store: %w", err))
}

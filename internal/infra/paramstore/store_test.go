package paramstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentbuilder/internal/domain"
)

var sampleParams = []domain.PromptParam{
	{Name: "customer", Label: "Customer", Required: true},
	{Name: "tone", Label: "Tone", Default: "friendly"},
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	jsonStore, err := Open(DriverJSON, filepath.Join(dir, "prompt_params_store.json"))
	require.NoError(t, err)
	boltStore, err := Open(DriverBolt, filepath.Join(dir, "prompt_params.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = boltStore.Close() })

	return map[string]Store{DriverJSON: jsonStore, DriverBolt: boltStore}
}

func TestStore_RoundTrip(t *testing.T) {
	for driver, store := range openStores(t) {
		t.Run(driver, func(t *testing.T) {
			_, ok, err := store.Get("support-bot")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Put("support-bot", sampleParams))
			got, ok, err := store.Get("support-bot")
			require.NoError(t, err)
			require.True(t, ok)
			if diff := cmp.Diff(sampleParams, got); diff != "" {
				t.Fatalf("params mismatch (-want +got):\n%s", diff)
			}

			all, err := store.All()
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestStore_PutReplaces(t *testing.T) {
	for driver, store := range openStores(t) {
		t.Run(driver, func(t *testing.T) {
			require.NoError(t, store.Put("bot", sampleParams))
			require.NoError(t, store.Put("bot", sampleParams[:1]))

			got, _, err := store.Get("bot")
			require.NoError(t, err)
			assert.Equal(t, sampleParams[:1], got)
		})
	}
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	for driver, store := range openStores(t) {
		t.Run(driver, func(t *testing.T) {
			require.NoError(t, store.Put("bot", sampleParams))
			require.NoError(t, store.Remove("bot"))
			require.NoError(t, store.Remove("bot"))
			require.NoError(t, store.Remove("never-existed"))

			_, ok, err := store.Get("bot")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_RejectsEmptyName(t *testing.T) {
	for driver, store := range openStores(t) {
		t.Run(driver, func(t *testing.T) {
			err := store.Put(" ", sampleParams)
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, domain.CodeInvalidArgument))
		})
	}
}

func TestJSONStore_PersistsDocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt_params_store.json")
	store := NewJSONStore(path)
	require.NoError(t, store.Put("bot", sampleParams[1:]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bot":[{"name":"tone","label":"Tone","default":"friendly"}]}`, string(data))

	// A second store instance sees the persisted entry.
	got, ok, err := NewJSONStore(path).Get("bot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleParams[1:], got)
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt_params_store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, _, err := NewJSONStore(path).Get("bot")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInternal))
}

func TestBoltStore_ClosedAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt_params.db")
	store, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put("bot", sampleParams))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, _, err = store.Get("bot")
	require.ErrorIs(t, err, ErrStoreClosed)

	reopened, err := OpenBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, ok, err := reopened.Get("bot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleParams, got)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("redis", "x")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidArgument))
}

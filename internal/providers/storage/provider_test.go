package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetGetRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("profile", doc{Name: "ada", Count: 3}))

	var got doc
	require.NoError(t, store.Get("profile", &got))
	assert.Equal(t, doc{Name: "ada", Count: 3}, got)
}

func TestGetSurvivesColdCache(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("profile", doc{Name: "ada"}))

	// A fresh store over the same directory reads from disk.
	reopened, err := New(dir)
	require.NoError(t, err)

	var got doc
	require.NoError(t, reopened.Get("profile", &got))
	assert.Equal(t, "ada", got.Name)
}

func TestGetMissingKey(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	var got doc
	assert.Error(t, store.Get("nothing", &got))
}

func TestDelete(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("profile", doc{}))

	require.NoError(t, store.Delete("profile"))
	var got doc
	assert.Error(t, store.Get("profile", &got))

	assert.NoError(t, store.Delete("profile"), "deleting a missing key is not an error")
}

func TestKeysAreSorted(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("b", doc{}))
	require.NoError(t, store.Set("a", doc{}))
	require.NoError(t, store.Set("c", doc{}))

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestKeyValidation(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "a/b", `a\b`, "../escape"} {
		assert.Error(t, store.Set(key, doc{}), "key %q must be rejected", key)
	}
}

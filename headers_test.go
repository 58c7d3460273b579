package httpcore

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedKeyValuesOrdersListedNamesFirst(t *testing.T) {
	h := http.Header{
		"Accept":     {"*/*"},
		"User-Agent": {"test"},
		"Host":       {"example.com"},
	}
	order := OrderedHeaders{"host", "user-agent"}

	kvs := sortedKeyValues(h, order)
	names := make([]string, len(kvs))
	for i, kv := range kvs {
		names[i] = kv.key
	}

	assert.Equal(t, "Host", names[0])
	assert.Equal(t, "User-Agent", names[1])
	assert.Equal(t, "Accept", names[2])
}

func TestSortedKeyValuesFallsBackToLexicographic(t *testing.T) {
	h := http.Header{"B": {"2"}, "A": {"1"}}
	kvs := sortedKeyValues(h, nil)
	assert.Equal(t, "A", kvs[0].key)
	assert.Equal(t, "B", kvs[1].key)
}

func TestMergeDefaultsNeverOverwritesExisting(t *testing.T) {
	dst := http.Header{"User-Agent": {"custom"}}
	defaults := http.Header{"User-Agent": {"default"}, "Accept": {"*/*"}}

	mergeDefaults(dst, defaults)

	assert.Equal(t, "custom", dst.Get("User-Agent"))
	assert.Equal(t, "*/*", dst.Get("Accept"))
}

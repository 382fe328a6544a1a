package store

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewID_Prefix(t *testing.T) {
	assert.True(t, HasPrefix(NewID(ReviewIDPrefix), ReviewIDPrefix))
	assert.True(t, HasPrefix(NewID(TaskIDPrefix), TaskIDPrefix))
	assert.False(t, HasPrefix(NewID(TaskIDPrefix), ReviewIDPrefix))
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID(TaskIDPrefix)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewID_SortableByCreationOrder(t *testing.T) {
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, NewID(TaskIDPrefix))
		time.Sleep(2 * time.Millisecond)
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	assert.Equal(t, ids, sorted, "ids created later must sort lexicographically later")
}

func TestNewID_SafeAsFileName(t *testing.T) {
	id := NewID(ReviewIDPrefix)
	assert.NotContains(t, id, ":")
	assert.NotContains(t, id, ".")
	assert.NotContains(t, id, "/")
}

package sitemap

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCollector(t *testing.T) {
	col := NewCollector()

	assert.Zero(t, col.EntryCount())
	assert.Zero(t, col.ErrorCount())
	assert.Empty(t, col.LastError())
	assert.Empty(t, col.Entries())
	assert.Empty(t, col.Errors())
}

func TestCollectorPreservesOrder(t *testing.T) {
	col := NewCollector()

	col.AddEntries([]URLEntry{
		{URL: "https://example.com/1"},
		{URL: "https://example.com/2"},
	})
	col.AddEntries(nil)
	col.AddEntries([]URLEntry{
		{URL: "https://example.com/3"},
	})

	entries := col.Entries()
	assert.Equal(t, 3, col.EntryCount())
	assert.Equal(t, "https://example.com/1", entries[0].URL)
	assert.Equal(t, "https://example.com/2", entries[1].URL)
	assert.Equal(t, "https://example.com/3", entries[2].URL)
}

func TestCollectorErrors(t *testing.T) {
	col := NewCollector()

	col.AddError("first failure")
	col.AddError("second failure")

	assert.Equal(t, 2, col.ErrorCount())
	assert.Equal(t, "second failure", col.LastError())
	assert.Equal(t, []string{"first failure", "second failure"}, col.Errors())
}

func TestCollectorReturnsCopies(t *testing.T) {
	col := NewCollector()
	col.AddEntries([]URLEntry{{URL: "https://example.com/original"}})

	entries := col.Entries()
	entries[0].URL = "https://example.com/mutated"

	assert.Equal(t, "https://example.com/original", col.Entries()[0].URL)
}

func TestCollectorConcurrentAccess(t *testing.T) {
	col := NewCollector()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			col.AddEntries([]URLEntry{{URL: fmt.Sprintf("https://example.com/%d", id)}})
			col.AddError(fmt.Sprintf("error %d", id))
			_ = col.EntryCount()
			_ = col.LastError()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, goroutines, col.EntryCount())
	assert.Equal(t, goroutines, col.ErrorCount())
}

package sitemap

import "sync"

// Collector accumulates entries and error strings for one harvest
// invocation. All mutation goes through its methods under a single lock, so
// the traversal can later fan out across goroutines without changes at call
// sites. Created at call start, discarded at call end.
type Collector struct {
	mu      sync.Mutex
	entries []URLEntry
	errors  []string
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// AddEntries appends parsed entries, preserving their document order.
func (c *Collector) AddEntries(entries []URLEntry) {
	if len(entries) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entries...)
}

// AddError records a non-fatal failure encountered during traversal.
func (c *Collector) AddError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, msg)
}

// EntryCount returns how many entries have been collected so far.
func (c *Collector) EntryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ErrorCount returns how many errors have been recorded so far.
func (c *Collector) ErrorCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors)
}

// LastError returns the most recently recorded error, or empty when none.
func (c *Collector) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errors) == 0 {
		return ""
	}
	return c.errors[len(c.errors)-1]
}

// Entries returns a copy of the collected entries.
func (c *Collector) Entries() []URLEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]URLEntry, len(c.entries))
	copy(entries, c.entries)
	return entries
}

// Errors returns a copy of the recorded error strings.
func (c *Collector) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make([]string, len(c.errors))
	copy(errs, c.errors)
	return errs
}

package directory

import (
	"sync"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// Collection is the in-memory set of employee rows of one session.
// It is the only owner of the rows: other components mutate it through
// its methods, never through a shared slice. Safe for concurrent use.
type Collection struct {
	mu   sync.RWMutex
	rows []models.Employee
}

// NewCollection creates a collection holding a copy of rows.
func NewCollection(rows []models.Employee) *Collection {
	c := &Collection{}
	c.Reset(rows)
	return c
}

// Snapshot returns a detached copy of the rows in order.
func (c *Collection) Snapshot() []models.Employee {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Employee, len(c.rows))
	for i, row := range c.rows {
		out[i] = row.Clone()
	}
	return out
}

// Len returns the number of rows.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.rows)
}

// Find returns the row with the given id.
func (c *Collection) Find(id int) (models.Employee, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.rows[i].Clone(), true
	}
	return models.Employee{}, false
}

// Contains reports whether a row with the given id exists.
func (c *Collection) Contains(id int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.indexOf(id) >= 0
}

// Remove deletes the row with the given id and returns it with the index it occupied.
func (c *Collection) Remove(id int) (models.Employee, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return models.Employee{}, -1, false
	}

	removed := c.rows[i]
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	return removed, i, true
}

// InsertAt puts e at index, clamped to [0, Len()]. It does nothing and returns
// false when a row with the same id is already present.
func (c *Collection) InsertAt(index int, e models.Employee) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(e.ID) >= 0 {
		return false
	}

	index = max(0, min(index, len(c.rows)))
	c.rows = append(c.rows, models.Employee{})
	copy(c.rows[index+1:], c.rows[index:])
	c.rows[index] = e.Clone()
	return true
}

// Replace swaps the row with e's id for e. It returns false when no such row exists.
func (c *Collection) Replace(e models.Employee) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(e.ID)
	if i < 0 {
		return false
	}
	c.rows[i] = e.Clone()
	return true
}

// Append adds e at the end. A row with the same id is replaced in place instead,
// keeping ids unique.
func (c *Collection) Append(e models.Employee) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(e.ID); i >= 0 {
		c.rows[i] = e.Clone()
		return
	}
	c.rows = append(c.rows, e.Clone())
}

// Reset replaces every row.
func (c *Collection) Reset(rows []models.Employee) {
	fresh := make([]models.Employee, len(rows))
	for i, row := range rows {
		fresh[i] = row.Clone()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows = fresh
}

func (c *Collection) indexOf(id int) int {
	for i := range c.rows {
		if c.rows[i].ID == id {
			return i
		}
	}
	return -1
}

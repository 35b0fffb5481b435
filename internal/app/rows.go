package app

import (
	"sync"

	"searchbyimage/similarity"
)

// resultRows owns the results table model shared between the scan goroutine
// and the render callbacks. Once the final ranking lands, the best-row
// highlight stays armed until the rows are cleared by the next search.
type resultRows struct {
	mu            sync.Mutex
	rows          []similarity.Match
	highlightBest bool
}

func (r *resultRows) add(m similarity.Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, m)
}

func (r *resultRows) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	r.highlightBest = false
}

// setRanked replaces the live rows with the final ranking and arms the
// highlight; the ranked slice puts the best match first.
func (r *resultRows) setRanked(rows []similarity.Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = rows
	r.highlightBest = true
}

func (r *resultRows) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *resultRows) at(i int) (similarity.Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.rows) {
		return similarity.Match{}, false
	}
	return r.rows[i], true
}

// bold reports whether row i renders highlighted.
func (r *resultRows) bold(i int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.highlightBest && i == 0
}

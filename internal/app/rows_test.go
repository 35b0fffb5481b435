package app

import (
	"testing"

	"searchbyimage/similarity"
)

func TestResultRowsHighlightLifecycle(t *testing.T) {
	var r resultRows

	r.add(similarity.Match{Name: "a.png", Score: 0.4})
	r.add(similarity.Match{Name: "b.png", Score: 0.9})
	if r.bold(0) {
		t.Fatal("no row highlights while the scan is still running")
	}

	r.setRanked([]similarity.Match{
		{Name: "b.png", Score: 0.9},
		{Name: "a.png", Score: 0.4},
	})
	if !r.bold(0) {
		t.Fatal("top row must highlight once the ranking lands")
	}
	if r.bold(1) {
		t.Fatal("only the top row highlights")
	}
	// Redraws after completion keep the highlight.
	if !r.bold(0) {
		t.Fatal("highlight must persist until the rows are cleared")
	}

	r.clear()
	if r.count() != 0 {
		t.Fatalf("clear left %d rows", r.count())
	}
	if r.bold(0) {
		t.Fatal("clear must drop the highlight")
	}
}

func TestResultRowsAt(t *testing.T) {
	var r resultRows
	r.add(similarity.Match{Name: "x.png"})
	if m, ok := r.at(0); !ok || m.Name != "x.png" {
		t.Fatalf("at(0) = %v, %v", m, ok)
	}
	if _, ok := r.at(1); ok {
		t.Fatal("index past the end must report false")
	}
	if _, ok := r.at(-1); ok {
		t.Fatal("negative index must report false")
	}
}

func TestResultRowsConcurrentAccess(t *testing.T) {
	var r resultRows
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			r.add(similarity.Match{Name: "m.png", Score: float64(i)})
		}
		r.setRanked([]similarity.Match{{Name: "best.png", Score: 1}})
	}()
	for i := 0; i < 200; i++ {
		r.count()
		r.bold(0)
		r.at(i)
	}
	<-done
	if !r.bold(0) {
		t.Fatal("highlight must be armed after setRanked")
	}
}

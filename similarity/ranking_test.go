package similarity

import (
	"errors"
	"testing"
)

func TestRankMatchesOrdering(t *testing.T) {
	in := []Match{
		{Name: "low.png", Score: 0.2},
		{Name: "bad.png", Err: errors.New("decode failed")},
		{Name: "high.png", Score: 0.9},
		{Name: "mid-a.png", Score: 0.5},
		{Name: "mid-b.png", Score: 0.5},
	}
	out := RankMatches(in)

	want := []string{"high.png", "mid-a.png", "mid-b.png", "low.png", "bad.png"}
	if len(out) != len(want) {
		t.Fatalf("unexpected length: got %d want %d", len(out), len(want))
	}
	for i, name := range want {
		if out[i].Name != name {
			t.Errorf("position %d: got %s want %s", i, out[i].Name, name)
		}
	}
	// Input order untouched.
	if in[0].Name != "low.png" {
		t.Error("RankMatches must not mutate its input")
	}
}

func TestRankMatchesTiesKeepFirstSeenOrder(t *testing.T) {
	in := []Match{
		{Name: "first.png", Score: 0.5},
		{Name: "second.png", Score: 0.5},
		{Name: "third.png", Score: 0.5},
	}
	out := RankMatches(in)
	for i, name := range []string{"first.png", "second.png", "third.png"} {
		if out[i].Name != name {
			t.Fatalf("tie order broken at %d: got %s want %s", i, out[i].Name, name)
		}
	}
}

func TestBestMatch(t *testing.T) {
	tests := []struct {
		name    string
		matches []Match
		want    string
		ok      bool
	}{
		{
			name: "picks maximum",
			matches: []Match{
				{Name: "a.png", Score: 0.1},
				{Name: "b.png", Score: 0.8},
				{Name: "c.png", Score: 0.3},
			},
			want: "b.png",
			ok:   true,
		},
		{
			name: "ignores error rows",
			matches: []Match{
				{Name: "bad.png", Err: errors.New("boom")},
				{Name: "good.png", Score: 0.0},
			},
			want: "good.png",
			ok:   true,
		},
		{
			name: "all errors",
			matches: []Match{
				{Name: "bad1.png", Err: errors.New("boom")},
				{Name: "bad2.png", Err: errors.New("boom")},
			},
			ok: false,
		},
		{
			name: "empty",
			ok:   false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			best, ok := BestMatch(tc.matches)
			if ok != tc.ok {
				t.Fatalf("ok: got %v want %v", ok, tc.ok)
			}
			if ok && best.Name != tc.want {
				t.Fatalf("best: got %s want %s", best.Name, tc.want)
			}
		})
	}
}

package app

import "testing"

func TestSearchStateString(t *testing.T) {
	tests := []struct {
		state searchState
		want  string
	}{
		{stateIdle, "idle"},
		{stateRunning, "running"},
		{stateCompleted, "completed"},
		{stateCancelled, "cancelled"},
		{stateFailed, "failed"},
		{searchState(42), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("searchState(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}

package coverage

import "testing"

func TestTokenize(t *testing.T) {
	got := Tokenize("All inputs MUST be validated (RULE-042).")
	want := []string{"all", "inputs", "must", "be", "validated", "rule", "042"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOverlapRatio(t *testing.T) {
	rule := tokenSet([]string{"inputs", "must", "be", "validated"})

	full := tokenSet([]string{"inputs", "must", "be", "validated", "here"})
	if r := overlapRatio(rule, full); r != 1.0 {
		t.Errorf("full overlap = %v, want 1.0", r)
	}

	half := tokenSet([]string{"inputs", "validated"})
	if r := overlapRatio(rule, half); r != 0.5 {
		t.Errorf("half overlap = %v, want 0.5", r)
	}

	if r := overlapRatio(map[string]struct{}{}, full); r != 0 {
		t.Errorf("empty rule tokens = %v, want 0", r)
	}
}

func TestContainsToken(t *testing.T) {
	tests := []struct {
		line, needle string
		want         bool
	}{
		{"// enforces rule-042 here", "rule-042", true},
		{"checkRule042(x)", "rule-042", false},
		{"prule-042x", "rule-042", false},
		{"rule-042", "rule-042", true},
		{"see rule-0421", "rule-042", false},
	}
	for _, tt := range tests {
		if got := containsToken(tt.line, tt.needle); got != tt.want {
			t.Errorf("containsToken(%q, %q) = %v, want %v", tt.line, tt.needle, got, tt.want)
		}
	}
}

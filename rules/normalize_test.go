package rules

import "testing"

func TestNormalizeID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"RULE-042", "rule-042"},
		{"  Max   Depth ", "max-depth"},
		{"already-normal", "already-normal"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeID(tt.in); got != tt.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("  All   inputs MUST\tbe validated.  ")
	want := "all inputs must be validated."
	if got != want {
		t.Errorf("NormalizeText = %q, want %q", got, want)
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("Inputs must be validated.", "core_logic")
	b := Fingerprint("  inputs MUST be   validated. ", "CORE_LOGIC")
	if a != b {
		t.Errorf("equivalent text produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != len("fp-")+16 {
		t.Errorf("fingerprint length = %d: %s", len(a), a)
	}
}

func TestFingerprint_CategoryDistinguishes(t *testing.T) {
	a := Fingerprint("same text", "core_logic")
	b := Fingerprint("same text", "test_suite")
	if a == b {
		t.Error("different categories collided")
	}
}

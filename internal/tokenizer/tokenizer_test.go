package tokenizer

import (
	"log/slog"
	"testing"
)

func TestApprox_CountTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "whitespace only", text: "  \n\t ", want: 0},
		{name: "single word", text: "mortality", want: 2},
		{name: "three words", text: "mortality was reduced", want: 4},
		{name: "six words", text: "the treatment group did much better", want: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Approx{}).CountTokens(tt.text); got != tt.want {
				t.Errorf("CountTokens(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestIdentifiers_Distinguishable(t *testing.T) {
	if (Approx{}).Identifier() != "approx/whitespace" {
		t.Errorf("Approx identifier = %q", (Approx{}).Identifier())
	}

	bpe := &BPETokenizer{name: DefaultEncoding}
	if bpe.Identifier() == (Approx{}).Identifier() {
		t.Error("BPE and fallback identifiers must be distinguishable")
	}
}

func TestNewWithFallback_NeverNil(t *testing.T) {
	// Whatever happens during BPE construction, callers always get a
	// working tokenizer; a failure only changes the identifier.
	tok := NewWithFallback(DefaultEncoding, slog.Default())
	if tok == nil {
		t.Fatal("NewWithFallback() returned nil")
	}
	if tok.CountTokens("treatment reduced mortality") <= 0 {
		t.Error("CountTokens() on non-empty text should be positive")
	}
}

package util

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "copy", 10, "copy"},
		{"exact length unchanged", "verify", 6, "verify"},
		{"long string truncated", "verify-checksums", 10, "verify-..."},
		{"tiny max is ellipsis", "copy", 3, "..."},
		{"multibyte runes counted", "données-à-copier", 10, "données..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateANSI(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("a very long styled task name")

	got := TruncateANSI(styled, 12)
	if w := lipgloss.Width(got); w > 12 {
		t.Errorf("truncated width = %d, want <= 12", w)
	}

	if got := TruncateANSI("plain", 10); got != "plain" {
		t.Errorf("short input changed: %q", got)
	}
	if got := TruncateANSI("anything", 2); got != "..." {
		t.Errorf("tiny max = %q, want ellipsis", got)
	}
}

package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_StatusLines(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"status with icon", func(w *Writer) { w.Status("→", "Scanning") }, "→ Scanning\n"},
		{"status without icon", func(w *Writer) { w.Status("", "indented") }, "  indented\n"},
		{"success", func(w *Writer) { w.Successf("Wrote %s", "config.yaml") }, "✓ Wrote config.yaml\n"},
		{"warning", func(w *Writer) { w.Warningf("%d files", 2) }, "⚠ 2 files\n"},
		{"error", func(w *Writer) { w.Errorf("failed: %v", "boom") }, "✗ failed: boom\n"},
		{"statusf", func(w *Writer) { w.Statusf("•", "%d/%d", 1, 2) }, "• 1/2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a writer with a buffer
			buf := &bytes.Buffer{}
			w := New(buf)

			// When: writing
			tt.write(w)

			// Then: the line matches exactly
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_KeyValue_Aligns(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewColor(buf, false)

	w.KeyValue("Version", "1.0.0", 10)
	w.KeyValue("Go", "go1.25.5", 10)

	assert.Equal(t, "Version:    1.0.0\nGo:         go1.25.5\n", buf.String())
}

func TestWriter_Code_IndentsLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Code("version: 1\nserver:\n  transport: stdio\n")

	assert.Equal(t, "\n  version: 1\n  server:\n    transport: stdio\n\n", buf.String())
}

func TestWriter_RawAndNewline(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Raw("a")
	w.Newline()

	assert.Equal(t, "a\n", buf.String())
}

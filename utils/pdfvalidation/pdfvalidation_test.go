package pdfvalidation

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rejection(t *testing.T, err error) string {
	t.Helper()
	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected), "expected a rejection, got %v", err)
	return rejected.Reason
}

func TestInspectRejectsMissingHeader(t *testing.T) {
	_, err := Inspect([]byte("hello world"), ApplicationDocument)
	assert.Equal(t, "Invalid PDF file: missing PDF header", rejection(t, err))
}

func TestInspectRejectsOversize(t *testing.T) {
	limits := Limits{MaxBytes: 1 << 20, MaxPages: 1, Label: "test"}
	content := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), 1<<20)...)

	doc, err := Inspect(content, limits)
	assert.Contains(t, rejection(t, err), "exceeds maximum allowed size of 1MB")
	assert.Equal(t, int64(len(content)), doc.Size)
}

func TestInspectRejectsCorruptBody(t *testing.T) {
	_, err := Inspect([]byte("%PDF-1.4\nnot really a pdf"), ApplicationDocument)
	assert.Contains(t, rejection(t, err), "Failed to read PDF")
}

func TestTrimTrailer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing garbage", "%PDF-1.4\nbody\n%%EOF\r\ngarbage", "%PDF-1.4\nbody\n%%EOF\r\n"},
		{"clean", "%PDF-1.4\nbody\n%%EOF\n", "%PDF-1.4\nbody\n%%EOF\n"},
		{"no marker", "%PDF-1.4\nbody", "%PDF-1.4\nbody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(trimTrailer([]byte(tt.in))))
		})
	}
}

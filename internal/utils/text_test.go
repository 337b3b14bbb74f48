package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"rag", 10, "rag"},
		{"event-sourcing", 14, "event-sourcing"},
		{"event-sourcing", 8, "event-s…"},
		{"Überwachung", 5, "Über…"},
		{"cqrs", 1, "c"},
		{"cqrs", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.in, tt.max), "Truncate(%q, %d)", tt.in, tt.max)
	}
}

func TestExcerpt(t *testing.T) {
	raw := "{\n  \"effects\": [\n    {\"title\": \"Cache"
	assert.Equal(t, `{ "effects": [ {"title": "Cache`, Excerpt(raw, 80))
	assert.Equal(t, `{ "effects"…`, Excerpt(raw, 12))
}

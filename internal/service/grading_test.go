package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCorrectSelection(t *testing.T) {
	tests := []struct {
		name     string
		correct  []string
		selected []string
		want     bool
	}{
		{"exact match", []string{"a", "b"}, []string{"a", "b"}, true},
		{"order ignored", []string{"a", "b"}, []string{"b", "a"}, true},
		{"duplicates ignored", []string{"a"}, []string{"a", "a"}, true},
		{"whitespace trimmed", []string{"a", "b"}, []string{" a", "b "}, true},
		{"partial selection", []string{"a", "b"}, []string{"a"}, false},
		{"extra selection", []string{"a"}, []string{"a", "c"}, false},
		{"wrong option", []string{"a"}, []string{"c"}, false},
		{"empty selection", []string{"a"}, nil, false},
		{"no correct options and nothing selected", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCorrectSelection(tt.correct, tt.selected))
		})
	}
}

func TestNormalizeSelection(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, normalizeSelection([]string{" b", "", "a", "b"}))
	assert.Empty(t, normalizeSelection(nil))
}

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ground Floor", "ground-floor"},
		{"Entrée Hall", "entree-hall"},
		{"  Garage  ", "garage"},
		{"PIR #3 (hall)", "pir-3-hall"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Front door", Normalize("Front door\x00\x00  "))
	assert.Equal(t, "", Normalize("\x00\x00"))
}

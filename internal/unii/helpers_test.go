package unii

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBCDEncode(t *testing.T) {
	encoded, err := BCDEncode("1234")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, encoded)

	encoded, err = BCDEncode("1234567890123456")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78, 0x90, 0x12, 0x34, 0x56}, encoded)
}

func TestBCDEncodeRejectsInvalidInput(t *testing.T) {
	_, err := BCDEncode("12a4")
	assert.Error(t, err)

	_, err = BCDEncode("12345678901234567")
	assert.Error(t, err)
}

func TestBitPositions(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []int
	}{
		{"empty", nil, nil},
		{"single low bit", []byte{0x01}, []int{1}},
		{"two bits", []byte{0x00, 0x0A}, []int{2, 4}},
		{"across bytes", []byte{0x01, 0x00, 0x00, 0x03}, []int{1, 2, 25}},
		{"zero", []byte{0x00, 0x00}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BitPositions(tt.data))
		})
	}
}

func TestTranslateInputNumber(t *testing.T) {
	tests := []struct {
		index int
		want  int
	}{
		{0, 1},
		{511, 512},
		{512, 701},
		{543, 732},
		{544, NotApplicable},
		{575, NotApplicable},
		{576, 601},
		{639, 664},
		{640, 801},
		{688, 849},
		{689, NotApplicable},
		{705, NotApplicable},
		{706, 1001},
		{962, 1257},
		{963, NotApplicable},
		{-1, NotApplicable},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TranslateInputNumber(tt.index), "index %d", tt.index)
	}
}

package unii

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC16(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{
			name: "even length",
			data: []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF},
			want: 0xA955,
		},
		{
			name: "odd length",
			data: []byte{0x01, 0x23, 0x45, 0x67, 0x89},
			want: 0x6282,
		},
		{
			name: "empty",
			data: nil,
			want: 0x0000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CRC16(tt.data))
		})
	}
}

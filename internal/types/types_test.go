package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputTypeForNumber(t *testing.T) {
	tests := []struct {
		number int
		want   InputType
	}{
		{1, InputTypeWired},
		{512, InputTypeWired},
		{601, InputTypeWireless},
		{664, InputTypeWireless},
		{701, InputTypeKeypad},
		{801, InputTypeKNX},
		{1001, InputTypeDoor},
		{513, InputTypeSpare},
		{0, InputTypeSpare},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InputTypeForNumber(tt.number), "input %d", tt.number)
	}
}

func TestSectionArmedStateValid(t *testing.T) {
	assert.True(t, SectionArmed.Valid())
	assert.True(t, SectionNotProgrammed.Valid())
	assert.False(t, SectionArmedState(3).Valid())
}

func TestSIACodeDescription(t *testing.T) {
	assert.Equal(t, "Burglary Alarm", SIABurglaryAlarm.Description())
	assert.Equal(t, "XX", SIACode("XX").Description())
}

func TestEquipmentInformationEqual(t *testing.T) {
	a := &EquipmentInformation{DeviceName: "UNii 128", MaxInputs: 128}
	b := &EquipmentInformation{DeviceName: "UNii 128", MaxInputs: 128}
	assert.True(t, a.Equal(b))

	b.MaxInputs = 512
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}

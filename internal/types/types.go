package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Section is an arrangement of inputs that can be armed and disarmed as a
// unit. Sections are created from the section arrangement and their armed
// state is updated by section status responses.
type Section struct {
	Number     int
	Active     bool
	Name       string
	ArmedState SectionArmedState
}

type SectionArmedState int

const (
	SectionNotProgrammed SectionArmedState = 0
	SectionArmed         SectionArmedState = 1
	SectionDisarmed      SectionArmedState = 2
	SectionAlarm         SectionArmedState = 7
	SectionExitTimer     SectionArmedState = 8
	SectionEntryTimer    SectionArmedState = 9
)

func (s SectionArmedState) Valid() bool {
	switch s {
	case SectionNotProgrammed, SectionArmed, SectionDisarmed, SectionAlarm,
		SectionExitTimer, SectionEntryTimer:
		return true
	}
	return false
}

func (s SectionArmedState) String() string {
	switch s {
	case SectionNotProgrammed:
		return "Not Programmed"
	case SectionArmed:
		return "Armed"
	case SectionDisarmed:
		return "Disarmed"
	case SectionAlarm:
		return "Alarm"
	case SectionExitTimer:
		return "Exit Timer"
	case SectionEntryTimer:
		return "Entry Timer"
	default:
		return fmt.Sprintf("Unknown SectionArmedState(%d)", s)
	}
}

// Input is a single zone input. SectionNumbers holds the raw section bitmask
// positions from the wire, Sections the resolved references.
type Input struct {
	Number         int
	Type           InputType
	SensorType     SensorType
	Reaction       Reaction
	Name           string
	SectionNumbers []int
	// Sections holds resolved references into the section table and is
	// rebuilt from SectionNumbers whenever the arrangement is merged.
	Sections       []*Section `json:"-"`
	Status         InputState
	Bypassed       bool
	AlarmMemorized bool
	LowBattery     bool
	Supervision    bool
}

type InputType int

const (
	InputTypeSpare InputType = iota
	InputTypeWired
	InputTypeKeypad
	InputTypeWireless
	InputTypeKNX
	InputTypeDoor
)

// InputTypeForNumber derives the input type from the input's number range.
func InputTypeForNumber(number int) InputType {
	switch {
	case number >= 1 && number <= 512:
		return InputTypeWired
	case number >= 601 && number <= 664:
		return InputTypeWireless
	case number >= 701 && number <= 732:
		return InputTypeKeypad
	case number >= 801 && number <= 845:
		return InputTypeKNX
	case number >= 1001 && number <= 1128:
		return InputTypeDoor
	}
	return InputTypeSpare
}

func (t InputType) String() string {
	switch t {
	case InputTypeWired:
		return "Wired"
	case InputTypeKeypad:
		return "Keypad"
	case InputTypeWireless:
		return "Wireless"
	case InputTypeKNX:
		return "KNX"
	case InputTypeDoor:
		return "Door"
	case InputTypeSpare:
		return "Spare"
	default:
		return fmt.Sprintf("Unknown InputType(%d)", t)
	}
}

type SensorType int

const (
	SensorNotActive SensorType = iota
	SensorBurglary
	SensorFire
	SensorTamper
	SensorHoldup
	SensorMedical
	SensorGas
	SensorWater
	SensorTechnical
	SensorDirectDialerInput
	SensorKeyswitch
	SensorNoAlarm
	SensorEN54Fire
	SensorEN54FireMCP
	SensorEN54Fault
	SensorGlassbreak
)

func (t SensorType) String() string {
	names := []string{
		"Not Active", "Burglary", "Fire", "Tamper", "Holdup", "Medical",
		"Gas", "Water", "Technical", "Direct Dialer Input", "Keyswitch",
		"No Alarm", "EN54 Fire", "EN54 Fire MCP", "EN54 Fault", "Glassbreak",
	}
	if t >= 0 && int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("Unknown SensorType(%d)", t)
}

type Reaction int

const (
	ReactionDirect Reaction = iota
	ReactionDelayed
	ReactionFollower
	ReactionTwentyFourHour
	ReactionLastDoor
	ReactionDelayedAlarm
)

func (r Reaction) String() string {
	switch r {
	case ReactionDirect:
		return "Direct"
	case ReactionDelayed:
		return "Delayed"
	case ReactionFollower:
		return "Follower"
	case ReactionTwentyFourHour:
		return "24 Hour"
	case ReactionLastDoor:
		return "Last Door"
	case ReactionDelayedAlarm:
		return "Delayed Alarm"
	default:
		return fmt.Sprintf("Unknown Reaction(%d)", r)
	}
}

type InputState int

const (
	InputOK       InputState = 0x0
	InputAlarm    InputState = 0x1
	InputTamper   InputState = 0x2
	InputMasking  InputState = 0x4
	InputDisabled InputState = 0xF
)

func (s InputState) String() string {
	switch s {
	case InputOK:
		return "OK"
	case InputAlarm:
		return "Alarm"
	case InputTamper:
		return "Tamper"
	case InputMasking:
		return "Masking"
	case InputDisabled:
		return "Disabled"
	default:
		return fmt.Sprintf("Unknown InputState(%d)", s)
	}
}

// Output is a controllable panel output.
type Output struct {
	Number         int
	Type           OutputType
	Name           string
	SectionNumbers []int
}

type OutputType int

const (
	OutputNotActive OutputType = iota
	OutputDirect
	OutputTimed
	OutputFollowInput
)

func (t OutputType) String() string {
	switch t {
	case OutputNotActive:
		return "Not Active"
	case OutputDirect:
		return "Direct"
	case OutputTimed:
		return "Timed"
	case OutputFollowInput:
		return "Follow Input"
	default:
		return fmt.Sprintf("Unknown OutputType(%d)", t)
	}
}

// DeviceStatusRecord is the per-device bit-flag set from a device status
// message.
type DeviceStatusRecord uint16

const (
	DeviceMainsFailure                  DeviceStatusRecord = 1 << 0
	DeviceMainsFailureRestored          DeviceStatusRecord = 1 << 1
	DeviceLowBattery                    DeviceStatusRecord = 1 << 2
	DeviceLowBatteryRestored            DeviceStatusRecord = 1 << 3
	DeviceTamperSwitchOpen              DeviceStatusRecord = 1 << 4
	DeviceTamperSwitchOpenRestored      DeviceStatusRecord = 1 << 5
	DeviceRS485BusFailure               DeviceStatusRecord = 1 << 6
	DeviceRS485BusFailureRestored       DeviceStatusRecord = 1 << 7
	DevicePresent                       DeviceStatusRecord = 1 << 8
	DeviceBatteryMissing                DeviceStatusRecord = 1 << 9
	DeviceBatteryMissingRestored        DeviceStatusRecord = 1 << 10
	DeviceBatteryFault                  DeviceStatusRecord = 1 << 11
	DeviceBatteryFaultRestored          DeviceStatusRecord = 1 << 12
	DevicePowerUnitFailure              DeviceStatusRecord = 1 << 13
	DevicePowerUnitFailureRestored      DeviceStatusRecord = 1 << 14
	DeviceLANConnectionFailure          DeviceStatusRecord = 1 << 15
)

func (r DeviceStatusRecord) Has(flag DeviceStatusRecord) bool {
	return r&flag != 0
}

func (r DeviceStatusRecord) String() string {
	if r == 0 {
		return "OK"
	}
	names := []struct {
		flag DeviceStatusRecord
		name string
	}{
		{DeviceMainsFailure, "Mains Failure"},
		{DeviceMainsFailureRestored, "Mains Failure Restored"},
		{DeviceLowBattery, "Low Battery"},
		{DeviceLowBatteryRestored, "Low Battery Restored"},
		{DeviceTamperSwitchOpen, "Tamper Switch Open"},
		{DeviceTamperSwitchOpenRestored, "Tamper Switch Open Restored"},
		{DeviceRS485BusFailure, "RS-485 Bus Failure"},
		{DeviceRS485BusFailureRestored, "RS-485 Bus Failure Restored"},
		{DevicePresent, "Present"},
		{DeviceBatteryMissing, "Battery Missing"},
		{DeviceBatteryMissingRestored, "Battery Missing Restored"},
		{DeviceBatteryFault, "Battery Fault"},
		{DeviceBatteryFaultRestored, "Battery Fault Restored"},
		{DevicePowerUnitFailure, "Power Unit Failure"},
		{DevicePowerUnitFailureRestored, "Power Unit Failure Restored"},
		{DeviceLANConnectionFailure, "LAN Connection Failure"},
	}
	var set []string
	for _, n := range names {
		if r.Has(n.flag) {
			set = append(set, n.name)
		}
	}
	return strings.Join(set, "|")
}

// DeviceStatus is the fixed-shape snapshot from a device status message. It
// is replaced wholesale on every update, never merged field by field.
type DeviceStatus struct {
	ControlPanel    DeviceStatusRecord
	IODevices       []DeviceStatusRecord // 15 records
	KeyboardDevices []DeviceStatusRecord // 16 records
	WiegandDevices  []DeviceStatusRecord // 16 records
	KNXDevice       DeviceStatusRecord
	UWIDevices      []DeviceStatusRecord // 2 records
	RedundantDevice *DeviceStatusRecord  // present only on redundant units
}

// EquipmentInformation is the panel's self-description. Device ID, serial
// number and MAC address are only present in the newer wire layout.
type EquipmentInformation struct {
	SoftwareVersion *semver.Version
	SoftwareDate    *time.Time
	DeviceName      string
	MaxInputs       int
	MaxGroups       int
	MaxSections     int
	MaxUsers        int
	DeviceID        string
	SerialNumber    string
	MACAddress      string
}

func (e *EquipmentInformation) Equal(other *EquipmentInformation) bool {
	if other == nil {
		return false
	}
	if (e.SoftwareVersion == nil) != (other.SoftwareVersion == nil) {
		return false
	}
	if e.SoftwareVersion != nil && !e.SoftwareVersion.Equal(other.SoftwareVersion) {
		return false
	}
	if (e.SoftwareDate == nil) != (other.SoftwareDate == nil) {
		return false
	}
	if e.SoftwareDate != nil && !e.SoftwareDate.Equal(*other.SoftwareDate) {
		return false
	}
	return e.DeviceName == other.DeviceName &&
		e.MaxInputs == other.MaxInputs &&
		e.MaxGroups == other.MaxGroups &&
		e.MaxSections == other.MaxSections &&
		e.MaxUsers == other.MaxUsers &&
		e.DeviceID == other.DeviceID &&
		e.SerialNumber == other.SerialNumber &&
		e.MACAddress == other.MACAddress
}

// EventRecord is a single panel log event. Events are forwarded to
// subscribers and never stored.
type EventRecord struct {
	EventNumber    int
	Timestamp      time.Time
	Description    string
	UserNumber     int
	UserName       string
	InputNumber    int
	InputName      string
	DeviceNumber   int
	DeviceName     string
	BusNumber      int
	SectionNumbers []int
	SIACode        SIACode
}

func (e *EventRecord) String() string {
	parts := []string{fmt.Sprintf("%d: %s", e.EventNumber, e.Description)}
	if e.SIACode != "" {
		parts[0] += fmt.Sprintf(" (%s)", e.SIACode)
	}
	if e.UserName != "" {
		parts = append(parts, fmt.Sprintf("user %d %s", e.UserNumber, e.UserName))
	}
	if e.InputName != "" {
		parts = append(parts, fmt.Sprintf("input %d %s", e.InputNumber, e.InputName))
	}
	if e.DeviceName != "" {
		parts = append(parts, fmt.Sprintf("device %d %s", e.DeviceNumber, e.DeviceName))
	}
	return strings.Join(parts, ", ")
}

// ArmState is the result of an arm section request.
type ArmState int

const (
	ArmNoChange ArmState = iota
	ArmSectionArmed
	ArmFailedSectionNotReady
	ArmFailedNotAuthorized
)

func (s ArmState) String() string {
	switch s {
	case ArmNoChange:
		return "No Change"
	case ArmSectionArmed:
		return "Section Armed"
	case ArmFailedSectionNotReady:
		return "Arming Failed, Section Not Ready"
	case ArmFailedNotAuthorized:
		return "Arming Failed, Not Authorized"
	default:
		return fmt.Sprintf("Unknown ArmState(%d)", s)
	}
}

// DisarmState is the result of a disarm section request.
type DisarmState int

const (
	DisarmNoChange DisarmState = iota
	DisarmSectionDisarmed
	DisarmFailed
	DisarmFailedNotAuthorized
)

func (s DisarmState) String() string {
	switch s {
	case DisarmNoChange:
		return "No Change"
	case DisarmSectionDisarmed:
		return "Section Disarmed"
	case DisarmFailed:
		return "Disarming Failed"
	case DisarmFailedNotAuthorized:
		return "Disarming Failed, Not Authorized"
	default:
		return fmt.Sprintf("Unknown DisarmState(%d)", s)
	}
}

// ReadyToArmState is the result of a ready-to-arm query.
type ReadyToArmState int

const (
	ReadyToArmNotProgrammed ReadyToArmState = iota
	ReadyToArmSectionArmed
	readyToArmReserved
	ReadyToArmReady
	ReadyToArmNotReady
	ReadyToArmNotAuthorized
	ReadyToArmSystemError
)

func (s ReadyToArmState) String() string {
	switch s {
	case ReadyToArmNotProgrammed:
		return "Not Programmed"
	case ReadyToArmSectionArmed:
		return "Section Armed"
	case ReadyToArmReady:
		return "Section Ready For Arming"
	case ReadyToArmNotReady:
		return "Section Not Ready For Arming"
	case ReadyToArmNotAuthorized:
		return "Not Authorized To Arm"
	case ReadyToArmSystemError:
		return "System Error"
	default:
		return fmt.Sprintf("Unknown ReadyToArmState(%d)", s)
	}
}

// CacheData is the arrangement snapshot persisted between runs so topics and
// discovery can be announced before the panel handshake completes.
type CacheData struct {
	Equipment  *EquipmentInformation `json:"equipment"`
	Sections   []Section             `json:"sections"`
	Inputs     []Input               `json:"inputs"`
	Outputs    []Output              `json:"outputs"`
	LastUpdate time.Time             `json:"last_update"`
}

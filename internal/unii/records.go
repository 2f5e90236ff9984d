package unii

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/daemonp/unii2mqtt/internal/types"
)

// errEndOfBlocks marks the pagination terminator of a block-addressed
// arrangement response. It is explicitly not a parse failure.
var errEndOfBlocks = errors.New("end of arrangement blocks")

// blockTerminator is the block number signalling that no more blocks follow.
const blockTerminator = 0xFFFF

// RawData is the payload of a command without a registered decoder.
type RawData []byte

// ResultCode is the generic ACK/NACK response payload.
type ResultCode uint16

const (
	ResultOK    ResultCode = 0x0000
	ResultError ResultCode = 0x0001
)

// SectionArrangement is the decoded response to a section arrangement
// request. Section numbers are assigned by position, starting at 1.
type SectionArrangement struct {
	Sections []types.Section
}

// SectionStatusRecord is a single section's armed state.
type SectionStatusRecord struct {
	Number     int
	ArmedState types.SectionArmedState
}

// SectionStatus is the decoded response to a section status request.
type SectionStatus struct {
	Records []SectionStatusRecord
}

// ReadyToArmSectionStatus is the decoded response to a ready-to-arm query.
type ReadyToArmSectionStatus struct {
	Number int
	State  types.ReadyToArmState
}

// ArmSectionResponse is the decoded response to an arm section request.
type ArmSectionResponse struct {
	Number int
	State  types.ArmState
}

// DisarmSectionResponse is the decoded response to a disarm section request.
type DisarmSectionResponse struct {
	Number int
	State  types.DisarmState
}

// InputArrangement is one block of the paginated input arrangement.
type InputArrangement struct {
	BlockNumber int
	Inputs      []types.Input
}

// InputStatusRecord is a single input's dynamic state.
type InputStatusRecord struct {
	Number         int
	Status         types.InputState
	Bypassed       bool
	AlarmMemorized bool
	LowBattery     bool
	Supervision    bool
}

// InputStatus is the full input status table.
type InputStatus struct {
	Records []InputStatusRecord
}

// InputStatusUpdate is a single-input status change push.
type InputStatusUpdate struct {
	InputStatusRecord
}

// Bypass and unbypass result codes.
const (
	BypassSuccessful           = 1
	BypassAuthenticationFailed = 2
	BypassNotAllowed           = 3
	UnbypassNotBypassed        = 3
)

// BypassInputResult is the decoded response to a bypass request.
type BypassInputResult struct {
	Number int
	Result byte
}

// UnbypassInputResult is the decoded response to an unbypass request.
type UnbypassInputResult struct {
	Number int
	Result byte
}

// OutputArrangement is one block of the paginated output arrangement.
type OutputArrangement struct {
	BlockNumber int
	Outputs     []types.Output
}

// decodeRecord turns a payload into the typed record registered for the
// command. Commands without a decoder fall through to RawData.
func decodeRecord(command Command, data []byte) (interface{}, error) {
	switch command {
	case CmdGeneralResponse:
		return decodeResultCode(data)
	case CmdResponseEquipmentInformation:
		return decodeEquipmentInformation(data)
	case CmdResponseSectionArrangement:
		return decodeSectionArrangement(data)
	case CmdResponseSectionStatus:
		return decodeSectionStatus(data)
	case CmdResponseReadyToArmSections:
		return decodeReadyToArmSectionStatus(data)
	case CmdResponseArmSection:
		return decodeArmSectionResponse(data)
	case CmdResponseDisarmSection:
		return decodeDisarmSectionResponse(data)
	case CmdResponseInputArrangement:
		return decodeInputArrangement(data)
	case CmdInputStatusChanged:
		return decodeInputStatus(data)
	case CmdInputStatusUpdate:
		return decodeInputStatusUpdate(data)
	case CmdResponseBypassInput:
		return decodeBypassInputResult(data)
	case CmdResponseUnbypassInput:
		return decodeUnbypassInputResult(data)
	case CmdResponseOutputArrangement:
		return decodeOutputArrangement(data)
	case CmdDeviceStatusChanged:
		return decodeDeviceStatus(data)
	case CmdEventOccurred:
		return decodeEventRecord(data)
	default:
		return RawData(data), nil
	}
}

func decodeResultCode(data []byte) (ResultCode, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("result code too short: %d bytes", len(data))
	}
	return ResultCode(binary.BigEndian.Uint16(data[0:2])), nil
}

func decodeEquipmentInformation(data []byte) (*types.EquipmentInformation, error) {
	if len(data) < 20 {
		return nil, fmt.Errorf("equipment information too short: %d bytes", len(data))
	}
	version := data[1]

	info := &types.EquipmentInformation{}
	var softwareVersion string
	switch version {
	case 2:
		softwareVersion = decodeAndStrip(data[2:7])
		// The software version field can be truncated; append a 0 to keep
		// it a valid semantic version.
		if strings.HasSuffix(softwareVersion, ".") {
			softwareVersion += "0"
		}
		date, err := time.Parse("02-01-2006", decodeAndStrip(data[7:19]))
		if err != nil {
			return nil, fmt.Errorf("invalid software date: %v", err)
		}
		info.SoftwareDate = &date
	case 3:
		softwareVersion = decodeAndStrip(data[2:19])
	default:
		return nil, fmt.Errorf("invalid message version %d", version)
	}

	parsed, err := semver.NewVersion(softwareVersion)
	if err != nil {
		// Fall back to 0.0.0 when the version string is not a SemVer.
		parsed = semver.New(0, 0, 0, "", "")
	}
	info.SoftwareVersion = parsed

	nameLength := int(data[19])
	if len(data) < 20+nameLength+6 {
		return nil, fmt.Errorf("equipment information too short: %d bytes", len(data))
	}
	info.DeviceName = decodeAndStrip(data[20 : 20+nameLength])

	rest := data[20+nameLength:]
	info.MaxInputs = int(binary.BigEndian.Uint16(rest[0:2]))
	info.MaxGroups = int(rest[2])
	info.MaxSections = int(rest[3])
	info.MaxUsers = int(binary.BigEndian.Uint16(rest[4:6]))

	if version == 3 {
		if len(rest) < 7 {
			return nil, fmt.Errorf("equipment information too short: %d bytes", len(data))
		}
		idLength := int(rest[6])
		if len(rest) < 7+idLength {
			return nil, fmt.Errorf("equipment information too short: %d bytes", len(data))
		}
		info.DeviceID = decodeAndStrip(rest[7 : 7+idLength])
		if len(info.DeviceID) >= 9 {
			info.SerialNumber = info.DeviceID[:9]
		}
		if len(info.DeviceID) >= 12 {
			mac := strings.ToLower(info.DeviceID[len(info.DeviceID)-12:])
			var groups []string
			for i := 0; i < 12; i += 2 {
				groups = append(groups, mac[i:i+2])
			}
			info.MACAddress = strings.Join(groups, ":")
		}
	}

	return info, nil
}

func decodeSectionArrangement(data []byte) (*SectionArrangement, error) {
	arrangement := &SectionArrangement{}
	offset := 0
	number := 1
	for offset < len(data) {
		if len(data) < offset+3 {
			return nil, fmt.Errorf("section descriptor truncated at offset %d", offset)
		}
		version := data[offset]
		var length int
		switch version {
		case 0:
			length = 19
		case 1:
			length = int(data[offset+2]) + 3
		default:
			return nil, fmt.Errorf("invalid message version %d", version)
		}
		if len(data) < offset+length {
			return nil, fmt.Errorf("section descriptor truncated at offset %d", offset)
		}
		record := data[offset : offset+length]

		section := types.Section{
			Number: number,
			Active: record[1] == 1,
		}
		if version == 0 {
			section.Name = decodeAndStrip(record[2:19])
		} else {
			section.Name = decodeAndStrip(record[3 : 3+int(record[2])])
		}
		arrangement.Sections = append(arrangement.Sections, section)

		number++
		offset += length
	}
	return arrangement, nil
}

func decodeSectionStatus(data []byte) (*SectionStatus, error) {
	status := &SectionStatus{}
	for offset := 0; offset+2 <= len(data); offset += 2 {
		armedState := types.SectionArmedState(data[offset+1])
		if !armedState.Valid() {
			return nil, fmt.Errorf("invalid armed state %d for section %d", data[offset+1], data[offset])
		}
		status.Records = append(status.Records, SectionStatusRecord{
			Number:     int(data[offset]),
			ArmedState: armedState,
		})
	}
	return status, nil
}

func decodeReadyToArmSectionStatus(data []byte) (*ReadyToArmSectionStatus, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("ready to arm status too short: %d bytes", len(data))
	}
	return &ReadyToArmSectionStatus{
		Number: int(data[0]),
		State:  types.ReadyToArmState(data[1]),
	}, nil
}

func decodeArmSectionResponse(data []byte) (*ArmSectionResponse, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("arm section response too short: %d bytes", len(data))
	}
	state := types.ArmState(data[1])
	if state < types.ArmNoChange || state > types.ArmFailedNotAuthorized {
		return nil, fmt.Errorf("invalid arm state %d", data[1])
	}
	return &ArmSectionResponse{Number: int(data[0]), State: state}, nil
}

func decodeDisarmSectionResponse(data []byte) (*DisarmSectionResponse, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("disarm section response too short: %d bytes", len(data))
	}
	state := types.DisarmState(data[1])
	if state < types.DisarmNoChange || state > types.DisarmFailedNotAuthorized {
		return nil, fmt.Errorf("invalid disarm state %d", data[1])
	}
	return &DisarmSectionResponse{Number: int(data[0]), State: state}, nil
}

func decodeInputArrangement(data []byte) (*InputArrangement, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("input arrangement too short: %d bytes", len(data))
	}
	if version := data[1]; version != 2 {
		return nil, fmt.Errorf("invalid message version %d", version)
	}

	blockNumber := int(binary.BigEndian.Uint16(data[2:4]))
	if blockNumber == blockTerminator {
		return nil, errEndOfBlocks
	}

	arrangement := &InputArrangement{BlockNumber: blockNumber}
	offset := 4
	for offset < len(data) {
		if len(data) < offset+5 {
			return nil, fmt.Errorf("input descriptor truncated at offset %d", offset)
		}
		nameLength := int(data[offset+4])
		recordEnd := offset + 9 + nameLength
		if len(data) < recordEnd {
			return nil, fmt.Errorf("input descriptor truncated at offset %d", offset)
		}
		record := data[offset:recordEnd]

		input, err := decodeInputRecord(record)
		if err != nil {
			return nil, err
		}
		arrangement.Inputs = append(arrangement.Inputs, input)

		offset = recordEnd
	}
	return arrangement, nil
}

func decodeInputRecord(record []byte) (types.Input, error) {
	number := int(binary.BigEndian.Uint16(record[0:2]))
	if record[2] > byte(types.SensorGlassbreak) {
		return types.Input{}, fmt.Errorf("invalid sensor type %d for input %d", record[2], number)
	}
	if record[3] > byte(types.ReactionDelayedAlarm) {
		return types.Input{}, fmt.Errorf("invalid reaction %d for input %d", record[3], number)
	}

	nameLength := int(record[4])
	input := types.Input{
		Number:     number,
		Type:       types.InputTypeForNumber(number),
		SensorType: types.SensorType(record[2]),
		Reaction:   types.Reaction(record[3]),
		// Inputs start out disabled until a status message says otherwise.
		Status: types.InputDisabled,
	}
	if nameLength > 0 {
		input.Name = decodeAndStrip(record[5 : 5+nameLength])
	}
	input.SectionNumbers = BitPositions(record[5+nameLength:])
	return input, nil
}

func decodeInputStatusRecord(b byte) (InputStatusRecord, error) {
	status := types.InputState(b & 0x0F)
	switch status {
	case types.InputOK, types.InputAlarm, types.InputTamper, types.InputMasking, types.InputDisabled:
	default:
		return InputStatusRecord{}, fmt.Errorf("invalid input state %d", b&0x0F)
	}
	return InputStatusRecord{
		Status:         status,
		Bypassed:       b&0x10 != 0,
		AlarmMemorized: b&0x20 != 0,
		LowBattery:     b&0x40 != 0,
		Supervision:    b&0x80 != 0,
	}, nil
}

func decodeInputStatus(data []byte) (*InputStatus, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("input status too short: %d bytes", len(data))
	}
	if version := data[1]; version != 2 {
		return nil, fmt.Errorf("invalid message version %d", version)
	}

	status := &InputStatus{}
	for index, b := range data[2:] {
		number := TranslateInputNumber(index)
		if number == NotApplicable {
			continue
		}
		record, err := decodeInputStatusRecord(b)
		if err != nil {
			return nil, err
		}
		record.Number = number
		status.Records = append(status.Records, record)
	}
	return status, nil
}

func decodeInputStatusUpdate(data []byte) (*InputStatusUpdate, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("input status update too short: %d bytes", len(data))
	}
	if version := data[1]; version != 2 {
		return nil, fmt.Errorf("invalid message version %d", version)
	}
	record, err := decodeInputStatusRecord(data[4])
	if err != nil {
		return nil, err
	}
	record.Number = int(binary.BigEndian.Uint16(data[2:4]))
	return &InputStatusUpdate{InputStatusRecord: record}, nil
}

func decodeBypassInputResult(data []byte) (*BypassInputResult, error) {
	if len(data) < 3 {
		return nil, fmt.Errorf("bypass result too short: %d bytes", len(data))
	}
	return &BypassInputResult{
		Number: int(binary.BigEndian.Uint16(data[0:2])),
		Result: data[2],
	}, nil
}

func decodeUnbypassInputResult(data []byte) (*UnbypassInputResult, error) {
	if len(data) < 3 {
		return nil, fmt.Errorf("unbypass result too short: %d bytes", len(data))
	}
	return &UnbypassInputResult{
		Number: int(binary.BigEndian.Uint16(data[0:2])),
		Result: data[2],
	}, nil
}

func decodeOutputArrangement(data []byte) (*OutputArrangement, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("output arrangement too short: %d bytes", len(data))
	}
	if version := data[1]; version != 1 {
		return nil, fmt.Errorf("invalid message version %d", version)
	}

	blockNumber := int(binary.BigEndian.Uint16(data[2:4]))
	if blockNumber == blockTerminator {
		return nil, errEndOfBlocks
	}

	arrangement := &OutputArrangement{BlockNumber: blockNumber}
	offset := 4
	for offset < len(data) {
		if len(data) < offset+4 {
			return nil, fmt.Errorf("output descriptor truncated at offset %d", offset)
		}
		nameLength := int(data[offset+3])
		recordEnd := offset + 8 + nameLength
		if len(data) < recordEnd {
			return nil, fmt.Errorf("output descriptor truncated at offset %d", offset)
		}
		record := data[offset:recordEnd]

		number := int(binary.BigEndian.Uint16(record[0:2]))
		if record[2] > byte(types.OutputFollowInput) {
			return nil, fmt.Errorf("invalid output type %d for output %d", record[2], number)
		}
		output := types.Output{
			Number: number,
			Type:   types.OutputType(record[2]),
		}
		if nameLength > 0 {
			output.Name = decodeAndStrip(record[4 : 4+nameLength])
		}
		// One reserved byte sits between the name and the section mask.
		output.SectionNumbers = BitPositions(record[5+nameLength:])
		arrangement.Outputs = append(arrangement.Outputs, output)

		offset = recordEnd
	}
	return arrangement, nil
}

func decodeDeviceStatus(data []byte) (*types.DeviceStatus, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("device status too short: %d bytes", len(data))
	}
	if version := data[1]; version != 2 {
		return nil, fmt.Errorf("invalid message version %d", version)
	}

	var records []types.DeviceStatusRecord
	for offset := 2; offset+2 <= len(data); offset += 2 {
		records = append(records, types.DeviceStatusRecord(binary.BigEndian.Uint16(data[offset:offset+2])))
	}
	// Control panel + 15 IO + 16 keyboard + 16 Wiegand + KNX + 2 UWI, plus
	// an optional redundant unit record.
	if len(records) < 51 {
		return nil, fmt.Errorf("device status has %d records, expected at least 51", len(records))
	}

	status := &types.DeviceStatus{
		ControlPanel:    records[0],
		IODevices:       records[1:16],
		KeyboardDevices: records[16:32],
		WiegandDevices:  records[32:48],
		KNXDevice:       records[48],
		UWIDevices:      records[49:51],
	}
	if len(records) >= 52 {
		redundant := records[51]
		status.RedundantDevice = &redundant
	}
	return status, nil
}

func decodeEventRecord(data []byte) (*types.EventRecord, error) {
	if len(data) < 10 {
		return nil, fmt.Errorf("event record too short: %d bytes", len(data))
	}
	if version := data[1]; version != 3 {
		return nil, fmt.Errorf("invalid message version %d", version)
	}

	event := &types.EventRecord{
		EventNumber: int(binary.BigEndian.Uint16(data[2:4])),
		// Timestamp bytes: year since 1900, zero-based month, day, hour,
		// minute, second.
		Timestamp: time.Date(1900+int(data[4]), time.Month(data[5]+1), int(data[6]),
			int(data[7]), int(data[8]), int(data[9]), 0, time.UTC),
	}

	rest := data[10:]
	var err error
	if event.Description, rest, err = takeString(rest, 0); err != nil {
		return nil, err
	}
	if event.UserNumber, event.UserName, rest, err = takeNumberAndName(rest); err != nil {
		return nil, err
	}
	if event.InputNumber, event.InputName, rest, err = takeNumberAndName(rest); err != nil {
		return nil, err
	}
	if event.DeviceNumber, event.DeviceName, rest, err = takeNumberAndName(rest); err != nil {
		return nil, err
	}

	if len(rest) < 7 {
		return nil, fmt.Errorf("event record truncated")
	}
	event.BusNumber = int(rest[0])
	event.SectionNumbers = BitPositions(rest[1:5])
	event.SIACode = types.SIACode(decodeAndStrip(rest[5:7]))

	return event, nil
}

// takeString reads a length-prefixed string at the given offset and returns
// the remainder of the data after it.
func takeString(data []byte, offset int) (string, []byte, error) {
	if len(data) < offset+1 {
		return "", nil, fmt.Errorf("event record truncated")
	}
	length := int(data[offset])
	if len(data) < offset+1+length {
		return "", nil, fmt.Errorf("event record truncated")
	}
	value := ""
	if length > 0 {
		value = decodeAndStrip(data[offset+1 : offset+1+length])
	}
	return value, data[offset+1+length:], nil
}

// takeNumberAndName reads a 2-byte number followed by a length-prefixed name.
func takeNumberAndName(data []byte) (int, string, []byte, error) {
	if len(data) < 3 {
		return 0, "", nil, fmt.Errorf("event record truncated")
	}
	number := int(binary.BigEndian.Uint16(data[0:2]))
	name, rest, err := takeString(data, 2)
	if err != nil {
		return 0, "", nil, err
	}
	return number, name, rest, nil
}

package unii

import "fmt"

// Command is a 16-bit UNii command code.
type Command uint16

const (
	// Connection setup
	CmdConnectionRequest         Command = 0x0001
	CmdConnectionRequestResponse Command = 0x0002
	CmdConnectionRequestDenied   Command = 0x0003
	CmdNormalDisconnect          Command = 0x0014

	// Operational commands
	CmdPollAliveRequest               Command = 0x0012
	CmdPollAliveResponse              Command = 0x0013
	CmdGeneralResponse                Command = 0x0101
	CmdEventOccurred                  Command = 0x0102
	CmdResponseEventOccurred          Command = 0x0103
	CmdFlushEventBuffer               Command = 0x0104
	CmdInputStatusChanged             Command = 0x0105
	CmdRequestInputStatus             Command = 0x0106
	CmdDeviceStatusChanged            Command = 0x0107
	CmdRequestDeviceStatus            Command = 0x0108
	CmdClearAlarmMemory               Command = 0x0109
	CmdRequestReadyToArmSections      Command = 0x0110
	CmdResponseReadyToArmSections     Command = 0x0111
	CmdRequestArmSection              Command = 0x0112
	CmdResponseArmSection             Command = 0x0113
	CmdRequestDisarmSection           Command = 0x0114
	CmdResponseDisarmSection          Command = 0x0115
	CmdRequestSectionStatus           Command = 0x0116
	CmdResponseSectionStatus          Command = 0x0117
	CmdRequestBypassInput             Command = 0x0118
	CmdResponseBypassInput            Command = 0x0119
	CmdRequestUnbypassInput           Command = 0x011A
	CmdResponseUnbypassInput          Command = 0x011B
	CmdRequestSetOutput               Command = 0x011C
	CmdResponseSetOutput              Command = 0x011D
	CmdRequestOutputStatus            Command = 0x011E
	CmdResponseOutputStatus           Command = 0x011F
	CmdRequestResetAlarm              Command = 0x0122
	CmdResponseResetAlarm             Command = 0x0123
	CmdExitEntryTimer                 Command = 0x0124
	CmdInputStatusUpdate              Command = 0x0125

	// Configuration commands
	CmdRequestSectionArrangement      Command = 0x0130
	CmdResponseSectionArrangement     Command = 0x0131
	CmdRequestGroupArrangement        Command = 0x0132
	CmdResponseGroupArrangement       Command = 0x0133
	CmdRequestOutputArrangement       Command = 0x0134
	CmdResponseOutputArrangement      Command = 0x0135
	CmdRequestInputArrangement        Command = 0x0140
	CmdResponseInputArrangement       Command = 0x0141
	CmdRequestEquipmentInformation    Command = 0x0142
	CmdResponseEquipmentInformation   Command = 0x0143
	CmdRequestDateAndTime             Command = 0x0144
	CmdResponseDateAndTime            Command = 0x0145
	CmdWriteDateAndTime               Command = 0x0146
	CmdResponseWriteDateAndTime       Command = 0x0147
)

var commandNames = map[Command]string{
	CmdConnectionRequest:            "Connection Request",
	CmdConnectionRequestResponse:    "Connection Request Response",
	CmdConnectionRequestDenied:      "Connection Request Denied",
	CmdNormalDisconnect:             "Normal Disconnect",
	CmdPollAliveRequest:             "Poll Alive Request",
	CmdPollAliveResponse:            "Poll Alive Response",
	CmdGeneralResponse:              "General Response",
	CmdEventOccurred:                "Event Occurred",
	CmdResponseEventOccurred:        "Response Event Occurred",
	CmdFlushEventBuffer:             "Flush Event Buffer",
	CmdInputStatusChanged:           "Input Status Changed",
	CmdRequestInputStatus:           "Request Input Status",
	CmdDeviceStatusChanged:          "Device Status Changed",
	CmdRequestDeviceStatus:          "Request Device Status",
	CmdClearAlarmMemory:             "Clear Alarm Memory",
	CmdRequestReadyToArmSections:    "Request Ready To Arm Sections",
	CmdResponseReadyToArmSections:   "Response Ready To Arm Sections",
	CmdRequestArmSection:            "Request Arm Section",
	CmdResponseArmSection:           "Response Arm Section",
	CmdRequestDisarmSection:         "Request Disarm Section",
	CmdResponseDisarmSection:        "Response Disarm Section",
	CmdRequestSectionStatus:         "Request Section Status",
	CmdResponseSectionStatus:        "Response Section Status",
	CmdRequestBypassInput:           "Request To Bypass An Input",
	CmdResponseBypassInput:          "Response Request To Bypass An Input",
	CmdRequestUnbypassInput:         "Request To Unbypass An Input",
	CmdResponseUnbypassInput:        "Response Request To Unbypass An Input",
	CmdRequestSetOutput:             "Request To Set Output",
	CmdResponseSetOutput:            "Response Request To Set Output",
	CmdRequestOutputStatus:          "Request Output Status",
	CmdResponseOutputStatus:         "Response Request Output Status",
	CmdRequestResetAlarm:            "Request To Reset Alarm",
	CmdResponseResetAlarm:           "Response Request To Reset Alarm",
	CmdExitEntryTimer:               "Exit/Entry Timer",
	CmdInputStatusUpdate:            "Input Status Update",
	CmdRequestOutputArrangement:     "Request Output Arrangement",
	CmdResponseOutputArrangement:    "Response Request Output Arrangement",
	CmdRequestSectionArrangement:    "Request Section Arrangement",
	CmdResponseSectionArrangement:   "Response Request Section Arrangement",
	CmdRequestGroupArrangement:      "Request Group Arrangement",
	CmdResponseGroupArrangement:     "Response Request Group Arrangement",
	CmdRequestInputArrangement:      "Request Input Arrangement",
	CmdResponseInputArrangement:     "Response Request Input Arrangement",
	CmdRequestEquipmentInformation:  "Request Equipment Information",
	CmdResponseEquipmentInformation: "Response Request Equipment Information",
	CmdRequestDateAndTime:           "Request Date And Time",
	CmdResponseDateAndTime:          "Response Request Date And Time",
	CmdWriteDateAndTime:             "Write Date And Time",
	CmdResponseWriteDateAndTime:     "Response Write Date And Time",
}

// Known reports whether the command code is part of the vendor enumeration.
// Unknown codes decode as raw data rather than failing the whole message.
func (c Command) Known() bool {
	_, ok := commandNames[c]
	return ok
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Unknown Command(0x%04X)", uint16(c))
}

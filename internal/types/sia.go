package types

// SIACode is a two-letter SIA DC-05 alarm category code as reported in event
// records. Unknown codes are kept as-is.
type SIACode string

const (
	SIABurglaryAlarm        SIACode = "BA"
	SIABurglaryRestoral     SIACode = "BR"
	SIAFireAlarm            SIACode = "FA"
	SIAFireRestoral         SIACode = "FR"
	SIAHoldupAlarm          SIACode = "HA"
	SIAHoldupRestoral       SIACode = "HR"
	SIAGasAlarm             SIACode = "GA"
	SIAGasRestoral          SIACode = "GR"
	SIAMedicalAlarm         SIACode = "MA"
	SIAMedicalRestoral      SIACode = "MR"
	SIAWaterAlarm           SIACode = "WA"
	SIAWaterRestoral        SIACode = "WR"
	SIATamper               SIACode = "TA"
	SIATamperRestoral       SIACode = "TR"
	SIAOpeningReport        SIACode = "OP"
	SIAClosingReport        SIACode = "CL"
	SIABypass               SIACode = "UB"
	SIAUnbypass             SIACode = "UU"
	SIAACTrouble            SIACode = "AT"
	SIAACRestoral           SIACode = "AR"
	SIALowBattery           SIACode = "YT"
	SIALowBatteryRestoral   SIACode = "YR"
	SIARemoteProgramSuccess SIACode = "RS"
	SIATestReport           SIACode = "RP"
)

var siaDescriptions = map[SIACode]string{
	SIABurglaryAlarm:        "Burglary Alarm",
	SIABurglaryRestoral:     "Burglary Restoral",
	SIAFireAlarm:            "Fire Alarm",
	SIAFireRestoral:         "Fire Restoral",
	SIAHoldupAlarm:          "Holdup Alarm",
	SIAHoldupRestoral:       "Holdup Restoral",
	SIAGasAlarm:             "Gas Alarm",
	SIAGasRestoral:          "Gas Restoral",
	SIAMedicalAlarm:         "Medical Alarm",
	SIAMedicalRestoral:      "Medical Restoral",
	SIAWaterAlarm:           "Water Alarm",
	SIAWaterRestoral:        "Water Restoral",
	SIATamper:               "Tamper",
	SIATamperRestoral:       "Tamper Restoral",
	SIAOpeningReport:        "Opening Report",
	SIAClosingReport:        "Closing Report",
	SIABypass:               "Untyped Zone Bypass",
	SIAUnbypass:             "Untyped Zone Unbypass",
	SIAACTrouble:            "AC Trouble",
	SIAACRestoral:           "AC Restoral",
	SIALowBattery:           "System Low Battery",
	SIALowBatteryRestoral:   "System Battery Restoral",
	SIARemoteProgramSuccess: "Remote Program Success",
	SIATestReport:           "Automatic Test Report",
}

// Description returns a human readable description, or the raw code when it
// is not in the table.
func (c SIACode) Description() string {
	if d, ok := siaDescriptions[c]; ok {
		return d
	}
	return string(c)
}

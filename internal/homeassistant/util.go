package homeassistant

import (
	"strings"

	"github.com/daemonp/unii2mqtt/internal/types"
)

// deviceClass picks the Home Assistant device class for an input: a class
// from the configuration wins, then the sensor type, then a guess from the
// input name.
func (ha *HomeAssistant) deviceClass(input *types.Input) string {
	for _, inputConfig := range ha.config.Inputs {
		if inputConfig.Number == input.Number && inputConfig.DeviceClass != "" {
			return inputConfig.DeviceClass
		}
	}

	switch input.SensorType {
	case types.SensorFire, types.SensorEN54Fire, types.SensorEN54FireMCP:
		return "smoke"
	case types.SensorGas:
		return "gas"
	case types.SensorWater:
		return "moisture"
	case types.SensorTamper:
		return "tamper"
	}

	name := strings.ToLower(input.Name)
	if strings.Contains(name, "pir") || strings.Contains(name, "motion") {
		return "motion"
	}
	if strings.Contains(name, "door") {
		return "door"
	}
	if strings.Contains(name, "window") {
		return "window"
	}
	if strings.Contains(name, "smoke") || strings.Contains(name, "fire") {
		return "smoke"
	}

	return "motion"
}

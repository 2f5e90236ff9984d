package homeassistant

import (
	"fmt"

	"github.com/daemonp/unii2mqtt/internal/config"
	"github.com/daemonp/unii2mqtt/internal/log"
	"github.com/daemonp/unii2mqtt/internal/mqtt"
	"github.com/daemonp/unii2mqtt/internal/panel"
	"github.com/daemonp/unii2mqtt/internal/types"
	"github.com/daemonp/unii2mqtt/internal/util"
)

type HomeAssistant struct {
	config *config.Config
	mqtt   mqtt.MQTTClient
	panel  *panel.Panel
	log    *log.Logger
}

func New(cfg *config.Config, mqttClient mqtt.MQTTClient, p *panel.Panel, logger *log.Logger) *HomeAssistant {
	ha := &HomeAssistant{
		config: cfg,
		mqtt:   mqttClient,
		panel:  p,
		log:    logger,
	}
	// A panel reload means sections and inputs may have been renamed or
	// added, so discovery is published again.
	p.OnReload(ha.publishDiscoveryConfig)
	return ha
}

func (ha *HomeAssistant) Start() {
	ha.log.Info("Starting Home Assistant integration")
	ha.publishDiscoveryConfig()
}

func (ha *HomeAssistant) publishDiscoveryConfig() {
	ha.publishPanelConfig()

	for _, section := range ha.panel.GetSections() {
		ha.publishSectionConfig(section)
	}

	for _, input := range ha.panel.GetInputs() {
		ha.publishInputConfig(input)
	}
}

func (ha *HomeAssistant) publishPanelConfig() {
	info := ha.panel.GetEquipmentInformation()
	if info == nil {
		return
	}
	cfg := map[string]interface{}{
		"name":         fmt.Sprintf("Alphatronics %s", info.DeviceName),
		"identifiers":  []string{info.SerialNumber},
		"manufacturer": "Alphatronics",
		"model":        info.DeviceName,
	}
	if info.SoftwareVersion != nil {
		cfg["sw_version"] = info.SoftwareVersion.String()
	}

	ha.publishConfig("binary_sensor", "panel", "connectivity", cfg)
}

func (ha *HomeAssistant) publishSectionConfig(section *types.Section) {
	slug := util.Slugify(section.Name)
	cfg := map[string]interface{}{
		"name":              section.Name,
		"unique_id":         fmt.Sprintf("%s_section_%s", ha.mqtt.GetPrefix(), slug),
		"state_topic":       ha.mqtt.Topics().Section(section),
		"command_topic":     ha.mqtt.Topics().SectionCommand(section),
		"payload_disarm":    "disarm",
		"payload_arm_away":  "arm",
		"code_arm_required": false,
		"value_template":    "{{ value_json.armed_state }}",
	}

	ha.publishConfig("alarm_control_panel", slug, "", cfg)
}

func (ha *HomeAssistant) publishInputConfig(input *types.Input) {
	slug := util.Slugify(input.Name)
	cfg := map[string]interface{}{
		"name":           input.Name,
		"unique_id":      fmt.Sprintf("%s_input_%s", ha.mqtt.GetPrefix(), slug),
		"state_topic":    ha.mqtt.Topics().Input(input),
		"device_class":   ha.deviceClass(input),
		"value_template": "{{ value_json.status }}",
		"payload_on":     types.InputAlarm.String(),
		"payload_off":    types.InputOK.String(),
	}

	ha.publishConfig("binary_sensor", slug, "", cfg)
}

func (ha *HomeAssistant) publishConfig(component, objectID, deviceClass string, cfg map[string]interface{}) {
	topic := fmt.Sprintf("%s/%s/%s/%s/config", ha.config.HomeAssistant.Prefix, component, ha.mqtt.GetPrefix(), objectID)

	if deviceClass != "" {
		cfg["device_class"] = deviceClass
	}

	ha.mqtt.Publish(topic, cfg, true)
}

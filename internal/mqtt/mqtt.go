package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/daemonp/unii2mqtt/internal/config"
	"github.com/daemonp/unii2mqtt/internal/log"
	"github.com/daemonp/unii2mqtt/internal/panel"
	"github.com/daemonp/unii2mqtt/internal/types"
)

const (
	offlinePayload = "offline"
	onlinePayload  = "online"
)

type MQTT struct {
	config *config.MQTTConfig
	panel  *panel.Panel
	log    *log.Logger
	client mqtt.Client
	topics *Topics
}

func NewMQTT(cfg *config.MQTTConfig, p *panel.Panel, logger *log.Logger) *MQTT {
	m := &MQTT{
		config: cfg,
		panel:  p,
		log:    logger,
		topics: NewTopics(cfg.Prefix),
	}

	p.OnSectionChange(m.PublishSectionStatus)
	p.OnInputChange(m.PublishInputStatus)
	p.OnEvent(m.PublishEvent)
	p.OnDeviceStatus(m.PublishDeviceStatus)
	p.OnConnectionChange(m.publishPanelConnection)

	return m
}

func (m *MQTT) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", m.config.Host, m.config.Port))
	opts.SetClientID(m.config.ClientID)
	opts.SetUsername(m.config.Username)
	opts.SetPassword(m.config.Password)
	opts.SetCleanSession(m.config.Clean)
	opts.SetKeepAlive(time.Duration(m.config.Keepalive) * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(m.onConnect)
	opts.SetConnectionLostHandler(m.onDisconnect)

	opts.SetWill(m.topics.Status(), offlinePayload, byte(m.config.QOS), m.config.Retain)

	m.client = mqtt.NewClient(opts)

	if token := m.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %v", token.Error())
	}

	m.log.Info("Connected to MQTT broker: %s:%d", m.config.Host, m.config.Port)
	return nil
}

func (m *MQTT) onConnect(client mqtt.Client) {
	m.log.Info("MQTT connection established")
	m.publishOnlineStatus()
	m.subscribeTopics()
	m.publishPanelStatus()
	m.publishAllStates()
}

func (m *MQTT) onDisconnect(client mqtt.Client, err error) {
	m.log.Error("MQTT connection lost: %v", err)
}

func (m *MQTT) subscribeTopics() {
	var topics []string
	for _, section := range m.panel.GetSections() {
		topics = append(topics, m.topics.SectionCommand(section))
	}
	for _, input := range m.panel.GetInputs() {
		topics = append(topics, m.topics.InputCommand(input))
	}

	for _, topic := range topics {
		token := m.client.Subscribe(topic, byte(m.config.QOS), m.handleMessage)
		if token.Wait() && token.Error() != nil {
			m.log.Error("Failed to subscribe to topic %s: %v", topic, token.Error())
		} else {
			m.log.Debug("Subscribed to topic: %s", topic)
		}
	}
}

func (m *MQTT) handleMessage(client mqtt.Client, msg mqtt.Message) {
	topic := msg.Topic()
	payload := string(msg.Payload())

	m.log.Debug("Received message on topic %s: %s", topic, payload)

	for _, section := range m.panel.GetSections() {
		if topic == m.topics.SectionCommand(section) {
			m.handleSectionCommand(section, payload)
			return
		}
	}
	for _, input := range m.panel.GetInputs() {
		if topic == m.topics.InputCommand(input) {
			m.handleInputCommand(input, payload)
			return
		}
	}
	m.log.Warn("Received message on unknown topic: %s", topic)
}

func (m *MQTT) handleSectionCommand(section *types.Section, command string) {
	switch command {
	case "arm", "arm_away":
		if m.panel.Arm(section.Number) {
			m.PublishSectionStatus(section)
		}
	case "disarm":
		if m.panel.Disarm(section.Number) {
			m.PublishSectionStatus(section)
		}
	default:
		m.log.Warn("Unknown section command: %s", command)
	}
}

func (m *MQTT) handleInputCommand(input *types.Input, command string) {
	switch command {
	case "bypass":
		if m.panel.Bypass(input.Number) {
			m.PublishInputStatus(input)
		}
	case "unbypass":
		if m.panel.Unbypass(input.Number) {
			m.PublishInputStatus(input)
		}
	default:
		m.log.Warn("Unknown input command: %s", command)
	}
}

func (m *MQTT) publishOnlineStatus() {
	m.publish(m.topics.Status(), onlinePayload, true)
}

func (m *MQTT) publishPanelConnection(connected bool) {
	if connected {
		m.publishPanelStatus()
		m.publishAllStates()
		return
	}
	m.publish(m.topics.Status(), offlinePayload, true)
}

func (m *MQTT) publishPanelStatus() {
	info := m.panel.GetEquipmentInformation()
	if info == nil {
		return
	}
	status := map[string]interface{}{
		"device_name":   info.DeviceName,
		"serial_number": info.SerialNumber,
		"mac_address":   info.MACAddress,
		"max_inputs":    info.MaxInputs,
		"max_sections":  info.MaxSections,
		"max_users":     info.MaxUsers,
	}
	if info.SoftwareVersion != nil {
		status["software_version"] = info.SoftwareVersion.String()
	}
	m.publish(m.topics.Config(), status, true)
}

func (m *MQTT) publishAllStates() {
	for _, section := range m.panel.GetSections() {
		m.PublishSectionStatus(section)
	}
	for _, input := range m.panel.GetInputs() {
		m.PublishInputStatus(input)
	}
	if status := m.panel.GetDeviceStatus(); status != nil {
		m.PublishDeviceStatus(status)
	}
}

func (m *MQTT) PublishSectionStatus(section *types.Section) {
	status := map[string]interface{}{
		"name":        section.Name,
		"number":      section.Number,
		"armed_state": section.ArmedState.String(),
	}
	m.publish(m.topics.Section(section), status, true)
}

func (m *MQTT) PublishInputStatus(input *types.Input) {
	sections := make([]int, 0, len(input.Sections))
	for _, section := range input.Sections {
		sections = append(sections, section.Number)
	}
	status := map[string]interface{}{
		"name":        input.Name,
		"number":      input.Number,
		"type":        input.Type.String(),
		"sensor_type": input.SensorType.String(),
		"status":      input.Status.String(),
		"bypassed":    input.Bypassed,
		"sections":    sections,
	}
	m.publish(m.topics.Input(input), status, true)
}

func (m *MQTT) PublishDeviceStatus(status *types.DeviceStatus) {
	m.publish(m.topics.DeviceStatus(), map[string]interface{}{
		"control_panel": status.ControlPanel.String(),
	}, true)
}

func (m *MQTT) PublishEvent(event *types.EventRecord) {
	payload := map[string]interface{}{
		"event_number": event.EventNumber,
		"timestamp":    event.Timestamp.Format(time.RFC3339),
		"description":  event.Description,
		"sia_code":     string(event.SIACode),
		"sia_name":     event.SIACode.Description(),
		"sections":     event.SectionNumbers,
	}
	if event.InputName != "" {
		payload["input_number"] = event.InputNumber
		payload["input_name"] = event.InputName
	}
	if event.UserName != "" {
		payload["user_number"] = event.UserNumber
		payload["user_name"] = event.UserName
	}
	m.publish(m.topics.Log(), payload, m.config.RetainLog)
}

func (m *MQTT) publish(topic string, message interface{}, retain bool) {
	// Panel callbacks fire as soon as the handshake runs, which can be
	// before the broker connection exists. Those messages are dropped; the
	// on-connect handler republishes the full state anyway.
	if m.client == nil {
		m.log.Debug("Not connected to MQTT broker yet, dropping message for topic %s", topic)
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		m.log.Error("Failed to marshal message for topic %s: %v", topic, err)
		return
	}

	token := m.client.Publish(topic, byte(m.config.QOS), retain, payload)
	if token.Wait() && token.Error() != nil {
		m.log.Error("Failed to publish message to topic %s: %v", topic, token.Error())
	} else {
		m.log.Debug("Published message to topic: %s", topic)
	}
}

func (m *MQTT) GetPrefix() string {
	return m.config.Prefix
}

func (m *MQTT) Topics() *Topics {
	return m.topics
}

// Publish sends a raw payload, used by the discovery layer.
func (m *MQTT) Publish(topic string, payload interface{}, retain bool) {
	m.publish(topic, payload, retain)
}

func (m *MQTT) Close() {
	if m.client != nil && m.client.IsConnected() {
		m.publish(m.topics.Status(), offlinePayload, true)
		m.client.Disconnect(250)
	}
}

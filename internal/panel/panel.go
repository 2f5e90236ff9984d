package panel

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/daemonp/unii2mqtt/internal/config"
	"github.com/daemonp/unii2mqtt/internal/log"
	"github.com/daemonp/unii2mqtt/internal/types"
	"github.com/daemonp/unii2mqtt/internal/unii"
)

// Panel wraps the alarm panel client with configuration-driven naming, user
// code lookup and the callbacks the MQTT layer consumes.
type Panel struct {
	config *config.Config
	log    *log.Logger
	client *unii.Client

	mu           sync.Mutex
	onSection    []func(*types.Section)
	onInput      []func(*types.Input)
	onEvent      []func(*types.EventRecord)
	onDevice     []func(*types.DeviceStatus)
	onConnection []func(bool)
	onReload     []func()
}

func NewPanel(cfg *config.Config, logger *log.Logger) (*Panel, error) {
	sharedKey, err := cfg.UNii.SharedKey16()
	if err != nil {
		return nil, fmt.Errorf("invalid shared key: %v", err)
	}

	p := &Panel{
		config: cfg,
		log:    logger,
	}
	p.client = unii.NewClient(cfg.UNii.Host, cfg.UNii.Port, sharedKey, logger)
	p.client.Subscribe(p.handleUpdate)
	return p, nil
}

func (p *Panel) Connect() error {
	p.log.Info("Connecting to panel...")
	if err := p.client.Connect(); err != nil {
		p.log.Error("Failed to connect to panel: %v", err)
		return fmt.Errorf("failed to connect to panel: %v", err)
	}
	p.log.Info("Connected to panel")
	return nil
}

func (p *Panel) Disconnect() {
	p.log.Info("Disconnecting from panel...")
	if err := p.client.Disconnect(); err != nil {
		p.log.Warn("Disconnect from panel: %v", err)
	}
	p.log.Info("Disconnected from panel")
}

func (p *Panel) IsConnected() bool {
	return p.client.IsConnected()
}

// OnSectionChange registers a callback for section status changes.
func (p *Panel) OnSectionChange(callback func(*types.Section)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSection = append(p.onSection, callback)
}

// OnInputChange registers a callback for input status changes.
func (p *Panel) OnInputChange(callback func(*types.Input)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onInput = append(p.onInput, callback)
}

// OnEvent registers a callback for panel log events.
func (p *Panel) OnEvent(callback func(*types.EventRecord)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEvent = append(p.onEvent, callback)
}

// OnDeviceStatus registers a callback for device status changes.
func (p *Panel) OnDeviceStatus(callback func(*types.DeviceStatus)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDevice = append(p.onDevice, callback)
}

// OnConnectionChange registers a callback fired with true when a session is
// established and false when it ends.
func (p *Panel) OnConnectionChange(callback func(bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onConnection = append(p.onConnection, callback)
}

// OnReload registers a callback fired when the panel reports changed
// equipment information, meaning the arrangement must be re-announced.
func (p *Panel) OnReload(callback func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReload = append(p.onReload, callback)
}

// handleUpdate translates client notifications into panel callbacks.
func (p *Panel) handleUpdate(command unii.Command, data interface{}) {
	switch command {
	case unii.CmdConnectionRequestResponse:
		p.applyConfigNames()
		for _, callback := range p.connectionCallbacks() {
			callback(true)
		}
	case unii.CmdNormalDisconnect:
		for _, callback := range p.connectionCallbacks() {
			callback(false)
		}
	case unii.CmdRequestEquipmentInformation:
		// The client synthesizes this notification when the panel was
		// reprogrammed.
		p.applyConfigNames()
		p.mu.Lock()
		callbacks := append([]func(){}, p.onReload...)
		p.mu.Unlock()
		for _, callback := range callbacks {
			callback()
		}
	case unii.CmdResponseSectionStatus:
		if status, ok := data.(*unii.SectionStatus); ok {
			for _, record := range status.Records {
				p.notifySection(record.Number)
			}
		}
	case unii.CmdInputStatusChanged:
		if status, ok := data.(*unii.InputStatus); ok {
			for _, record := range status.Records {
				p.notifyInput(record.Number)
			}
		}
	case unii.CmdInputStatusUpdate:
		if update, ok := data.(*unii.InputStatusUpdate); ok {
			p.notifyInput(update.Number)
		}
	case unii.CmdEventOccurred:
		if event, ok := data.(*types.EventRecord); ok {
			p.mu.Lock()
			callbacks := append([]func(*types.EventRecord){}, p.onEvent...)
			p.mu.Unlock()
			for _, callback := range callbacks {
				callback(event)
			}
		}
	case unii.CmdDeviceStatusChanged:
		if status, ok := data.(*types.DeviceStatus); ok {
			p.mu.Lock()
			callbacks := append([]func(*types.DeviceStatus){}, p.onDevice...)
			p.mu.Unlock()
			for _, callback := range callbacks {
				callback(status)
			}
		}
	}
}

func (p *Panel) connectionCallbacks() []func(bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]func(bool){}, p.onConnection...)
}

func (p *Panel) notifySection(number int) {
	section := p.client.Section(number)
	if section == nil {
		return
	}
	p.log.Info("Section %s (%d) status changed to %s", section.Name, section.Number, section.ArmedState)
	p.mu.Lock()
	callbacks := append([]func(*types.Section){}, p.onSection...)
	p.mu.Unlock()
	for _, callback := range callbacks {
		callback(section)
	}
}

func (p *Panel) notifyInput(number int) {
	input := p.client.Input(number)
	if input == nil {
		return
	}
	p.log.Info("Input %s (%d) status changed to %s", input.Name, input.Number, input.Status)
	p.mu.Lock()
	callbacks := append([]func(*types.Input){}, p.onInput...)
	p.mu.Unlock()
	for _, callback := range callbacks {
		callback(input)
	}
}

// applyConfigNames overrides panel-provided names with the ones from the
// configuration file.
func (p *Panel) applyConfigNames() {
	for _, sectionConfig := range p.config.Sections {
		if sectionConfig.Name == "" {
			continue
		}
		if section := p.client.Section(sectionConfig.Number); section != nil {
			section.Name = sectionConfig.Name
		}
	}
	for _, inputConfig := range p.config.Inputs {
		if inputConfig.Name == "" {
			continue
		}
		if input := p.client.Input(inputConfig.Number); input != nil {
			input.Name = inputConfig.Name
		}
	}
}

// Arm arms a section using its configured user code.
func (p *Panel) Arm(number int) bool {
	return p.client.ArmSection(number, p.config.SectionCode(number))
}

// Disarm disarms a section using its configured user code.
func (p *Panel) Disarm(number int) bool {
	return p.client.DisarmSection(number, p.config.SectionCode(number))
}

// Bypass bypasses an input using the global user code.
func (p *Panel) Bypass(number int) bool {
	return p.client.BypassInput(number, p.config.UNii.Code)
}

// Unbypass lifts the bypass on an input using the global user code.
func (p *Panel) Unbypass(number int) bool {
	return p.client.UnbypassInput(number, p.config.UNii.Code)
}

// GetSections returns the active sections sorted by number.
func (p *Panel) GetSections() []*types.Section {
	sections := make([]*types.Section, 0)
	for _, section := range p.client.Sections() {
		if section.Active {
			sections = append(sections, section)
		}
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].Number < sections[j].Number })
	return sections
}

// GetInputs returns the known inputs sorted by number.
func (p *Panel) GetInputs() []*types.Input {
	inputs := make([]*types.Input, 0)
	for _, input := range p.client.Inputs() {
		inputs = append(inputs, input)
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Number < inputs[j].Number })
	return inputs
}

// GetOutputs returns the known outputs sorted by number.
func (p *Panel) GetOutputs() []*types.Output {
	outputs := make([]*types.Output, 0)
	for _, output := range p.client.Outputs() {
		outputs = append(outputs, output)
	}
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].Number < outputs[j].Number })
	return outputs
}

func (p *Panel) GetEquipmentInformation() *types.EquipmentInformation {
	return p.client.EquipmentInformation()
}

func (p *Panel) GetDeviceStatus() *types.DeviceStatus {
	return p.client.DeviceStatus()
}

// SetCachedData seeds the panel state from a cached arrangement snapshot.
func (p *Panel) SetCachedData(data *types.CacheData) {
	p.client.Seed(data.Sections, data.Inputs, data.Outputs)
	p.applyConfigNames()
}

// GetCacheableData snapshots the arrangement for persistence.
func (p *Panel) GetCacheableData() *types.CacheData {
	data := &types.CacheData{
		Equipment:  p.client.EquipmentInformation(),
		LastUpdate: time.Now(),
	}
	for _, section := range p.GetSections() {
		data.Sections = append(data.Sections, *section)
	}
	for _, input := range p.GetInputs() {
		data.Inputs = append(data.Inputs, *input)
	}
	for _, output := range p.GetOutputs() {
		data.Outputs = append(data.Outputs, *output)
	}
	return data
}

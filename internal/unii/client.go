package unii

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/daemonp/unii2mqtt/internal/log"
	"github.com/daemonp/unii2mqtt/internal/types"
)

// ConnectionState reflects where the client is in the session lifecycle.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateHandshaking
	StateConnected
	StateDisconnecting
	// StateReauthenticating means an encrypted connection request went
	// unanswered, which almost always indicates a shared key mismatch.
	StateReauthenticating
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateReauthenticating:
		return "reauthenticating"
	}
	return "unknown"
}

// EncryptionError indicates the peer silently dropped an encrypted
// connection request, the panel's behavior when the shared key is wrong.
type EncryptionError struct {
	Host string
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("no response to encrypted connection request from %s, check the shared key", e.Host)
}

const (
	requestTimeout   = 5 * time.Second
	responsePoll     = 100 * time.Millisecond
	pollAliveAfter   = 30 * time.Second
	pollAliveCadence = time.Second
)

// anyCommand matches any response command in a pending request.
const anyCommand Command = 0

// pendingRequest correlates an outbound TX sequence with the response the
// receive loop delivers for it.
type pendingRequest struct {
	expected Command
	done     bool
	command  Command
	data     interface{}
}

// Callback receives every decoded message the client handles, plus the
// synthetic notifications for connect, disconnect and configuration reloads.
type Callback func(command Command, data interface{})

// Client maintains a session with an alarm panel: it performs the handshake,
// correlates requests with responses, keeps the connection alive and mirrors
// the panel's sections, inputs and outputs.
type Client struct {
	log  *log.Logger
	conn *connection

	mu            sync.Mutex
	state         ConnectionState
	connected     bool
	stayConnected bool
	equipment     *types.EquipmentInformation
	deviceStatus  *types.DeviceStatus
	sections      map[int]*types.Section
	inputs        map[int]*types.Input
	outputs       map[int]*types.Output
	callbacks     []Callback

	pendingMu sync.Mutex
	pending   map[uint32]*pendingRequest

	pollDone    chan struct{}
	pollStopped chan struct{}
}

var outputArrangementMinVersion = semver.MustParse("2.17.0")

func NewClient(host string, port int, sharedKey []byte, logger *log.Logger) *Client {
	if port == 0 {
		port = DefaultPort
	}
	c := &Client{
		log:      logger,
		sections: make(map[int]*types.Section),
		inputs:   make(map[int]*types.Input),
		outputs:  make(map[int]*types.Output),
		pending:  make(map[uint32]*pendingRequest),
	}
	c.conn = newConnection(host, port, sharedKey, logger)
	c.conn.setOnMessage(c.handleMessage)
	return c
}

// Subscribe registers a callback for state changes and events. Callbacks run
// on the receive loop goroutine and must not block.
func (c *Client) Subscribe(callback Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) EquipmentInformation() *types.EquipmentInformation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.equipment
}

func (c *Client) DeviceStatus() *types.DeviceStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceStatus
}

// Sections returns a snapshot of the section table. The *types.Section
// values are shared with the client and updated in place.
func (c *Client) Sections() map[int]*types.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	sections := make(map[int]*types.Section, len(c.sections))
	for number, section := range c.sections {
		sections[number] = section
	}
	return sections
}

func (c *Client) Section(number int) *types.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sections[number]
}

func (c *Client) Inputs() map[int]*types.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	inputs := make(map[int]*types.Input, len(c.inputs))
	for number, input := range c.inputs {
		inputs[number] = input
	}
	return inputs
}

func (c *Client) Input(number int) *types.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputs[number]
}

func (c *Client) Outputs() map[int]*types.Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	outputs := make(map[int]*types.Output, len(c.outputs))
	for number, output := range c.outputs {
		outputs[number] = output
	}
	return outputs
}

// Seed pre-populates the state model from a cached arrangement snapshot.
// The handshake re-merges the live arrangement on top of it, so a stale
// cache only delays corrections, it never blocks them.
func (c *Client) Seed(sections []types.Section, inputs []types.Input, outputs []types.Output) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, section := range sections {
		added := section
		c.sections[section.Number] = &added
	}
	for _, input := range inputs {
		input.Sections = make([]*types.Section, 0, len(input.SectionNumbers))
		for _, number := range input.SectionNumbers {
			if section, ok := c.sections[number]; ok {
				input.Sections = append(input.Sections, section)
			}
		}
		added := input
		c.inputs[input.Number] = &added
	}
	for _, output := range outputs {
		added := output
		c.outputs[output.Number] = &added
	}
}

// Connect performs the full handshake and, on success, starts the keep-alive
// loop that holds the session open.
func (c *Client) Connect() error {
	if err := c.connect(); err != nil {
		return err
	}

	c.mu.Lock()
	c.stayConnected = true
	c.pollDone = make(chan struct{})
	c.pollStopped = make(chan struct{})
	pollDone, pollStopped := c.pollDone, c.pollStopped
	c.mu.Unlock()
	go c.pollAliveLoop(pollDone, pollStopped)

	return nil
}

// connect opens the socket and runs the handshake: connection request,
// equipment information, section and input arrangements with their statuses,
// output arrangement where the firmware supports it, and device status. Only
// a missing equipment information response is fatal; the panel omits the
// other responses in some configurations.
func (c *Client) connect() error {
	c.setState(StateConnecting)
	if err := c.conn.connect(); err != nil {
		c.setState(StateDisconnected)
		return err
	}

	command, _, err := c.sendReceive(CmdConnectionRequest, nil, CmdConnectionRequestResponse, false)
	if err != nil {
		c.conn.close()
		if c.conn.sharedKey != nil {
			c.setState(StateReauthenticating)
			return &EncryptionError{Host: c.conn.host}
		}
		c.setState(StateDisconnected)
		return fmt.Errorf("connection request failed: %v", err)
	}
	if command != CmdConnectionRequestResponse {
		c.conn.close()
		c.setState(StateDisconnected)
		return fmt.Errorf("unexpected response %s to connection request", command)
	}

	c.setState(StateHandshaking)
	if err := c.requestEquipmentInformation(); err != nil {
		c.conn.close()
		c.setState(StateDisconnected)
		return err
	}
	c.requestSectionArrangement()
	c.requestSectionStatus()
	c.requestInputArrangement()
	c.requestInputStatus()
	if c.supportsOutputArrangement() {
		c.requestOutputArrangement()
	}
	c.requestDeviceStatus()

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	c.setState(StateConnected)
	c.notify(CmdConnectionRequestResponse, nil)

	return nil
}

// Disconnect stops the keep-alive loop and closes the session gracefully.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	c.stayConnected = false
	pollDone, pollStopped := c.pollDone, c.pollStopped
	c.pollDone, c.pollStopped = nil, nil
	c.mu.Unlock()

	if pollDone != nil {
		close(pollDone)
		<-pollStopped
	}

	if c.conn.isOpen() {
		return c.disconnect()
	}
	return nil
}

// disconnect sends a best-effort normal disconnect, notifies subscribers and
// closes the socket.
func (c *Client) disconnect() error {
	c.setState(StateDisconnecting)
	if _, err := c.conn.send(CmdNormalDisconnect, nil, nil); err != nil {
		c.log.Debug("Failed to send normal disconnect: %v", err)
	}

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	c.notify(CmdNormalDisconnect, nil)

	err := c.conn.close()
	c.setState(StateDisconnected)
	return err
}

// send writes a command, reconnecting first when the session was lost and
// the caller allows it.
func (c *Client) send(command Command, data []byte, allowReconnect bool, onSequence func(uint32)) (uint32, error) {
	if !c.conn.isOpen() && allowReconnect {
		c.log.Info("Connection to %s lost, reconnecting", c.conn)
		if err := c.connect(); err != nil {
			return 0, err
		}
	}
	return c.conn.send(command, data, onSequence)
}

// sendReceive sends a command and waits for the correlated response. The
// receive loop matches responses on the echoed TX sequence number; the
// pending entry is registered before the request leaves the socket, so even
// an immediate response cannot slip past the correlation table. This side
// then polls the table until the response arrives or the request times out.
func (c *Client) sendReceive(command Command, data []byte, expected Command, allowReconnect bool) (Command, interface{}, error) {
	request := &pendingRequest{expected: expected}
	registered := false
	sequence, err := c.send(command, data, allowReconnect, func(sequence uint32) {
		c.pendingMu.Lock()
		c.pending[sequence] = request
		c.pendingMu.Unlock()
		registered = true
	})
	if registered {
		defer func() {
			c.pendingMu.Lock()
			delete(c.pending, sequence)
			c.pendingMu.Unlock()
		}()
	}
	if err != nil {
		return 0, nil, err
	}

	deadline := time.Now().Add(requestTimeout)
	for time.Now().Before(deadline) {
		if !c.conn.isOpen() {
			return 0, nil, fmt.Errorf("connection lost while waiting for response to %s", command)
		}
		c.pendingMu.Lock()
		done, responseCommand, responseData := request.done, request.command, request.data
		c.pendingMu.Unlock()
		if done {
			return responseCommand, responseData, nil
		}
		time.Sleep(responsePoll)
	}

	return 0, nil, fmt.Errorf("no response to %s within %s", command, requestTimeout)
}

// pollAliveLoop keeps the session alive with a poll-alive round trip when
// nothing has been sent for a while. A failed poll tears the session down;
// the loop itself stops on Disconnect or when reauthentication is needed.
func (c *Client) pollAliveLoop(done, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(pollAliveCadence)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		stayConnected := c.stayConnected
		state := c.state
		c.mu.Unlock()
		if !stayConnected || state == StateReauthenticating {
			return
		}

		if !c.conn.isOpen() || time.Since(c.conn.lastMessageSent()) > pollAliveAfter {
			if !c.pollAlive() && c.conn.isOpen() {
				c.log.Error("Poll alive failed, disconnecting")
				c.disconnect()
			}
		}
	}
}

func (c *Client) pollAlive() bool {
	command, _, err := c.sendReceive(CmdPollAliveRequest, nil, CmdPollAliveResponse, false)
	if err != nil {
		c.log.Debug("Poll alive: %v", err)
		return false
	}
	return command == CmdPollAliveResponse
}

func (c *Client) requestEquipmentInformation() error {
	_, data, err := c.sendReceive(CmdRequestEquipmentInformation, nil, CmdResponseEquipmentInformation, false)
	if err != nil {
		return fmt.Errorf("failed to retrieve equipment information: %v", err)
	}
	if data == nil {
		return fmt.Errorf("equipment information response carried no data")
	}
	return nil
}

func (c *Client) requestSectionArrangement() {
	if _, _, err := c.sendReceive(CmdRequestSectionArrangement, nil, CmdResponseSectionArrangement, false); err != nil {
		c.log.Warn("Failed to retrieve section arrangement: %v", err)
	}
}

// requestSectionStatus asks for the status of each known section in turn, one
// request per section, or probes with the wildcard pattern when none are
// known yet.
func (c *Client) requestSectionStatus() {
	c.mu.Lock()
	numbers := make([]int, 0, len(c.sections))
	for number := range c.sections {
		numbers = append(numbers, number)
	}
	c.mu.Unlock()

	if len(numbers) == 0 {
		if _, _, err := c.sendReceive(CmdRequestSectionStatus, []byte{0xFF}, CmdResponseSectionStatus, false); err != nil {
			c.log.Warn("Failed to retrieve section status: %v", err)
		}
		return
	}

	sort.Ints(numbers)
	for _, number := range numbers {
		if _, _, err := c.sendReceive(CmdRequestSectionStatus, []byte{byte(number)}, CmdResponseSectionStatus, false); err != nil {
			c.log.Warn("Failed to retrieve status of section %d: %v", number, err)
		}
	}
}

// requestInputArrangement pages through the input arrangement blocks until
// the panel signals the end of the table.
func (c *Client) requestInputArrangement() {
	for block := 1; ; block++ {
		blockData := []byte{byte(block >> 8), byte(block)}
		_, data, err := c.sendReceive(CmdRequestInputArrangement, blockData, CmdResponseInputArrangement, false)
		if err != nil {
			c.log.Warn("Failed to retrieve input arrangement block %d: %v", block, err)
			return
		}
		if data == nil {
			return
		}
	}
}

func (c *Client) requestInputStatus() {
	if _, _, err := c.sendReceive(CmdRequestInputStatus, nil, CmdInputStatusChanged, false); err != nil {
		c.log.Warn("Failed to retrieve input status: %v", err)
	}
}

func (c *Client) requestOutputArrangement() {
	for block := 1; ; block++ {
		blockData := []byte{byte(block >> 8), byte(block)}
		_, data, err := c.sendReceive(CmdRequestOutputArrangement, blockData, CmdResponseOutputArrangement, false)
		if err != nil {
			c.log.Warn("Failed to retrieve output arrangement block %d: %v", block, err)
			return
		}
		if data == nil {
			return
		}
	}
}

func (c *Client) requestDeviceStatus() {
	if _, _, err := c.sendReceive(CmdRequestDeviceStatus, nil, CmdDeviceStatusChanged, false); err != nil {
		c.log.Warn("Failed to retrieve device status: %v", err)
	}
}

func (c *Client) supportsOutputArrangement() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.equipment == nil || c.equipment.SoftwareVersion == nil {
		return false
	}
	return !c.equipment.SoftwareVersion.LessThan(outputArrangementMinVersion)
}

// ArmSection arms a section with the given user code. Both a successful arm
// and a section that was already armed count as success; other results are
// logged and reported as failure.
func (c *Client) ArmSection(number int, code string) bool {
	data, err := armDisarmPayload(number, code)
	if err != nil {
		c.log.Error("Failed to arm section %d: %v", number, err)
		return false
	}

	command, response, err := c.sendReceive(CmdRequestArmSection, data, CmdResponseArmSection, true)
	if err != nil {
		c.log.Error("Failed to arm section %d: %v", number, err)
		return false
	}
	result, ok := response.(*ArmSectionResponse)
	if command != CmdResponseArmSection || !ok {
		c.log.Error("Unexpected response %s to arm request for section %d", command, number)
		return false
	}
	switch result.State {
	case types.ArmNoChange, types.ArmSectionArmed:
		return true
	}
	c.log.Error("Failed to arm section %d: %s", number, result.State)
	return false
}

// DisarmSection disarms a section with the given user code.
func (c *Client) DisarmSection(number int, code string) bool {
	data, err := armDisarmPayload(number, code)
	if err != nil {
		c.log.Error("Failed to disarm section %d: %v", number, err)
		return false
	}

	command, response, err := c.sendReceive(CmdRequestDisarmSection, data, CmdResponseDisarmSection, true)
	if err != nil {
		c.log.Error("Failed to disarm section %d: %v", number, err)
		return false
	}
	result, ok := response.(*DisarmSectionResponse)
	if command != CmdResponseDisarmSection || !ok {
		c.log.Error("Unexpected response %s to disarm request for section %d", command, number)
		return false
	}
	switch result.State {
	case types.DisarmNoChange, types.DisarmSectionDisarmed:
		return true
	}
	c.log.Error("Failed to disarm section %d: %s", number, result.State)
	return false
}

// armDisarmPayload builds the shared arm/disarm request body: a reserved
// byte, the BCD-encoded user code, the section number and a count of one.
func armDisarmPayload(number int, code string) ([]byte, error) {
	encoded, err := BCDEncode(code)
	if err != nil {
		return nil, err
	}
	data := append([]byte{0x00}, encoded...)
	return append(data, byte(number), 0x01), nil
}

// BypassInput bypasses an input with the given user code.
func (c *Client) BypassInput(number int, code string) bool {
	return c.bypassRequest(CmdRequestBypassInput, number, code)
}

// UnbypassInput lifts the bypass on an input.
func (c *Client) UnbypassInput(number int, code string) bool {
	return c.bypassRequest(CmdRequestUnbypassInput, number, code)
}

func (c *Client) bypassRequest(command Command, number int, code string) bool {
	data, err := bypassPayload(number, code)
	if err != nil {
		c.log.Error("Failed to change bypass for input %d: %v", number, err)
		return false
	}

	expected := CmdResponseBypassInput
	if command == CmdRequestUnbypassInput {
		expected = CmdResponseUnbypassInput
	}
	responseCommand, response, err := c.sendReceive(command, data, expected, true)
	if err != nil {
		c.log.Error("Failed to change bypass for input %d: %v", number, err)
		return false
	}
	if responseCommand != expected {
		c.log.Error("Unexpected response %s to bypass request for input %d", responseCommand, number)
		return false
	}

	var result byte
	switch typed := response.(type) {
	case *BypassInputResult:
		result = typed.Result
	case *UnbypassInputResult:
		result = typed.Result
	default:
		c.log.Error("Unexpected response %s to bypass request for input %d", responseCommand, number)
		return false
	}
	if result != BypassSuccessful {
		c.log.Error("Failed to change bypass for input %d: result code %d", number, result)
		return false
	}
	return true
}

// bypassPayload builds the bypass request body: a mode byte, the user code
// padded to eight BCD digits and the input number.
func bypassPayload(number int, code string) ([]byte, error) {
	if len(code) > 8 {
		code = code[:8]
	}
	for len(code) < 8 {
		code += "0"
	}
	encoded, err := BCDEncode(code)
	if err != nil {
		return nil, err
	}
	data := append([]byte{0x00}, encoded[:4]...)
	return append(data, byte(number>>8), byte(number)), nil
}

// handleMessage runs on the receive loop goroutine: it merges state updates,
// acknowledges events, resolves the pending request this message answers and
// fans the message out to subscribers.
func (c *Client) handleMessage(message *Message) {
	switch message.Command {
	case CmdEventOccurred:
		if event, ok := message.Data.(*types.EventRecord); ok {
			c.log.Panel("Event %s", event)
		}
		if c.IsConnected() {
			if _, err := c.send(CmdResponseEventOccurred, nil, false, nil); err != nil {
				c.log.Debug("Failed to acknowledge event: %v", err)
			}
		}
	case CmdResponseEquipmentInformation:
		if info, ok := message.Data.(*types.EquipmentInformation); ok {
			c.handleEquipmentInformation(info)
		}
	case CmdResponseSectionArrangement:
		if arrangement, ok := message.Data.(*SectionArrangement); ok {
			c.handleSectionArrangement(arrangement)
		}
	case CmdResponseSectionStatus:
		if status, ok := message.Data.(*SectionStatus); ok {
			c.handleSectionStatus(status)
		}
	case CmdResponseReadyToArmSections:
		if status, ok := message.Data.(*ReadyToArmSectionStatus); ok {
			c.log.Debug("Section %d ready to arm state: %s", status.Number, status.State)
		}
	case CmdResponseInputArrangement:
		if arrangement, ok := message.Data.(*InputArrangement); ok {
			c.handleInputArrangement(arrangement)
		}
	case CmdInputStatusChanged:
		if status, ok := message.Data.(*InputStatus); ok {
			for _, record := range status.Records {
				c.handleInputStatusRecord(record)
			}
		}
	case CmdInputStatusUpdate:
		if update, ok := message.Data.(*InputStatusUpdate); ok {
			c.handleInputStatusRecord(update.InputStatusRecord)
		}
	case CmdResponseOutputArrangement:
		if arrangement, ok := message.Data.(*OutputArrangement); ok {
			c.handleOutputArrangement(arrangement)
		}
	case CmdDeviceStatusChanged:
		if status, ok := message.Data.(*types.DeviceStatus); ok {
			c.mu.Lock()
			c.deviceStatus = status
			c.mu.Unlock()
		}
	}

	c.pendingMu.Lock()
	if request, ok := c.pending[message.RxSequence]; ok && !request.done {
		if request.expected == anyCommand || request.expected == message.Command {
			request.done = true
			request.command = message.Command
			request.data = message.Data
		}
	}
	c.pendingMu.Unlock()

	c.notify(message.Command, message.Data)
}

// handleEquipmentInformation stores the panel identity. A change after the
// first snapshot means the panel was reprogrammed, which subscribers learn
// about through a synthetic equipment information request notification so
// they can reload their configuration.
func (c *Client) handleEquipmentInformation(info *types.EquipmentInformation) {
	c.mu.Lock()
	changed := c.equipment != nil && !c.equipment.Equal(info)
	c.equipment = info
	c.mu.Unlock()

	if changed {
		c.log.Info("Equipment information changed, reloading arrangement")
		c.notify(CmdRequestEquipmentInformation, nil)
	}
}

// handleSectionArrangement merges the section table: known sections are
// updated in place, unknown ones are added only when active so inactive
// sections never appear downstream.
func (c *Client) handleSectionArrangement(arrangement *SectionArrangement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, section := range arrangement.Sections {
		if existing, ok := c.sections[section.Number]; ok {
			existing.Name = section.Name
			existing.Active = section.Active
			continue
		}
		if !section.Active {
			continue
		}
		added := section
		c.sections[section.Number] = &added
	}
}

// handleSectionStatus updates armed states. Activity follows the armed
// state: a not-programmed section is considered inactive.
func (c *Client) handleSectionStatus(status *SectionStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, record := range status.Records {
		section, ok := c.sections[record.Number]
		if !ok {
			c.log.Warn("Status change for unknown section %d", record.Number)
			continue
		}
		section.ArmedState = record.ArmedState
		section.Active = record.ArmedState != types.SectionNotProgrammed
	}
}

// handleInputArrangement merges an input arrangement block. Live status and
// flags survive a re-merge, and section number masks are expanded to
// references into the section table, which is why the section arrangement is
// always requested first.
func (c *Client) handleInputArrangement(arrangement *InputArrangement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, input := range arrangement.Inputs {
		input.Sections = make([]*types.Section, 0, len(input.SectionNumbers))
		for _, number := range input.SectionNumbers {
			section, ok := c.sections[number]
			if !ok {
				c.log.Warn("Input %d references unknown section %d", input.Number, number)
				continue
			}
			input.Sections = append(input.Sections, section)
		}

		if existing, ok := c.inputs[input.Number]; ok {
			input.Status = existing.Status
			input.Bypassed = existing.Bypassed
			input.AlarmMemorized = existing.AlarmMemorized
			input.LowBattery = existing.LowBattery
			input.Supervision = existing.Supervision
			*existing = input
			continue
		}
		added := input
		c.inputs[input.Number] = &added
	}
}

// handleInputStatusRecord applies a live status to a known input. Status for
// an unknown input is only worth a warning when the input is not disabled,
// since disabled inputs are deliberately absent from the arrangement.
func (c *Client) handleInputStatusRecord(record InputStatusRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	input, ok := c.inputs[record.Number]
	if !ok {
		if record.Status != types.InputDisabled {
			c.log.Warn("Status change for unknown input %d", record.Number)
		}
		return
	}
	input.Status = record.Status
	input.Bypassed = record.Bypassed
	input.AlarmMemorized = record.AlarmMemorized
	input.LowBattery = record.LowBattery
	input.Supervision = record.Supervision
}

func (c *Client) handleOutputArrangement(arrangement *OutputArrangement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, output := range arrangement.Outputs {
		if existing, ok := c.outputs[output.Number]; ok {
			*existing = output
			continue
		}
		added := output
		c.outputs[output.Number] = &added
	}
}

func (c *Client) setState(state ConnectionState) {
	c.mu.Lock()
	previous := c.state
	c.state = state
	c.mu.Unlock()
	if previous != state {
		c.log.Debug("Connection state: %s", state)
	}
}

func (c *Client) notify(command Command, data interface{}) {
	c.mu.Lock()
	callbacks := make([]Callback, len(c.callbacks))
	copy(callbacks, c.callbacks)
	c.mu.Unlock()
	for _, callback := range callbacks {
		callback(command, data)
	}
}

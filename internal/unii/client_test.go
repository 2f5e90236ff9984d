package unii

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daemonp/unii2mqtt/internal/log"
	"github.com/daemonp/unii2mqtt/internal/types"
)

func newTestClient() *Client {
	return NewClient("127.0.0.1", DefaultPort, nil, log.NewLogger("error"))
}

func TestSectionArrangementMerge(t *testing.T) {
	client := newTestClient()

	client.handleSectionArrangement(&SectionArrangement{Sections: []types.Section{
		{Number: 1, Active: true, Name: "Home"},
		{Number: 2, Active: false, Name: "Unused"},
	}})

	home := client.Section(1)
	require.NotNil(t, home)
	assert.Equal(t, "Home", home.Name)
	// Inactive sections are never created.
	assert.Nil(t, client.Section(2))

	// Re-merging updates the existing section in place.
	client.handleSectionArrangement(&SectionArrangement{Sections: []types.Section{
		{Number: 1, Active: true, Name: "House"},
	}})
	assert.Equal(t, "House", home.Name)
	assert.Same(t, home, client.Section(1))
}

func TestSectionStatusMerge(t *testing.T) {
	client := newTestClient()
	client.handleSectionArrangement(&SectionArrangement{Sections: []types.Section{
		{Number: 1, Active: true, Name: "Home"},
	}})

	client.handleSectionStatus(&SectionStatus{Records: []SectionStatusRecord{
		{Number: 1, ArmedState: types.SectionArmed},
		// Unknown section only warns, it never creates state.
		{Number: 9, ArmedState: types.SectionArmed},
	}})

	section := client.Section(1)
	assert.Equal(t, types.SectionArmed, section.ArmedState)
	assert.True(t, section.Active)
	assert.Nil(t, client.Section(9))

	client.handleSectionStatus(&SectionStatus{Records: []SectionStatusRecord{
		{Number: 1, ArmedState: types.SectionNotProgrammed},
	}})
	assert.False(t, section.Active)
}

func TestInputArrangementPreservesLiveStatus(t *testing.T) {
	client := newTestClient()
	client.handleSectionArrangement(&SectionArrangement{Sections: []types.Section{
		{Number: 1, Active: true, Name: "Home"},
	}})

	client.handleInputArrangement(&InputArrangement{BlockNumber: 1, Inputs: []types.Input{
		{Number: 1, Name: "Hall PIR", SectionNumbers: []int{1}, Status: types.InputDisabled},
	}})

	input := client.Input(1)
	require.NotNil(t, input)
	require.Len(t, input.Sections, 1)
	assert.Same(t, client.Section(1), input.Sections[0])

	client.handleInputStatusRecord(InputStatusRecord{
		Number:   1,
		Status:   types.InputAlarm,
		Bypassed: true,
	})
	assert.Equal(t, types.InputAlarm, input.Status)
	assert.True(t, input.Bypassed)

	// A re-merge of the arrangement carries the live status forward.
	client.handleInputArrangement(&InputArrangement{BlockNumber: 1, Inputs: []types.Input{
		{Number: 1, Name: "Hallway PIR", SectionNumbers: []int{1}, Status: types.InputDisabled},
	}})
	assert.Same(t, input, client.Input(1))
	assert.Equal(t, "Hallway PIR", input.Name)
	assert.Equal(t, types.InputAlarm, input.Status)
	assert.True(t, input.Bypassed)
}

func TestInputStatusForUnknownInput(t *testing.T) {
	client := newTestClient()

	// Disabled status for an input missing from the arrangement is expected
	// and ignored, any other status is dropped with a warning.
	client.handleInputStatusRecord(InputStatusRecord{Number: 7, Status: types.InputDisabled})
	client.handleInputStatusRecord(InputStatusRecord{Number: 8, Status: types.InputAlarm})
	assert.Nil(t, client.Input(7))
	assert.Nil(t, client.Input(8))
}

func TestEquipmentChangeNotifiesReload(t *testing.T) {
	client := newTestClient()

	var mu sync.Mutex
	var commands []Command
	client.Subscribe(func(command Command, data interface{}) {
		mu.Lock()
		commands = append(commands, command)
		mu.Unlock()
	})

	first := &types.EquipmentInformation{DeviceName: "UNii 128"}
	client.handleEquipmentInformation(first)
	mu.Lock()
	assert.Empty(t, commands)
	mu.Unlock()

	// The same snapshot again is not a change.
	client.handleEquipmentInformation(&types.EquipmentInformation{DeviceName: "UNii 128"})
	mu.Lock()
	assert.Empty(t, commands)
	mu.Unlock()

	client.handleEquipmentInformation(&types.EquipmentInformation{DeviceName: "UNii 512"})
	mu.Lock()
	assert.Equal(t, []Command{CmdRequestEquipmentInformation}, commands)
	mu.Unlock()
}

func TestSeedRelinksSections(t *testing.T) {
	client := newTestClient()
	client.Seed(
		[]types.Section{{Number: 1, Active: true, Name: "Home"}},
		[]types.Input{{Number: 3, Name: "Door", SectionNumbers: []int{1}}},
		[]types.Output{{Number: 2, Name: "Siren"}},
	)

	input := client.Input(3)
	require.NotNil(t, input)
	require.Len(t, input.Sections, 1)
	assert.Same(t, client.Section(1), input.Sections[0])
	assert.NotNil(t, client.Outputs()[2])
}

// fakePanel implements just enough of the panel side of the protocol for a
// full client handshake over a real TCP connection.
type fakePanel struct {
	t  *testing.T
	ln net.Listener
	tx uint32

	mu                    sync.Mutex
	sectionStatusPayloads [][]byte
}

func startFakePanel(t *testing.T) *fakePanel {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	panel := &fakePanel{t: t, ln: ln, tx: 0x1000}
	go panel.serve()
	t.Cleanup(func() { ln.Close() })
	return panel
}

func (f *fakePanel) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakePanel) sectionStatusRequests() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.sectionStatusPayloads...)
}

func (f *fakePanel) serve() {
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	header := make([]byte, headerLength)
	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}
		length := int(binary.BigEndian.Uint16(header[12:14]))
		raw := make([]byte, length)
		copy(raw, header)
		if _, err := io.ReadFull(conn, raw[headerLength:]); err != nil {
			return
		}

		message, err := DecodeMessage(raw, nil)
		if err != nil {
			continue
		}
		if message.Command == CmdNormalDisconnect {
			return
		}

		command, data := f.respond(message)
		if command == anyCommand {
			continue
		}
		f.tx++
		reply := &Request{
			SessionID:  0xF109,
			TxSequence: f.tx,
			RxSequence: message.TxSequence,
			Command:    command,
			Data:       data,
		}
		encoded, err := reply.Encode(nil)
		if err != nil {
			return
		}
		if _, err := conn.Write(encoded); err != nil {
			return
		}
	}
}

func (f *fakePanel) respond(message *Message) (Command, []byte) {
	switch message.Command {
	case CmdConnectionRequest:
		return CmdConnectionRequestResponse, nil
	case CmdPollAliveRequest:
		return CmdPollAliveResponse, nil
	case CmdRequestEquipmentInformation:
		// Firmware below 2.17.0, so the client skips the output
		// arrangement.
		return CmdResponseEquipmentInformation, equipmentInformationV2(f.t, "2.16.", "UNii 128")
	case CmdRequestSectionArrangement:
		return CmdResponseSectionArrangement, []byte{
			0x01, 0x01, 0x04, 'H', 'o', 'm', 'e',
			0x01, 0x00, 0x06, 'U', 'n', 'u', 's', 'e', 'd',
			0x01, 0x01, 0x06, 'C', 'e', 'l', 'l', 'a', 'r',
		}
	case CmdRequestSectionStatus:
		raw, _ := message.Data.(RawData)
		f.mu.Lock()
		f.sectionStatusPayloads = append(f.sectionStatusPayloads, append([]byte(nil), raw...))
		f.mu.Unlock()
		if len(raw) == 1 && raw[0] != 0xFF {
			return CmdResponseSectionStatus, []byte{raw[0], 0x02}
		}
		return CmdResponseSectionStatus, []byte{0x01, 0x02}
	case CmdRequestInputArrangement:
		raw, _ := message.Data.(RawData)
		if len(raw) == 2 && binary.BigEndian.Uint16(raw) == 1 {
			name := "Hall PIR"
			data := []byte{0x00, 0x02, 0x00, 0x01}
			data = append(data, 0x00, 0x01, 0x01, 0x00, byte(len(name)))
			data = append(data, name...)
			data = append(data, 0x00, 0x00, 0x00, 0x01)
			return CmdResponseInputArrangement, data
		}
		return CmdResponseInputArrangement, []byte{0x00, 0x02, 0xFF, 0xFF}
	case CmdRequestInputStatus:
		return CmdInputStatusChanged, []byte{0x00, 0x02, 0x00}
	case CmdRequestDeviceStatus:
		return CmdDeviceStatusChanged, append([]byte{0x00, 0x02}, make([]byte, 51*2)...)
	case CmdRequestArmSection:
		return CmdResponseArmSection, []byte{message.Data.(RawData)[9], 0x01}
	case CmdRequestDisarmSection:
		return CmdResponseDisarmSection, []byte{message.Data.(RawData)[9], 0x01}
	}
	return anyCommand, nil
}

func TestClientHandshake(t *testing.T) {
	panel := startFakePanel(t)
	client := NewClient("127.0.0.1", panel.port(), nil, log.NewLogger("error"))

	require.NoError(t, client.Connect())
	defer client.Disconnect()

	assert.True(t, client.IsConnected())
	assert.Equal(t, StateConnected, client.State())

	info := client.EquipmentInformation()
	require.NotNil(t, info)
	assert.Equal(t, "UNii 128", info.DeviceName)

	home := client.Section(1)
	require.NotNil(t, home)
	assert.Equal(t, "Home", home.Name)
	assert.Equal(t, types.SectionDisarmed, home.ArmedState)
	assert.Nil(t, client.Section(2))
	require.NotNil(t, client.Section(3))

	input := client.Input(1)
	require.NotNil(t, input)
	assert.Equal(t, "Hall PIR", input.Name)
	assert.Equal(t, types.InputOK, input.Status)
	require.Len(t, input.Sections, 1)
	assert.Same(t, home, input.Sections[0])

	require.NotNil(t, client.DeviceStatus())
}

// The handshake asks for section status one request per known section, in
// ascending order, each carrying a single section number byte.
func TestSectionStatusRequestedPerSection(t *testing.T) {
	panel := startFakePanel(t)
	client := NewClient("127.0.0.1", panel.port(), nil, log.NewLogger("error"))

	require.NoError(t, client.Connect())
	defer client.Disconnect()

	assert.Equal(t, [][]byte{{0x01}, {0x03}}, panel.sectionStatusRequests())
}

// The sequence handed to the send hook is the one that goes out on the wire,
// so a correlation entry keyed on it is in place before any response can
// arrive.
func TestSendSequenceHookMatchesWire(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	frames := make(chan *Message, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		header := make([]byte, headerLength)
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}
		raw := make([]byte, int(binary.BigEndian.Uint16(header[12:14])))
		copy(raw, header)
		if _, err := io.ReadFull(conn, raw[headerLength:]); err != nil {
			return
		}
		if message, err := DecodeMessage(raw, nil); err == nil {
			frames <- message
		}
	}()

	conn := newConnection("127.0.0.1", ln.Addr().(*net.TCPAddr).Port, nil, log.NewLogger("error"))
	require.NoError(t, conn.connect())
	defer conn.close()

	var hooked uint32
	sequence, err := conn.send(CmdPollAliveRequest, nil, func(sequence uint32) { hooked = sequence })
	require.NoError(t, err)
	assert.Equal(t, sequence, hooked)

	select {
	case message := <-frames:
		assert.Equal(t, sequence, message.TxSequence)
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the peer")
	}
}

func TestClientArmDisarm(t *testing.T) {
	panel := startFakePanel(t)
	client := NewClient("127.0.0.1", panel.port(), nil, log.NewLogger("error"))

	require.NoError(t, client.Connect())
	defer client.Disconnect()

	assert.True(t, client.ArmSection(1, "1234"))
	assert.True(t, client.DisarmSection(1, "1234"))
}

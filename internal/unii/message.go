package unii

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
)

const (
	headerLength = 14
	// Messages are zero-padded so that the encrypted part lines up with the
	// AES block size, even when encryption is not in use.
	blockSize = 16
)

// ProtocolID selects the encryption scheme of a message.
type ProtocolID byte

const (
	ProtocolNoEncryption    ProtocolID = 0x04
	ProtocolBasicEncryption ProtocolID = 0x05
	// Advanced encryption is referenced by the vendor but not specified.
)

func (p ProtocolID) String() string {
	switch p {
	case ProtocolNoEncryption:
		return "No Encryption"
	case ProtocolBasicEncryption:
		return "Basic Encryption"
	default:
		return fmt.Sprintf("Unknown ProtocolID(0x%02X)", byte(p))
	}
}

// PacketType distinguishes session setup traffic from normal traffic. It is
// derived from the command value: commands below 0x0008 are session setup.
type PacketType byte

const (
	PacketSessionSetup     PacketType = 0x01
	PacketNormalConnection PacketType = 0x02
)

func packetTypeFor(command Command) PacketType {
	if command < 0x0008 {
		return PacketSessionSetup
	}
	return PacketNormalConnection
}

// ChecksumError is returned when a received message fails CRC-16 validation.
// The message is fully discarded, not partially trusted.
type ChecksumError struct {
	Expected uint16
	Received uint16
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("invalid checksum: expected 0x%04X, received 0x%04X", e.Expected, e.Received)
}

// IncompleteMessageError is returned when the length of a received message
// does not equal the total length header field.
type IncompleteMessageError struct {
	Expected int
	Received int
}

func (e *IncompleteMessageError) Error() string {
	return fmt.Sprintf("incomplete message: expected %d bytes, received %d bytes", e.Expected, e.Received)
}

// RecordError is returned when a known command's payload does not match any
// supported version layout.
type RecordError struct {
	Command Command
	Err     error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("unparseable %s record: %v", e.Command, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Request is an outbound message. All multi-byte fields are encoded big
// endian.
type Request struct {
	SessionID  uint16
	TxSequence uint32
	RxSequence uint32
	Command    Command
	Data       []byte
}

// Encode converts the request to its wire representation. When a shared key
// is given the body is encrypted with AES in counter mode, seeded from the
// first 12 header bytes; header and trailing checksum stay in clear.
func (r *Request) Encode(sharedKey []byte) ([]byte, error) {
	protocolID := ProtocolNoEncryption
	if sharedKey != nil {
		protocolID = ProtocolBasicEncryption
	}

	header := make([]byte, headerLength)
	binary.BigEndian.PutUint16(header[0:2], r.SessionID)
	binary.BigEndian.PutUint32(header[2:6], r.TxSequence)
	binary.BigEndian.PutUint32(header[6:10], r.RxSequence)
	header[10] = byte(protocolID)
	header[11] = byte(packetTypeFor(r.Command))
	// Total packet length at [12:14] is filled in once the message is
	// assembled.

	body := make([]byte, 4, 4+len(r.Data))
	binary.BigEndian.PutUint16(body[0:2], uint16(r.Command))
	binary.BigEndian.PutUint16(body[2:4], uint16(len(r.Data)))
	body = append(body, r.Data...)

	// Pad so that header + body + checksum is a multiple of the block size.
	padding := blockSize - (headerLength+len(body)+2)%blockSize
	body = append(body, make([]byte, padding)...)

	if sharedKey != nil {
		block, err := aes.NewCipher(sharedKey)
		if err != nil {
			return nil, fmt.Errorf("invalid shared key: %v", err)
		}
		cipher.NewCTR(block, counterSeed(header)).XORKeyStream(body, body)
	}

	message := append(header, body...)
	binary.BigEndian.PutUint16(message[12:14], uint16(len(message)+2))

	crc := CRC16(message)
	return binary.BigEndian.AppendUint16(message, crc), nil
}

// counterSeed builds the initial AES-CTR counter block: the first 12 header
// bytes followed by a block counter of zero.
func counterSeed(header []byte) []byte {
	seed := make([]byte, blockSize)
	copy(seed, header[:12])
	return seed
}

// Message is a decoded inbound message. Data holds the typed record for the
// command, raw bytes for unrecognized commands, or nil when the payload is
// absent.
type Message struct {
	SessionID  uint16
	TxSequence uint32
	RxSequence uint32
	ProtocolID ProtocolID
	PacketType PacketType
	Command    Command
	Data       interface{}
}

// DecodeMessage parses a complete wire message. The raw slice must contain
// exactly one message, as framed by its total length header field.
func DecodeMessage(raw []byte, sharedKey []byte) (*Message, error) {
	if len(raw) < headerLength+2 {
		return nil, &IncompleteMessageError{Expected: headerLength + 2, Received: len(raw)}
	}

	header := raw[:headerLength]
	packetLength := int(binary.BigEndian.Uint16(header[12:14]))
	if packetLength != len(raw) {
		return nil, &IncompleteMessageError{Expected: packetLength, Received: len(raw)}
	}

	received := binary.BigEndian.Uint16(raw[len(raw)-2:])
	expected := CRC16(raw[:len(raw)-2])
	if received != expected {
		return nil, &ChecksumError{Expected: expected, Received: received}
	}

	msg := &Message{
		SessionID:  binary.BigEndian.Uint16(header[0:2]),
		TxSequence: binary.BigEndian.Uint32(header[2:6]),
		RxSequence: binary.BigEndian.Uint32(header[6:10]),
		ProtocolID: ProtocolID(header[10]),
		PacketType: PacketType(header[11]),
	}

	body := raw[headerLength : len(raw)-2]
	if msg.ProtocolID == ProtocolBasicEncryption && sharedKey != nil {
		block, err := aes.NewCipher(sharedKey)
		if err != nil {
			return nil, fmt.Errorf("invalid shared key: %v", err)
		}
		decrypted := make([]byte, len(body))
		cipher.NewCTR(block, counterSeed(header)).XORKeyStream(decrypted, body)
		body = decrypted
	}

	if len(body) < 4 {
		return nil, &IncompleteMessageError{Expected: 4, Received: len(body)}
	}

	msg.Command = Command(binary.BigEndian.Uint16(body[0:2]))

	dataLength := int(binary.BigEndian.Uint16(body[2:4]))
	if dataLength == 0 {
		// Absent data is semantically meaningful, e.g. "connection
		// accepted, nothing else to report".
		return msg, nil
	}
	if len(body) < 4+dataLength {
		return nil, &IncompleteMessageError{Expected: 4 + dataLength, Received: len(body)}
	}

	data, err := decodeRecord(msg.Command, body[4:4+dataLength])
	if err != nil {
		if err == errEndOfBlocks {
			// The pagination terminator block is not an error, it just
			// carries no data.
			return msg, nil
		}
		return nil, &RecordError{Command: msg.Command, Err: err}
	}
	msg.Data = data

	return msg, nil
}

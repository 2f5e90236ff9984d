package unii

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	data, err := hex.DecodeString(s)
	require.NoError(t, err)
	return data
}

func TestEncodeConnectionRequest(t *testing.T) {
	request := &Request{
		SessionID:  0xFFFF,
		TxSequence: 0x08BE2C53,
		RxSequence: 0,
		Command:    CmdConnectionRequest,
	}

	encoded, err := request.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t,
		mustHex(t, "ffff08be2c530000000004010020000100000000000000000000000000005ed3"),
		encoded)
}

func TestEncodeEncryptedConnectionRequest(t *testing.T) {
	request := &Request{
		SessionID:  0xFFFF,
		TxSequence: 0x84AC0B7A,
		RxSequence: 0,
		Command:    CmdConnectionRequest,
	}

	encoded, err := request.Encode(mustHex(t, "31323334353637383930616263646566"))
	require.NoError(t, err)
	assert.Equal(t,
		mustHex(t, "ffff84ac0b7a000000000501002093458e6de62e1d5ea0e5281d5261f1845303"),
		encoded)
}

func TestDecodeConnectionRequestResponse(t *testing.T) {
	message, err := DecodeMessage(mustHex(t, "f109441a389608be2c530402001400020000853e"), nil)
	require.NoError(t, err)

	assert.Equal(t, uint16(0xF109), message.SessionID)
	assert.Equal(t, uint32(0x441A3896), message.TxSequence)
	assert.Equal(t, uint32(0x08BE2C53), message.RxSequence)
	assert.Equal(t, ProtocolNoEncryption, message.ProtocolID)
	assert.Equal(t, CmdConnectionRequestResponse, message.Command)
	assert.Nil(t, message.Data)
}

func TestDecodeEncryptedConnectionRequest(t *testing.T) {
	message, err := DecodeMessage(
		mustHex(t, "ffff84ac0b7a000000000501002093458e6de62e1d5ea0e5281d5261f1845303"),
		mustHex(t, "31323334353637383930616263646566"))
	require.NoError(t, err)

	assert.Equal(t, ProtocolBasicEncryption, message.ProtocolID)
	assert.Equal(t, CmdConnectionRequest, message.Command)
	assert.Nil(t, message.Data)
}

func TestDecodeChecksumMismatch(t *testing.T) {
	raw := mustHex(t, "f109441a389608be2c530402001400020000853e")
	raw[len(raw)-1] ^= 0xFF

	_, err := DecodeMessage(raw, nil)
	var checksumErr *ChecksumError
	require.True(t, errors.As(err, &checksumErr))
	assert.Equal(t, uint16(0x853E), checksumErr.Expected)
	assert.Equal(t, uint16(0x85C1), checksumErr.Received)
}

func TestDecodeIncompleteMessage(t *testing.T) {
	raw := mustHex(t, "f109441a389608be2c530402001400020000853e")

	_, err := DecodeMessage(raw[:10], nil)
	var incompleteErr *IncompleteMessageError
	require.True(t, errors.As(err, &incompleteErr))

	_, err = DecodeMessage(raw[:18], nil)
	require.True(t, errors.As(err, &incompleteErr))
	assert.Equal(t, 20, incompleteErr.Expected)
	assert.Equal(t, 18, incompleteErr.Received)
}

func TestEncryptedRoundTrip(t *testing.T) {
	key := mustHex(t, "31323334353637383930616263646566")
	request := &Request{
		SessionID:  0x1234,
		TxSequence: 0xDEADBEEF,
		RxSequence: 0x00C0FFEE,
		Command:    CmdFlushEventBuffer,
		Data:       []byte{0x01, 0x02, 0x03, 0x04, 0x05},
	}

	encoded, err := request.Encode(key)
	require.NoError(t, err)
	// Padded body plus header and checksum align to the AES block size.
	assert.Equal(t, 0, (len(encoded))%16)

	message, err := DecodeMessage(encoded, key)
	require.NoError(t, err)
	assert.Equal(t, request.SessionID, message.SessionID)
	assert.Equal(t, request.TxSequence, message.TxSequence)
	assert.Equal(t, request.RxSequence, message.RxSequence)
	assert.Equal(t, CmdFlushEventBuffer, message.Command)
	assert.Equal(t, RawData(request.Data), message.Data)
}

func TestEncodeAlwaysPads(t *testing.T) {
	// A body that already aligns to the block size still gets a full
	// padding block appended.
	request := &Request{
		SessionID:  0xFFFF,
		TxSequence: 1,
		Command:    CmdPollAliveRequest,
		Data:       make([]byte, 12),
	}

	encoded, err := request.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, headerLength+16+16+2, len(encoded))
}

func TestPacketTypeFollowsCommand(t *testing.T) {
	assert.Equal(t, PacketSessionSetup, packetTypeFor(CmdConnectionRequest))
	assert.Equal(t, PacketNormalConnection, packetTypeFor(CmdNormalDisconnect))
	assert.Equal(t, PacketNormalConnection, packetTypeFor(CmdEventOccurred))
	assert.Equal(t, PacketNormalConnection, packetTypeFor(CmdRequestSectionArrangement))
}

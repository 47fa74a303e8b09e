package sigverify

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/cashmere-labs/settlement-service/internal/domain/errors"
)

func newSignedPayload(t *testing.T, message []byte) ([]byte, solana.PublicKey) {
	t.Helper()
	signer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	payload, err := NewInstruction(signer, message)
	require.NoError(t, err)
	return payload, signer.PublicKey()
}

func TestVerifyValidPayload(t *testing.T) {
	message := []byte("transfer authorization payload")
	payload, signerKey := newSignedPayload(t, message)

	assert.NoError(t, Verify(payload, message, signerKey))
}

func TestVerifyTruncatedPayload(t *testing.T) {
	message := []byte("short")
	payload, signerKey := newSignedPayload(t, message)

	for _, n := range []int{0, 1, headerLen - 1} {
		err := Verify(payload[:n], message, signerKey)
		assert.ErrorIs(t, err, domainerrors.ErrLessDataThanExpected)
	}
}

func TestVerifyRejectsMultipleSignatures(t *testing.T) {
	message := []byte("payload")
	payload, signerKey := newSignedPayload(t, message)
	payload[0] = 2

	assert.ErrorIs(t, Verify(payload, message, signerKey), domainerrors.ErrInvalidDataFormat)
}

func TestVerifyRejectsNonZeroPadding(t *testing.T) {
	message := []byte("payload")
	payload, signerKey := newSignedPayload(t, message)
	payload[1] = 1

	assert.ErrorIs(t, Verify(payload, message, signerKey), domainerrors.ErrInvalidDataFormat)
}

func TestVerifyRejectsOutOfBoundsSignature(t *testing.T) {
	message := []byte("payload")
	payload, signerKey := newSignedPayload(t, message)
	binary.LittleEndian.PutUint16(payload[2:4], uint16(len(payload)))

	assert.ErrorIs(t, Verify(payload, message, signerKey), domainerrors.ErrInvalidDataFormat)
}

func TestVerifyRejectsForeignInstructionIndex(t *testing.T) {
	message := []byte("payload")

	// Each of the three index fields must carry the current-instruction
	// sentinel.
	for _, pos := range []int{4, 8, 14} {
		payload, signerKey := newSignedPayload(t, message)
		binary.LittleEndian.PutUint16(payload[pos:pos+2], 0)

		assert.ErrorIs(t, Verify(payload, message, signerKey), domainerrors.ErrInvalidSignatureData)
	}
}

func TestVerifyRejectsOutOfBoundsMessage(t *testing.T) {
	message := []byte("payload")
	payload, signerKey := newSignedPayload(t, message)
	binary.LittleEndian.PutUint16(payload[12:14], uint16(len(message)+1))

	assert.ErrorIs(t, Verify(payload, message, signerKey), domainerrors.ErrInvalidMessageData)
}

func TestVerifyRejectsMessageMismatch(t *testing.T) {
	payload, signerKey := newSignedPayload(t, []byte("signed message"))

	err := Verify(payload, []byte("expected message"), signerKey)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidMessageData)
}

func TestVerifyRejectsWrongSigner(t *testing.T) {
	message := []byte("payload")
	payload, _ := newSignedPayload(t, message)
	other, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	assert.ErrorIs(t, Verify(payload, message, other.PublicKey()), domainerrors.ErrInvalidSignature)
}

func TestVerifyRejectsCorruptedSignature(t *testing.T) {
	message := []byte("payload")
	payload, signerKey := newSignedPayload(t, message)
	sigOffset := binary.LittleEndian.Uint16(payload[2:4])
	payload[sigOffset] ^= 0x01

	assert.ErrorIs(t, Verify(payload, message, signerKey), domainerrors.ErrNotSigVerified)
}

func TestVerifyRejectsCorruptedMessageByte(t *testing.T) {
	// Flipping a message byte breaks the byte-for-byte comparison before the
	// signature check runs.
	message := []byte("payload")
	payload, signerKey := newSignedPayload(t, message)
	payload[len(payload)-1] ^= 0x01

	assert.ErrorIs(t, Verify(payload, message, signerKey), domainerrors.ErrInvalidMessageData)
}

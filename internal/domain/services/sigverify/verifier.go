// Package sigverify validates the companion ed25519-instruction payload that
// accompanies every transfer request. The payload uses the Solana ed25519
// program's wire layout: a count byte, a padding byte, then a seven-field
// little-endian offsets header pointing at the signature, public key and
// message inside the same buffer.
//
// On chain the runtime's precompile has already verified the signature and
// this check only needs to confirm the triple is the expected one. Here
// there is no precompile, so after the structural checks the Ed25519
// signature is verified directly over the extracted triple.
package sigverify

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	domainerrors "github.com/cashmere-labs/settlement-service/internal/domain/errors"
)

const (
	// headerLen covers the count byte, the padding byte and the offsets.
	headerLen = 2 + 14

	// currentInstruction is the sentinel index meaning "this instruction".
	currentInstruction = uint16(0xFFFF)

	signatureLen = 64
	publicKeyLen = 32
)

// signatureOffsets is the fixed offsets header of the ed25519 program.
type signatureOffsets struct {
	SignatureOffset           uint16
	SignatureInstructionIndex uint16
	PublicKeyOffset           uint16
	PublicKeyInstructionIndex uint16
	MessageDataOffset         uint16
	MessageDataSize           uint16
	MessageInstructionIndex   uint16
}

func parseOffsets(data []byte) signatureOffsets {
	return signatureOffsets{
		SignatureOffset:           binary.LittleEndian.Uint16(data[2:4]),
		SignatureInstructionIndex: binary.LittleEndian.Uint16(data[4:6]),
		PublicKeyOffset:           binary.LittleEndian.Uint16(data[6:8]),
		PublicKeyInstructionIndex: binary.LittleEndian.Uint16(data[8:10]),
		MessageDataOffset:         binary.LittleEndian.Uint16(data[10:12]),
		MessageDataSize:           binary.LittleEndian.Uint16(data[12:14]),
		MessageInstructionIndex:   binary.LittleEndian.Uint16(data[14:16]),
	}
}

// Verify checks that the companion instruction carries exactly the expected
// authorization message signed by the expected signer key, then verifies the
// Ed25519 signature itself. It is a pure gate: no side effects.
func Verify(instruction []byte, expectedMessage []byte, expectedSigner solana.PublicKey) error {
	if len(instruction) < headerLen {
		return domainerrors.ErrLessDataThanExpected
	}
	if instruction[0] != 1 || instruction[1] != 0 {
		return domainerrors.ErrInvalidDataFormat
	}

	offsets := parseOffsets(instruction)

	// Offsets are u16, so widening to int makes the bound checks immune to
	// overflow.
	sigEnd := int(offsets.SignatureOffset) + signatureLen
	keyEnd := int(offsets.PublicKeyOffset) + publicKeyLen
	if sigEnd > len(instruction) || keyEnd > len(instruction) {
		return domainerrors.ErrInvalidDataFormat
	}

	// The payload must be self-contained: all three references point at this
	// instruction, not at a neighbor in the same atomic unit.
	if offsets.SignatureInstructionIndex != currentInstruction ||
		offsets.PublicKeyInstructionIndex != currentInstruction ||
		offsets.MessageInstructionIndex != currentInstruction {
		return domainerrors.ErrInvalidSignatureData
	}

	msgEnd := int(offsets.MessageDataOffset) + int(offsets.MessageDataSize)
	if msgEnd > len(instruction) {
		return domainerrors.ErrInvalidMessageData
	}

	message := instruction[offsets.MessageDataOffset:msgEnd]
	if !bytes.Equal(message, expectedMessage) {
		return domainerrors.ErrInvalidMessageData
	}

	publicKey := instruction[offsets.PublicKeyOffset:keyEnd]
	if !bytes.Equal(publicKey, expectedSigner[:]) {
		return domainerrors.ErrInvalidSignature
	}

	signature := instruction[offsets.SignatureOffset:sigEnd]
	if !ed25519.Verify(ed25519.PublicKey(publicKey), message, signature) {
		return domainerrors.ErrNotSigVerified
	}
	return nil
}

package sigverify

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// NewInstruction builds a companion instruction payload for a message signed
// with the given key, in the same layout the Solana ed25519 program uses:
// public key at offset 16, signature after it, message last, all index
// fields set to the current-instruction sentinel. The off-chain authorizer
// tooling uses this; tests build both valid and corrupted payloads from it.
func NewInstruction(signer solana.PrivateKey, message []byte) ([]byte, error) {
	if len(message) > 0xFFFF-headerLen-publicKeyLen-signatureLen {
		return nil, fmt.Errorf("message too long for u16 offsets: %d bytes", len(message))
	}

	signature, err := signer.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}

	keyOffset := uint16(headerLen)
	sigOffset := keyOffset + publicKeyLen
	msgOffset := sigOffset + signatureLen

	data := make([]byte, int(msgOffset)+len(message))
	data[0] = 1
	data[1] = 0
	binary.LittleEndian.PutUint16(data[2:4], sigOffset)
	binary.LittleEndian.PutUint16(data[4:6], currentInstruction)
	binary.LittleEndian.PutUint16(data[6:8], keyOffset)
	binary.LittleEndian.PutUint16(data[8:10], currentInstruction)
	binary.LittleEndian.PutUint16(data[10:12], msgOffset)
	binary.LittleEndian.PutUint16(data[12:14], uint16(len(message)))
	binary.LittleEndian.PutUint16(data[14:16], currentInstruction)

	pub := signer.PublicKey()
	copy(data[keyOffset:], pub[:])
	copy(data[sigOffset:], signature[:])
	copy(data[msgOffset:], message)
	return data, nil
}

package signer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the length of a [R || S || V] signature.
const SignatureLength = crypto.SignatureLength

// Signer signs attestation messages with a dedicated low privilege secp256k1 key.
// The key is only ever read after construction, so a Signer is safe for
// concurrent use.
type Signer struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// New returns a Signer for key.
func New(key *ecdsa.PrivateKey) (*Signer, error) {
	if key == nil {
		return nil, errors.New("private key is nil")
	}
	return &Signer{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// NewFromHex parses a hex encoded private key, with or without 0x prefix.
func NewFromHex(hexKey string) (*Signer, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, errors.New("private key is empty")
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		// Don't echo the key material back.
		return nil, errors.New("parsing private key: invalid secp256k1 key")
	}
	return New(key)
}

// Address returns the address the forwarding contract must trust.
func (s *Signer) Address() common.Address {
	return s.addr
}

// Sign signs message as an Ethereum personal message, so it verifies against
// keccak256("\x19Ethereum Signed Message:\n" + len(message) + message).
// V is 27 or 28.
func (s *Signer) Sign(message []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(message), s.key)
	if err != nil {
		return nil, fmt.Errorf("signing message: %s", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// RecoverAddress returns the address that produced sig over message with Sign.
func RecoverAddress(message, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("signature has %d bytes, expected %d", len(sig), SignatureLength)
	}
	s := make([]byte, SignatureLength)
	copy(s, sig)
	if s[crypto.RecoveryIDOffset] >= 27 {
		s[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(message), s)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering public key: %s", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

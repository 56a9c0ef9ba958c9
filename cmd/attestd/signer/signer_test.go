package signer

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	t.Parallel()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := New(key)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), s.Address())

	msg := common.FromHex("0xdeadbeef")
	sig, err := s.Sign(msg)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)
	v := sig[crypto.RecoveryIDOffset]
	require.True(t, v == 27 || v == 28, "unexpected v %d", v)

	// Verify against the personal message digest computed by hand.
	digest := crypto.Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)))
	require.True(t, crypto.VerifySignature(crypto.CompressPubkey(&key.PublicKey), digest, sig[:64]))

	addr, err := RecoverAddress(msg, sig)
	require.NoError(t, err)
	require.Equal(t, s.Address(), addr)
}

func TestRecoverAddressOtherMessage(t *testing.T) {
	t.Parallel()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := New(key)
	require.NoError(t, err)

	sig, err := s.Sign([]byte("message one"))
	require.NoError(t, err)
	addr, err := RecoverAddress([]byte("message two"), sig)
	if err == nil {
		require.NotEqual(t, s.Address(), addr)
	}

	_, err = RecoverAddress([]byte("message one"), sig[:64])
	require.Error(t, err)
}

func TestNewFromHex(t *testing.T) {
	t.Parallel()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := hexutil.Encode(crypto.FromECDSA(key))

	s, err := NewFromHex(hexKey)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), s.Address())

	s, err = NewFromHex(hexKey[2:])
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), s.Address())

	_, err = NewFromHex("")
	require.Error(t, err)

	_, err = NewFromHex("0x1234")
	require.Error(t, err)
	require.NotContains(t, err.Error(), "1234")

	_, err = New(nil)
	require.Error(t, err)
}

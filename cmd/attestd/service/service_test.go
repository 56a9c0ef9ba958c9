package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
	"github.com/textileio/attestation-core/attestation"
	"github.com/textileio/attestation-core/cmd/attestd/attestor"
	"github.com/textileio/attestation-core/cmd/attestd/chains"
	"github.com/textileio/attestation-core/cmd/attestd/client"
	"github.com/textileio/attestation-core/cmd/attestd/contractclient"
	"github.com/textileio/attestation-core/cmd/attestd/contractclient/fakebackend"
	"github.com/textileio/attestation-core/cmd/attestd/forwarder"
	"github.com/textileio/attestation-core/cmd/attestd/oracle"
	"github.com/textileio/attestation-core/cmd/attestd/service"
	"github.com/textileio/attestation-core/cmd/attestd/signer"
)

var (
	requester = common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	nft       = common.HexToAddress("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	fwd       = common.HexToAddress("0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC")
	message   = common.FromHex("0xdeadbeefdeadbeefdeadbeefdeadbeef")
)

func TestE2E(t *testing.T) {
	t.Parallel()

	env := newEnv(t, 7)
	c, err := client.New(context.Background(), env.url)
	require.NoError(t, err)
	defer c.Close()

	sig, err := c.Attest(context.Background(), newRequest(7))
	require.NoError(t, err)

	addr, err := signer.RecoverAddress(message, sig)
	require.NoError(t, err)
	require.Equal(t, env.signer.Address(), addr)
	require.Equal(t, 1, env.src.Calls(nft, "ownerOf"))
	require.Equal(t, 1, env.dst.Calls(fwd, "getNonce"))
	require.Equal(t, 1, env.dst.Calls(fwd, "createMessage"))
}

func TestNonceMismatch(t *testing.T) {
	t.Parallel()

	env := newEnv(t, 8)
	c, err := client.New(context.Background(), env.url)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Attest(context.Background(), newRequest(7))
	requireInternalError(t, err)
	require.Equal(t, 0, env.dst.Calls(fwd, "createMessage"))
}

func TestOwnershipRevert(t *testing.T) {
	t.Parallel()

	env := newEnv(t, 7)
	env.src.Handle(nft, "ownerOf", func(args []interface{}) ([]interface{}, error) {
		return nil, fakebackend.ErrReverted
	})
	c, err := client.New(context.Background(), env.url)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Attest(context.Background(), newRequest(7))
	requireInternalError(t, err)
	require.Equal(t, 0, env.dst.Calls(fwd, "getNonce"))
	require.Equal(t, 0, env.dst.Calls(fwd, "createMessage"))
}

func TestMalformedCalldata(t *testing.T) {
	t.Parallel()

	env := newEnv(t, 7)
	c, err := client.New(context.Background(), env.url)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Call(context.Background(), []byte{0x01, 0x02}, fwd)
	requireInternalError(t, err)
	require.Equal(t, 0, env.src.Calls(nft, "ownerOf"))
}

func TestRawRequest(t *testing.T) {
	t.Parallel()

	env := newEnv(t, 8)
	data, err := attestation.EncodeRequest(newRequest(7))
	require.NoError(t, err)
	body := fmt.Sprintf(
		`{"jsonrpc":"2.0","id":1,"method":"durin_call","params":[{"callData":"%s","to":"%s","abi":[]}]}`,
		hexutil.Encode(data),
		fwd.Hex(),
	)

	req, err := http.NewRequest(http.MethodPost, env.url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://app.example.com")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	// The nonce mismatch detail must not leak.
	require.Contains(t, string(resBody), `"code":-32603`)
	require.Contains(t, string(resBody), `"message":"internal error"`)
	require.NotContains(t, string(resBody), "nonce")
}

func TestObjectParams(t *testing.T) {
	t.Parallel()

	env := newEnv(t, 7)
	data, err := attestation.EncodeRequest(newRequest(7))
	require.NoError(t, err)
	body := fmt.Sprintf(
		`{"jsonrpc":"2.0","id":1,"method":"durin_call","params":{"callData":"%s","to":"%s","abi":[]}}`,
		hexutil.Encode(data),
		fwd.Hex(),
	)

	res := postRPC(t, env.url, body)
	var out struct {
		Result hexutil.Bytes   `json:"result"`
		Error  json.RawMessage `json:"error"`
	}
	require.NoError(t, json.Unmarshal(res, &out))
	require.Nil(t, out.Error)

	addr, err := signer.RecoverAddress(message, out.Result)
	require.NoError(t, err)
	require.Equal(t, env.signer.Address(), addr)
}

func TestMalformedParams(t *testing.T) {
	t.Parallel()

	env := newEnv(t, 7)
	tests := map[string]string{
		"wrong field type":    `{"jsonrpc":"2.0","id":1,"method":"durin_call","params":[{"callData":1,"to":"x"}]}`,
		"wrong object type":   `{"jsonrpc":"2.0","id":1,"method":"durin_call","params":{"callData":1,"to":"x"}}`,
		"empty params":        `{"jsonrpc":"2.0","id":1,"method":"durin_call","params":[]}`,
		"missing params":      `{"jsonrpc":"2.0","id":1,"method":"durin_call"}`,
		"null params":         `{"jsonrpc":"2.0","id":1,"method":"durin_call","params":null}`,
		"null argument":       `{"jsonrpc":"2.0","id":1,"method":"durin_call","params":[null]}`,
		"scalar params":       `{"jsonrpc":"2.0","id":1,"method":"durin_call","params":"0x01"}`,
		"missing calldata":    `{"jsonrpc":"2.0","id":1,"method":"durin_call","params":{"to":"0x01"}}`,
		"argument not object": `{"jsonrpc":"2.0","id":1,"method":"durin_call","params":[42]}`,
	}
	for name, body := range tests {
		body := body
		t.Run(name, func(t *testing.T) {
			res := postRPC(t, env.url, body)
			var out struct {
				Error struct {
					Code    int    `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(res, &out), string(res))
			require.Equal(t, service.InternalErrorCode, out.Error.Code, string(res))
			require.Equal(t, service.InternalErrorMessage, out.Error.Message, string(res))
		})
	}
	require.Equal(t, 0, env.src.Calls(nft, "ownerOf"))
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := newEnv(t, 7)
	res, err := http.Get(env.url + "/health")
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestNewRequiresListener(t *testing.T) {
	t.Parallel()

	_, err := service.New(service.Config{}, nil)
	require.Error(t, err)
}

type env struct {
	url    string
	src    *fakebackend.FakeBackend
	dst    *fakebackend.FakeBackend
	signer *signer.Signer
}

func newEnv(t *testing.T, forwarderNonce int64) *env {
	src, err := fakebackend.New(contractclient.ERC721OwnerABI)
	require.NoError(t, err)
	src.Handle(nft, "ownerOf", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{requester}, nil
	})

	dst, err := fakebackend.New(contractclient.ForwarderABI)
	require.NoError(t, err)
	dst.Handle(fwd, "getNonce", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{big.NewInt(forwarderNonce)}, nil
	})
	dst.Handle(fwd, "createMessage", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{message}, nil
	})

	registry := chains.New(
		map[string]chains.Backend{"1": src, "42161": dst},
		map[string]time.Duration{"1": time.Second, "42161": time.Second},
	)
	destination, err := registry.Get(big.NewInt(42161))
	require.NoError(t, err)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := signer.New(key)
	require.NoError(t, err)

	fw := forwarder.New(destination)
	a, err := attestor.New(attestor.Deps{
		Oracle:   oracle.New(registry),
		Nonces:   fw,
		Messages: fw,
		Signer:   s,
	})
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	serv, err := service.New(service.Config{Listener: listener}, a)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, serv.Close())
	})

	return &env{
		url:    "http://" + listener.Addr().String(),
		src:    src,
		dst:    dst,
		signer: s,
	}
}

func newRequest(nonce int64) attestation.Request {
	return attestation.Request{
		Requester:           requester,
		Authorizer:          requester,
		Nonce:               big.NewInt(nonce),
		SourceChainID:       big.NewInt(1),
		NFTContract:         nft,
		TokenID:             big.NewInt(411),
		DestinationChainID:  big.NewInt(42161),
		Timestamp:           big.NewInt(1650000000),
		DestinationContract: fwd,
	}
}

func postRPC(t *testing.T, url, body string) []byte {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	require.Equal(t, http.StatusOK, res.StatusCode)
	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return resBody
}

func requireInternalError(t *testing.T, err error) {
	require.Error(t, err)
	var rpcErr rpc.Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, service.InternalErrorCode, rpcErr.ErrorCode())
	require.Equal(t, service.InternalErrorMessage, rpcErr.Error())
}

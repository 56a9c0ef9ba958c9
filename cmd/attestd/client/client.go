package client

import (
	"context"
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/textileio/attestation-core/attestation"
	"github.com/textileio/attestation-core/cmd/attestd/service"
)

// Client provides the client api.
type Client struct {
	c *rpc.Client
}

// New returns a new client for the attestd endpoint at url.
func New(ctx context.Context, url string) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %v", url, err)
	}
	return &Client{c: c}, nil
}

// Attest requests a signature for req from the forwarder at req.DestinationContract.
func (c *Client) Attest(ctx context.Context, req attestation.Request) ([]byte, error) {
	data, err := attestation.EncodeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %v", err)
	}
	return c.Call(ctx, data, req.DestinationContract)
}

// Call calls durin_call with raw calldata.
func (c *Client) Call(ctx context.Context, callData []byte, to ethcommon.Address) ([]byte, error) {
	var sig hexutil.Bytes
	args := service.CallArgs{
		CallData: hexutil.Encode(callData),
		To:       to.Hex(),
	}
	if err := c.c.CallContext(ctx, &sig, service.Namespace+"_call", args); err != nil {
		return nil, fmt.Errorf("calling durin_call api: %w", err)
	}
	return sig, nil
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.c.Close()
}

package forwarder

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/textileio/attestation-core/attestation"
	"github.com/textileio/attestation-core/chainapi"
	"github.com/textileio/attestation-core/cmd/attestd/chains"
	"github.com/textileio/attestation-core/cmd/attestd/contractclient"
)

// Forwarder talks to forwarding contracts deployed on the destination chain.
// The canonical message is always produced by the contract itself, so what gets
// signed is exactly what the contract later re-derives.
type Forwarder struct {
	chain chains.Chain
}

var (
	_ chainapi.NonceSource    = (*Forwarder)(nil)
	_ chainapi.MessageBuilder = (*Forwarder)(nil)
)

// New returns a Forwarder for the destination chain.
func New(chain chains.Chain) *Forwarder {
	return &Forwarder{chain: chain}
}

// GetNonce returns the next expected nonce of requester.
func (f *Forwarder) GetNonce(ctx context.Context, forwarder, requester common.Address) (*big.Int, error) {
	fc, err := contractclient.NewForwarderCaller(forwarder, f.chain.Caller)
	if err != nil {
		return nil, attestation.NewError(attestation.ErrOracle, "binding forwarder contract: %s", err)
	}
	opts, cancel := f.chain.CallOpts(ctx)
	defer cancel()
	nonce, err := fc.GetNonce(opts, requester)
	if err != nil {
		return nil, attestation.NewError(
			attestation.ErrOracle,
			"calling getNonce(%s) on %s: %s",
			requester.Hex(),
			forwarder.Hex(),
			err,
		)
	}
	return nonce, nil
}

// CreateMessage returns the message bytes the forwarder will verify a signature against.
func (f *Forwarder) CreateMessage(ctx context.Context, owner common.Address, req attestation.Request) ([]byte, error) {
	fc, err := contractclient.NewForwarderCaller(req.DestinationContract, f.chain.Caller)
	if err != nil {
		return nil, attestation.NewError(attestation.ErrOracle, "binding forwarder contract: %s", err)
	}
	opts, cancel := f.chain.CallOpts(ctx)
	defer cancel()
	msg, err := fc.CreateMessage(
		opts,
		req.Requester,
		owner,
		req.Nonce,
		req.SourceChainID,
		req.NFTContract,
		req.TokenID,
		req.Timestamp,
	)
	if err != nil {
		return nil, attestation.NewError(
			attestation.ErrOracle,
			"calling createMessage on %s: %s",
			req.DestinationContract.Hex(),
			err,
		)
	}
	if len(msg) == 0 {
		return nil, attestation.NewError(attestation.ErrOracle, "createMessage on %s returned no bytes", req.DestinationContract.Hex())
	}
	return msg, nil
}

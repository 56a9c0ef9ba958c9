package chainapi

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/textileio/attestation-core/attestation"
)

// OwnershipOracle resolves current NFT ownership on a source chain.
type OwnershipOracle interface {
	// OwnerOf returns the current owner of tokenID in nftContract on chainID.
	OwnerOf(ctx context.Context, chainID *big.Int, nftContract common.Address, tokenID *big.Int) (common.Address, error)
}

// NonceSource reads the authoritative next nonce of a requester from a forwarding contract.
type NonceSource interface {
	GetNonce(ctx context.Context, forwarder, requester common.Address) (*big.Int, error)
}

// MessageBuilder asks a forwarding contract for the canonical message it will later verify.
type MessageBuilder interface {
	CreateMessage(ctx context.Context, owner common.Address, req attestation.Request) ([]byte, error)
}

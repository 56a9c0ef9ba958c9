package attestation

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Request is a decoded ownership attestation request. It is built once per call
// and never mutated.
type Request struct {
	// Requester is the address on whose behalf the proof is issued.
	Requester common.Address
	// Authorizer may submit the request on the requester's behalf.
	Authorizer common.Address
	// Nonce is the requester's replay-protection counter on the forwarder.
	Nonce *big.Int
	// SourceChainID identifies the chain holding the NFT.
	SourceChainID *big.Int
	NFTContract   common.Address
	TokenID       *big.Int
	// DestinationChainID is carried through but not re-validated.
	DestinationChainID *big.Int
	// Timestamp is opaque here; the forwarder enforces any expiry.
	Timestamp *big.Int
	// DestinationContract is the forwarding contract the call was addressed to.
	DestinationContract common.Address
}

// String returns a loggable representation of the request.
func (r Request) String() string {
	return fmt.Sprintf(
		"requester=%s authorizer=%s nonce=%s chain=%s nft=%s/%s target=%s ts=%s to=%s",
		r.Requester.Hex(),
		r.Authorizer.Hex(),
		r.Nonce,
		r.SourceChainID,
		r.NFTContract.Hex(),
		r.TokenID,
		r.DestinationChainID,
		r.Timestamp,
		r.DestinationContract.Hex(),
	)
}

// Attestation is a signature over the canonical message returned by the forwarder.
type Attestation struct {
	Message   []byte
	Signature []byte
}

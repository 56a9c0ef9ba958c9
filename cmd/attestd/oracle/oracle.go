package oracle

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/textileio/attestation-core/attestation"
	"github.com/textileio/attestation-core/chainapi"
	"github.com/textileio/attestation-core/cmd/attestd/chains"
	"github.com/textileio/attestation-core/cmd/attestd/contractclient"
	logging "github.com/textileio/go-log/v2"
)

var log = logging.Logger("attestd/oracle")

// Oracle resolves current NFT ownership with ERC721 ownerOf view calls.
// Results are never cached since ownership can change between requests.
type Oracle struct {
	chains *chains.Registry
}

var _ chainapi.OwnershipOracle = (*Oracle)(nil)

// New returns a new Oracle.
func New(registry *chains.Registry) *Oracle {
	return &Oracle{chains: registry}
}

// OwnerOf returns the current owner of tokenID. An unmapped chain id is an
// ErrConfiguration error; a reverted call and an unreachable node are both ErrOracle.
func (o *Oracle) OwnerOf(
	ctx context.Context,
	chainID *big.Int,
	nftContract common.Address,
	tokenID *big.Int,
) (common.Address, error) {
	chain, err := o.chains.Get(chainID)
	if err != nil {
		return common.Address{}, err
	}
	erc721, err := contractclient.NewERC721Caller(nftContract, chain.Caller)
	if err != nil {
		return common.Address{}, attestation.NewError(attestation.ErrOracle, "binding erc721 contract: %s", err)
	}

	opts, cancel := chain.CallOpts(ctx)
	defer cancel()
	owner, err := erc721.OwnerOf(opts, tokenID)
	if err != nil {
		return common.Address{}, attestation.NewError(
			attestation.ErrOracle,
			"calling ownerOf(%s) on %s at chain %s: %s",
			tokenID,
			nftContract.Hex(),
			chainID,
			err,
		)
	}
	log.Debugf("owner of %s/%s at chain %s is %s", nftContract.Hex(), tokenID, chainID, owner.Hex())
	return owner, nil
}

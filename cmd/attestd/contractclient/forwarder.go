package contractclient

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ForwarderABI is the read-only subset of the forwarding contract ABI.
const ForwarderABI = "[{\"inputs\":[{\"internalType\":\"address\",\"name\":\"from\",\"type\":\"address\"}],\"name\":\"getNonce\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"signer\",\"type\":\"address\"},{\"internalType\":\"address\",\"name\":\"authorizer\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"nonce\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"nftChainId\",\"type\":\"uint256\"},{\"internalType\":\"address\",\"name\":\"nftContract\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"nftTokenId\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"timestamp\",\"type\":\"uint256\"}],\"name\":\"createMessage\",\"outputs\":[{\"internalType\":\"bytes\",\"name\":\"\",\"type\":\"bytes\"}],\"stateMutability\":\"view\",\"type\":\"function\"}]"

// ForwarderCaller is a read-only Go binding around a forwarding contract.
type ForwarderCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewForwarderCaller creates a new read-only instance of a forwarder, bound to a specific deployed contract.
func NewForwarderCaller(address common.Address, caller bind.ContractCaller) (*ForwarderCaller, error) {
	parsed, err := abi.JSON(strings.NewReader(ForwarderABI))
	if err != nil {
		return nil, err
	}
	return &ForwarderCaller{contract: bind.NewBoundContract(address, parsed, caller, nil, nil)}, nil
}

// GetNonce is a free data retrieval call binding the contract method getNonce.
//
// Solidity: function getNonce(address from) view returns(uint256)
func (_Forwarder *ForwarderCaller) GetNonce(opts *bind.CallOpts, from common.Address) (*big.Int, error) {
	var out []interface{}
	err := _Forwarder.contract.Call(opts, &out, "getNonce", from)

	if err != nil {
		return *new(*big.Int), err
	}

	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)

	return out0, err
}

// CreateMessage is a free data retrieval call binding the contract method createMessage.
//
// Solidity: function createMessage(address signer, address authorizer, uint256 nonce, uint256 nftChainId,
// address nftContract, uint256 nftTokenId, uint256 timestamp) view returns(bytes)
func (_Forwarder *ForwarderCaller) CreateMessage(
	opts *bind.CallOpts,
	signer common.Address,
	authorizer common.Address,
	nonce *big.Int,
	nftChainId *big.Int,
	nftContract common.Address,
	nftTokenId *big.Int,
	timestamp *big.Int,
) ([]byte, error) {
	var out []interface{}
	err := _Forwarder.contract.Call(opts, &out, "createMessage",
		signer, authorizer, nonce, nftChainId, nftContract, nftTokenId, timestamp)

	if err != nil {
		return *new([]byte), err
	}

	out0 := *abi.ConvertType(out[0], new([]byte)).(*[]byte)

	return out0, err
}

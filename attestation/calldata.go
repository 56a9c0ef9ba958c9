package attestation

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SchemaVersion is the calldata layout accepted by DecodeRequest.
//
// Version 2 is the static tuple
// (address from, address authorizer, uint256 nonce, uint256 nftChainId,
// address nftContract, uint256 nftTokenId, uint256 targetChainId, uint256 timestamp).
// Earlier layouts without the authorizer, chain ids or timestamp are rejected.
const SchemaVersion = 2

const wordLength = 32

var (
	addressType = mustType("address")
	uint256Type = mustType("uint256")

	schema = abi.Arguments{
		{Name: "from", Type: addressType},
		{Name: "authorizer", Type: addressType},
		{Name: "nonce", Type: uint256Type},
		{Name: "nftChainId", Type: uint256Type},
		{Name: "nftContract", Type: addressType},
		{Name: "nftTokenId", Type: uint256Type},
		{Name: "targetChainId", Type: uint256Type},
		{Name: "timestamp", Type: uint256Type},
	}

	// CalldataLength is the exact byte length of an encoded request.
	CalldataLength = len(schema) * wordLength

	addressPadding = make([]byte, wordLength-common.AddressLength)
	maxUint256     = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("creating abi type %s: %s", t, err))
	}
	return typ
}

// ParseCall decodes the hex encoded inbound parameters of a call. callData and to
// must be 0x-prefixed.
func ParseCall(callData, to string) (Request, error) {
	data, err := hexutil.Decode(callData)
	if err != nil {
		return Request{}, NewError(ErrDecode, "decoding calldata hex: %s", err)
	}
	toBytes, err := hexutil.Decode(to)
	if err != nil {
		return Request{}, NewError(ErrDecode, "decoding to address hex: %s", err)
	}
	if len(toBytes) != common.AddressLength {
		return Request{}, NewError(ErrDecode, "to address has %d bytes", len(toBytes))
	}
	return DecodeRequest(data, common.BytesToAddress(toBytes))
}

// DecodeRequest decodes calldata in the current schema. The result is complete or
// an ErrDecode is returned; there is no partial decode.
func DecodeRequest(data []byte, to common.Address) (Request, error) {
	if len(data) != CalldataLength {
		return Request{}, NewError(ErrDecode, "calldata has %d bytes, expected %d", len(data), CalldataLength)
	}
	for i, arg := range schema {
		if arg.Type.T != abi.AddressTy {
			continue
		}
		word := data[i*wordLength : (i+1)*wordLength]
		if !bytes.Equal(word[:len(addressPadding)], addressPadding) {
			return Request{}, NewError(ErrDecode, "field %s is not a canonical address", arg.Name)
		}
	}

	values, err := schema.Unpack(data)
	if err != nil {
		return Request{}, NewError(ErrDecode, "unpacking calldata: %s", err)
	}
	if len(values) != len(schema) {
		return Request{}, NewError(ErrDecode, "unpacked %d fields, expected %d", len(values), len(schema))
	}

	return Request{
		Requester:           *abi.ConvertType(values[0], new(common.Address)).(*common.Address),
		Authorizer:          *abi.ConvertType(values[1], new(common.Address)).(*common.Address),
		Nonce:               *abi.ConvertType(values[2], new(*big.Int)).(**big.Int),
		SourceChainID:       *abi.ConvertType(values[3], new(*big.Int)).(**big.Int),
		NFTContract:         *abi.ConvertType(values[4], new(common.Address)).(*common.Address),
		TokenID:             *abi.ConvertType(values[5], new(*big.Int)).(**big.Int),
		DestinationChainID:  *abi.ConvertType(values[6], new(*big.Int)).(**big.Int),
		Timestamp:           *abi.ConvertType(values[7], new(*big.Int)).(**big.Int),
		DestinationContract: to,
	}, nil
}

// EncodeRequest is the inverse of DecodeRequest. DestinationContract isn't part of
// the calldata and is ignored.
func EncodeRequest(r Request) ([]byte, error) {
	for name, v := range map[string]*big.Int{
		"nonce":         r.Nonce,
		"nftChainId":    r.SourceChainID,
		"nftTokenId":    r.TokenID,
		"targetChainId": r.DestinationChainID,
		"timestamp":     r.Timestamp,
	} {
		if v == nil {
			return nil, NewError(ErrDecode, "field %s is missing", name)
		}
		if v.Sign() < 0 || v.Cmp(maxUint256) > 0 {
			return nil, NewError(ErrDecode, "field %s is out of uint256 range", name)
		}
	}
	data, err := schema.Pack(
		r.Requester,
		r.Authorizer,
		r.Nonce,
		r.SourceChainID,
		r.NFTContract,
		r.TokenID,
		r.DestinationChainID,
		r.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("packing calldata: %s", err)
	}
	return data, nil
}

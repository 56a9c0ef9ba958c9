package fakebackend

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrReverted is returned by handlers to simulate a contract revert.
var ErrReverted = errors.New("execution reverted")

// Handler answers a view call with the method outputs.
type Handler func(args []interface{}) ([]interface{}, error)

// FakeBackend is an in-memory bind.ContractCaller that dispatches eth_call by
// contract address and method selector to registered handlers.
type FakeBackend struct {
	lock     sync.Mutex
	abis     []abi.ABI
	handlers map[common.Address]map[string]Handler
	calls    map[common.Address]map[string]int
	err      error
}

// New returns a FakeBackend able to decode calls for the provided JSON ABIs.
func New(abis ...string) (*FakeBackend, error) {
	b := &FakeBackend{
		handlers: map[common.Address]map[string]Handler{},
		calls:    map[common.Address]map[string]int{},
	}
	for _, a := range abis {
		parsed, err := abi.JSON(strings.NewReader(a))
		if err != nil {
			return nil, fmt.Errorf("parsing abi: %s", err)
		}
		b.abis = append(b.abis, parsed)
	}
	return b, nil
}

// Handle registers h for method on the contract deployed at addr.
func (b *FakeBackend) Handle(addr common.Address, method string, h Handler) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if _, ok := b.handlers[addr]; !ok {
		b.handlers[addr] = map[string]Handler{}
	}
	b.handlers[addr][method] = h
}

// FailAll makes every call fail with err, simulating an unreachable node.
func (b *FakeBackend) FailAll(err error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.err = err
}

// CodeAt implements bind.ContractCaller.
func (b *FakeBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.err != nil {
		return nil, b.err
	}
	if _, ok := b.handlers[contract]; !ok {
		return nil, nil
	}
	return []byte{0x60, 0x80}, nil
}

// CallContract implements bind.ContractCaller.
func (b *FakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if call.To == nil || len(call.Data) < 4 {
		return nil, errors.New("malformed call")
	}

	b.lock.Lock()
	if b.err != nil {
		err := b.err
		b.lock.Unlock()
		return nil, err
	}
	method, err := b.method(call.Data[:4])
	if err != nil {
		b.lock.Unlock()
		return nil, err
	}
	if _, ok := b.calls[*call.To]; !ok {
		b.calls[*call.To] = map[string]int{}
	}
	b.calls[*call.To][method.Name]++
	h, ok := b.handlers[*call.To][method.Name]
	b.lock.Unlock()

	if !ok {
		// An undeployed contract answers every call with empty output.
		return nil, nil
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("unpacking inputs: %s", err)
	}
	outs, err := h(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(outs...)
}

// Close is a no-op, present so FakeBackend can stand in for a chain client.
func (b *FakeBackend) Close() {}

// Calls returns how many times method was called on addr.
func (b *FakeBackend) Calls(addr common.Address, method string) int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.calls[addr][method]
}

func (b *FakeBackend) method(id []byte) (*abi.Method, error) {
	for _, a := range b.abis {
		if m, err := a.MethodById(id); err == nil {
			return m, nil
		}
	}
	return nil, fmt.Errorf("no method with id %x", id)
}

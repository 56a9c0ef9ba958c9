package chains

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/textileio/attestation-core/attestation"
	logging "github.com/textileio/go-log/v2"
)

var log = logging.Logger("attestd/chains")

// Config describes how to reach one chain.
type Config struct {
	ChainID  *big.Int
	Endpoint string
	// Timeout bounds dialing and each view call. Zero leaves calls bounded only by
	// the request context and the client's own defaults.
	Timeout time.Duration
}

// Backend is a chain client able to serve view calls.
type Backend interface {
	bind.ContractCaller
	Close()
}

// Chain is a resolved, ready to use chain client.
type Chain struct {
	ID      *big.Int
	Caller  bind.ContractCaller
	Timeout time.Duration
}

// CallOpts returns call options bound to ctx and the chain timeout. The returned
// cancel func must always be called.
func (c Chain) CallOpts(ctx context.Context) (*bind.CallOpts, context.CancelFunc) {
	if c.Timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, c.Timeout)
		return &bind.CallOpts{Context: ctx}, cancel
	}
	ctx, cancel := context.WithCancel(ctx)
	return &bind.CallOpts{Context: ctx}, cancel
}

type entry struct {
	backend Backend
	timeout time.Duration
}

// Registry is the static mapping from chain id to chain client. It's built once at
// startup and only read afterwards, so it's safe for concurrent use.
type Registry struct {
	chains map[string]entry
}

// Dial connects to every configured chain.
func Dial(ctx context.Context, configs []Config) (*Registry, error) {
	backends := make(map[string]Backend, len(configs))
	timeouts := make(map[string]time.Duration, len(configs))
	for _, c := range configs {
		if c.ChainID == nil {
			closeAll(backends)
			return nil, fmt.Errorf("chain id is missing for endpoint")
		}
		key := c.ChainID.String()
		if _, ok := backends[key]; ok {
			closeAll(backends)
			return nil, fmt.Errorf("chain %s configured twice", key)
		}
		dialCtx, cancel := ctx, context.CancelFunc(func() {})
		if c.Timeout > 0 {
			dialCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		}
		client, err := ethclient.DialContext(dialCtx, c.Endpoint)
		cancel()
		if err != nil {
			closeAll(backends)
			return nil, fmt.Errorf("dialing chain %s: %s", key, err)
		}
		log.Infof("chain %s client ready", key)
		backends[key] = client
		timeouts[key] = c.Timeout
	}
	return New(backends, timeouts), nil
}

// New builds a Registry from already created backends, keyed by decimal chain id.
func New(backends map[string]Backend, timeouts map[string]time.Duration) *Registry {
	r := &Registry{chains: make(map[string]entry, len(backends))}
	for id, b := range backends {
		r.chains[id] = entry{backend: b, timeout: timeouts[id]}
	}
	return r
}

// Get returns the chain client for chainID, or an ErrConfiguration error if
// there's none.
func (r *Registry) Get(chainID *big.Int) (Chain, error) {
	if chainID == nil {
		return Chain{}, attestation.NewError(attestation.ErrConfiguration, "chain id is nil")
	}
	e, ok := r.chains[chainID.String()]
	if !ok {
		return Chain{}, attestation.NewError(attestation.ErrConfiguration, "no endpoint for chain %s", chainID)
	}
	return Chain{ID: chainID, Caller: e.backend, Timeout: e.timeout}, nil
}

// Len returns the number of configured chains.
func (r *Registry) Len() int {
	return len(r.chains)
}

// Close closes every chain client.
func (r *Registry) Close() {
	for id, e := range r.chains {
		e.backend.Close()
		log.Debugf("chain %s client closed", id)
	}
}

func closeAll(backends map[string]Backend) {
	for _, b := range backends {
		b.Close()
	}
}

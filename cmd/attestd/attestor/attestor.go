package attestor

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oklog/ulid/v2"
	"github.com/textileio/attestation-core/attestation"
	"github.com/textileio/attestation-core/chainapi"
	"github.com/textileio/attestation-core/cmd/attestd/metrics"
	logging "github.com/textileio/go-log/v2"
	"golang.org/x/sync/errgroup"
)

var log = logging.Logger("attestd/attestor")

// Stage is a step of the attestation state machine.
type Stage int

const (
	// Decoding parses the inbound calldata.
	Decoding Stage = iota
	// VerifyingOwnership resolves the current NFT owner on the source chain.
	VerifyingOwnership
	// ValidatingNonce checks the request nonce against the forwarder.
	ValidatingNonce
	// BuildingMessage asks the forwarder for the canonical message.
	BuildingMessage
	// Signing signs the canonical message.
	Signing
	// Done is the terminal success state.
	Done
	// Errored is the terminal failure state, reachable from any other.
	Errored
)

func (s Stage) String() string {
	switch s {
	case Decoding:
		return "decoding"
	case VerifyingOwnership:
		return "verifying_ownership"
	case ValidatingNonce:
		return "validating_nonce"
	case BuildingMessage:
		return "building_message"
	case Signing:
		return "signing"
	case Done:
		return "done"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Signer signs canonical messages.
type Signer interface {
	Sign(message []byte) ([]byte, error)
}

// Deps comprises the Attestor dependencies.
type Deps struct {
	Oracle   chainapi.OwnershipOracle
	Nonces   chainapi.NonceSource
	Messages chainapi.MessageBuilder
	Signer   Signer
}

// Attestor turns attestation requests into signatures. It holds no per-request
// state, so a single Attestor serves concurrent requests.
type Attestor struct {
	config  config
	deps    Deps
	metrics metricsCollector
}

// New returns a new Attestor.
func New(deps Deps, opts ...Option) (*Attestor, error) {
	if deps.Oracle == nil || deps.Nonces == nil || deps.Messages == nil || deps.Signer == nil {
		return nil, errors.New("all dependencies are required")
	}
	cfg := defaultConfig
	for _, op := range opts {
		if err := op(&cfg); err != nil {
			return nil, fmt.Errorf("applying option: %s", err)
		}
	}
	a := &Attestor{config: cfg, deps: deps}
	a.initMetrics(metrics.Meter)
	return a, nil
}

// run is the state of a single request.
type run struct {
	id    ulid.ULID
	stage Stage

	// failedAt is the stage that moved the run to Errored.
	failedAt Stage

	callData string
	to       string

	req   attestation.Request
	owner common.Address
	nonce *big.Int
	// Only set when reads run concurrently.
	nonceErr error

	message   []byte
	signature []byte
}

// Attest runs the full pipeline for hex encoded calldata addressed to the
// forwarder at to. The first failing stage ends the run; the returned error
// carries its kind (see attestation.KindOf).
func (a *Attestor) Attest(ctx context.Context, callData, to string) (attestation.Attestation, error) {
	r := &run{
		id:       ulid.MustNew(ulid.Now(), rand.Reader),
		stage:    Decoding,
		callData: callData,
		to:       to,
	}
	start := time.Now()

	var err error
	for r.stage != Done && r.stage != Errored {
		if err = a.step(ctx, r); err != nil {
			r.failedAt = r.stage
			r.stage = Errored
		}
	}
	a.metrics.onRequest(ctx, r.failedAt, start, err)

	if r.stage == Errored {
		switch {
		case errors.Is(err, attestation.ErrReplay) || errors.Is(err, attestation.ErrDecode):
			log.Warnf("request %s rejected at %s: %s", r.id, r.failedAt, err)
		case !attestation.IsKnown(err):
			log.Errorf("request %s failed at %s with unclassified error: %s", r.id, r.failedAt, err)
		default:
			log.Errorf("request %s failed at %s: %s", r.id, r.failedAt, err)
		}
		return attestation.Attestation{}, err
	}

	log.Infof("request %s attested %s/%s for %s", r.id, r.req.NFTContract.Hex(), r.req.TokenID, r.req.Requester.Hex())
	return attestation.Attestation{Message: r.message, Signature: r.signature}, nil
}

// step runs the current stage and advances r on success.
func (a *Attestor) step(ctx context.Context, r *run) error {
	switch r.stage {
	case Decoding:
		req, err := attestation.ParseCall(r.callData, r.to)
		if err != nil {
			return err
		}
		r.req = req
		log.Debugf("request %s decoded: %s", r.id, req)
		r.stage = VerifyingOwnership

	case VerifyingOwnership:
		var err error
		if a.config.concurrentReads {
			err = a.readConcurrently(ctx, r)
		} else {
			r.owner, err = a.deps.Oracle.OwnerOf(ctx, r.req.SourceChainID, r.req.NFTContract, r.req.TokenID)
		}
		if err != nil {
			return err
		}
		r.stage = ValidatingNonce

	case ValidatingNonce:
		if !a.config.concurrentReads {
			r.nonce, r.nonceErr = a.deps.Nonces.GetNonce(ctx, r.req.DestinationContract, r.req.Requester)
		}
		if r.nonceErr != nil {
			return r.nonceErr
		}
		if err := ValidateNonce(r.req.Nonce, r.nonce); err != nil {
			return err
		}
		r.stage = BuildingMessage

	case BuildingMessage:
		msg, err := a.deps.Messages.CreateMessage(ctx, r.owner, r.req)
		if err != nil {
			return err
		}
		r.message = msg
		r.stage = Signing

	case Signing:
		sig, err := a.deps.Signer.Sign(r.message)
		if err != nil {
			return fmt.Errorf("signing message: %s", err)
		}
		r.signature = sig
		r.stage = Done

	default:
		return fmt.Errorf("unexpected stage %s", r.stage)
	}
	return nil
}

// readConcurrently fetches the owner and the nonce in parallel. The owner error is
// returned; the nonce result is kept for the next stage. Neither read cancels the
// other, so a failing nonce read never turns into an ownership failure.
func (a *Attestor) readConcurrently(ctx context.Context, r *run) error {
	var ownerErr error
	var g errgroup.Group
	g.Go(func() error {
		r.owner, ownerErr = a.deps.Oracle.OwnerOf(ctx, r.req.SourceChainID, r.req.NFTContract, r.req.TokenID)
		return ownerErr
	})
	g.Go(func() error {
		r.nonce, r.nonceErr = a.deps.Nonces.GetNonce(ctx, r.req.DestinationContract, r.req.Requester)
		return r.nonceErr
	})
	_ = g.Wait()
	return ownerErr
}

// ValidateNonce requires the claimed nonce to equal the forwarder's expected one.
func ValidateNonce(claimed, expected *big.Int) error {
	if claimed == nil || expected == nil {
		return attestation.NewError(attestation.ErrReplay, "missing nonce")
	}
	if claimed.Cmp(expected) != 0 {
		return attestation.NewError(attestation.ErrReplay, "nonce %s doesn't match expected %s", claimed, expected)
	}
	return nil
}

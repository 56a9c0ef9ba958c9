package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/cors"
	"github.com/textileio/attestation-core/attestation"
	"github.com/textileio/attestation-core/common"
	logging "github.com/textileio/go-log/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// Namespace is the JSON-RPC namespace; the exposed method is durin_call.
	Namespace = "durin"

	// InternalErrorCode is the JSON-RPC code returned for every failure.
	InternalErrorCode = -32603
	// InternalErrorMessage is the fixed message returned for every failure.
	InternalErrorMessage = "internal error"
)

var log = logging.Logger("attestd/service")

// Attestor produces attestations for inbound calls.
type Attestor interface {
	Attest(ctx context.Context, callData, to string) (attestation.Attestation, error)
}

// Config is the service config.
type Config struct {
	Listener net.Listener
}

// Service serves the durin JSON-RPC api over HTTP.
type Service struct {
	rpcServer  *rpc.Server
	httpServer *http.Server
}

// New returns a new service listening on config.Listener.
func New(config Config, attestor Attestor) (*Service, error) {
	if config.Listener == nil {
		return nil, errors.New("listener is nil")
	}
	handler, rpcServer, err := createHandler(attestor)
	if err != nil {
		return nil, err
	}
	s := &Service{
		rpcServer:  rpcServer,
		httpServer: &http.Server{Handler: handler},
	}
	go func() {
		if err := s.httpServer.Serve(config.Listener); err != nil && err != http.ErrServerClosed {
			log.Errorf("serve error: %v", err)
		}
	}()

	log.Infof("service listening at %s", config.Listener.Addr())
	return s, nil
}

func createHandler(attestor Attestor) (http.Handler, *rpc.Server, error) {
	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName(Namespace, &API{attestor: attestor}); err != nil {
		return nil, nil, fmt.Errorf("registering api: %s", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/", otelhttp.NewHandler(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(positionalParams(rpcServer)), Namespace+"_call"))

	return common.RecoverHandler(log, mux), rpcServer, nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Close stops the server and cleans up all internally created resources.
func (s *Service) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)
	s.rpcServer.Stop()
	if err != nil {
		return fmt.Errorf("shutting down http server: %s", err)
	}
	log.Info("service was shutdown")
	return nil
}

// CallArgs is the single parameter of durin_call.
type CallArgs struct {
	CallData string `json:"callData"`
	To       string `json:"to"`
	// ABI is sent by some clients and ignored.
	ABI json.RawMessage `json:"abi,omitempty"`
}

// API is the durin namespace.
type API struct {
	attestor Attestor
}

// Call returns a signature attesting the ownership described by the calldata.
// params is decoded here rather than by the rpc server so that malformed
// arguments fail like any other request. Failures never reveal detail to the caller.
func (api *API) Call(ctx context.Context, params *json.RawMessage) (hexutil.Bytes, error) {
	if params == nil {
		log.Debug("durin_call without params")
		return nil, internalError{}
	}
	var args CallArgs
	if err := json.Unmarshal(*params, &args); err != nil {
		log.Debugf("decoding durin_call params: %s", err)
		return nil, internalError{}
	}
	att, err := api.attestor.Attest(ctx, args.CallData, args.To)
	if err != nil {
		return nil, internalError{}
	}
	return att.Signature, nil
}

type internalError struct{}

func (internalError) Error() string  { return InternalErrorMessage }
func (internalError) ErrorCode() int { return InternalErrorCode }

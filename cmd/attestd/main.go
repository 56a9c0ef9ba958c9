package main

import (
	"context"
	"errors"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/textileio/attestation-core/attestation"
	"github.com/textileio/attestation-core/cmd/attestd/attestor"
	"github.com/textileio/attestation-core/cmd/attestd/chains"
	"github.com/textileio/attestation-core/cmd/attestd/forwarder"
	"github.com/textileio/attestation-core/cmd/attestd/oracle"
	"github.com/textileio/attestation-core/cmd/attestd/service"
	"github.com/textileio/attestation-core/cmd/attestd/signer"
	"github.com/textileio/attestation-core/common"
	"github.com/textileio/cli"
	logging "github.com/textileio/go-log/v2"
)

var (
	daemonName = "attestd"
	log        = logging.Logger(daemonName)
	v          = viper.New()
	cv         = viper.New()
)

func init() {
	flags := []cli.Flag{
		{Name: "config-path", DefValue: "./attestd.yaml", Description: "Path to the chain-apis config file"},
		{Name: "listen-addr", DefValue: ":8080", Description: "JSON-RPC listen address"},
		{Name: "destination-chain-id", DefValue: "", Description: "Chain id hosting the forwarder contract"},
		{Name: "signer-private-key", DefValue: "", Description: "Hex encoded secp256k1 key used to sign attestations"},
		{Name: "concurrent-reads", DefValue: false, Description: "Fetch owner and nonce concurrently"},
		{Name: "metrics-addr", DefValue: ":9090", Description: "Prometheus listen address"},
		{Name: "log-debug", DefValue: false, Description: "Enable debug level logging"},
		{Name: "log-json", DefValue: false, Description: "Enable structured logging"},
	}

	cli.ConfigureCLI(v, "ATTEST", flags, rootCmd.Flags())
}

var rootCmd = &cobra.Command{
	Use:   daemonName,
	Short: "attestd signs cross-chain NFT ownership attestations",
	Long:  "attestd signs cross-chain NFT ownership attestations served over the durin_call JSON-RPC method",
	PersistentPreRun: func(c *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			cli.CheckErrf("loading .env file: %v", err)
		}
		cli.ExpandEnvVars(v, v.AllSettings())
		err := cli.ConfigureLogging(v, nil)
		cli.CheckErrf("setting log levels: %v", err)
	},
	Run: func(c *cobra.Command, args []string) {
		settings, err := cli.MarshalConfig(v, !v.GetBool("log-json"), "signer-private-key")
		cli.CheckErrf("marshaling config: %v", err)
		log.Infof("loaded config: %s", string(settings))

		cv.SetConfigFile(v.GetString("config-path"))
		err = cv.ReadInConfig()
		cli.CheckErrf("reading config: %v", err)

		err = common.SetupInstrumentation(v.GetString("metrics-addr"))
		cli.CheckErrf("booting instrumentation: %v", err)

		configs, err := chainConfigs(cv)
		cli.CheckErrf("parsing chain-apis: %v", err)
		destID, err := destinationChainID(v.GetString("destination-chain-id"))
		cli.CheckErrf("parsing destination-chain-id: %v", err)

		s, err := signer.NewFromHex(v.GetString("signer-private-key"))
		cli.CheckErrf("creating signer: %v", err)
		log.Infof("signing attestations as %s", s.Address())

		registry, err := chains.Dial(context.Background(), configs)
		cli.CheckErrf("dialing chains: %v", err)
		log.Infof("serving %d chains, calldata schema v%d (%d bytes)",
			registry.Len(), attestation.SchemaVersion, attestation.CalldataLength)
		destination, err := registry.Get(destID)
		cli.CheckErrf("resolving destination chain: %v", err)

		fw := forwarder.New(destination)
		a, err := attestor.New(
			attestor.Deps{
				Oracle:   oracle.New(registry),
				Nonces:   fw,
				Messages: fw,
				Signer:   s,
			},
			attestor.WithConcurrentReads(v.GetBool("concurrent-reads")),
		)
		cli.CheckErrf("creating attestor: %v", err)

		listener, err := net.Listen("tcp", v.GetString("listen-addr"))
		cli.CheckErrf("creating listener: %v", err)

		serv, err := service.New(service.Config{Listener: listener}, a)
		cli.CheckErrf("creating service: %v", err)

		cli.HandleInterrupt(func() {
			log.Info("Gracefully stopping... (press Ctrl+C again to force)")
			if err := serv.Close(); err != nil {
				log.Errorf("closing service: %v", err)
			}
			registry.Close()
			log.Info("Closed.")
		})
	},
}

func main() {
	cli.CheckErrf("executing root cmd: %v", rootCmd.Execute())
}

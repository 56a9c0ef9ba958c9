package main

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"sort"

	"github.com/spf13/viper"
	"github.com/textileio/attestation-core/cmd/attestd/chains"
)

// chainConfigs reads the chain-apis map from cv. Endpoints may reference
// environment variables, e.g. https://mainnet.infura.io/v3/${INFURA_API_KEY}.
func chainConfigs(cv *viper.Viper) ([]chains.Config, error) {
	chainApisMap := cv.GetStringMap("chain-apis")
	if len(chainApisMap) == 0 {
		return nil, errors.New("no chain-apis configured")
	}

	ids := make([]string, 0, len(chainApisMap))
	for chainID := range chainApisMap {
		ids = append(ids, chainID)
	}
	sort.Strings(ids)

	configs := make([]chains.Config, 0, len(ids))
	for _, chainID := range ids {
		id, ok := new(big.Int).SetString(chainID, 10)
		if !ok || id.Sign() < 0 {
			return nil, fmt.Errorf("parsing chain id %s", chainID)
		}
		sub := cv.Sub(fmt.Sprintf("chain-apis.%s", chainID))
		if sub == nil {
			return nil, fmt.Errorf("chain %s has no settings", chainID)
		}
		endpoint := os.ExpandEnv(sub.GetString("endpoint"))
		if endpoint == "" {
			return nil, fmt.Errorf("chain %s has no endpoint", chainID)
		}
		configs = append(configs, chains.Config{
			ChainID:  id,
			Endpoint: endpoint,
			Timeout:  sub.GetDuration("timeout"),
		})
	}
	return configs, nil
}

func destinationChainID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("parsing destination chain id %q", s)
	}
	return id, nil
}

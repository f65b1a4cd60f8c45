package anchor

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

type Config struct {
	Enabled             bool   `envconfig:"BLOCKCHAIN_ENABLED" default:"false"`
	RPCUrl              string `envconfig:"BLOCKCHAIN_RPC_URL" default:"https://rpc-amoy.polygon.technology"`
	PrivateKey          string `envconfig:"BLOCKCHAIN_PRIVATE_KEY"`
	ContractAddress     string `envconfig:"BLOCKCHAIN_CONTRACT_ADDRESS"`
	Network             string `envconfig:"BLOCKCHAIN_NETWORK" default:"polygon-amoy"`
	ChainID             int64  `envconfig:"BLOCKCHAIN_CHAIN_ID" default:"80002"`
	ConfirmationTimeout int    `envconfig:"BLOCKCHAIN_CONFIRMATION_TIMEOUT" default:"120"` // in seconds
}

func LoadConfig() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, err
	}
	return c, nil
}

// New selects the anchoring backend once at startup. With the chain
// disabled the mock keeps the product demoable without real funds.
func New(c *Config, logger zerolog.Logger) (Anchorer, error) {
	if !c.Enabled {
		logger.Info().Str("network", c.Network+"-mock").Msg("blockchain disabled, using mock anchorer")
		return NewMockAnchorer(c.Network + "-mock"), nil
	}
	return NewEVMAnchorer(c, logger)
}

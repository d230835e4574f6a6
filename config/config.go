// Package config loads the relay daemon configuration from a YAML file with
// environment variable overrides. Secrets (signing keys, database URL) are
// expected from the environment, never from the file.
package config

import (
	"strings"
	"time"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment overrides, e.g. RELAY_LISTEN_ADDR.
const envPrefix = "RELAY"

// Chain is one chain entry in the configuration file.
type Chain struct {
	Name               string           `mapstructure:"name"`
	Type               string           `mapstructure:"type"`
	ChainID            uint64           `mapstructure:"chain_id"`
	RpcUrl             string           `mapstructure:"rpc_url"`
	WaitNBlocks        uint64           `mapstructure:"wait_n_blocks"`
	PrivateKey         string           `mapstructure:"private_key"`
	EscrowFactory      string           `mapstructure:"escrow_factory"`
	EscrowInitCodeHash string           `mapstructure:"escrow_init_code_hash"`
	SafetyDeposit      string           `mapstructure:"safety_deposit"`
	TokenDecimals      map[string]uint8 `mapstructure:"token_decimals"`
}

// TimeLocks holds the window durations in seconds.
type TimeLocks struct {
	SrcWithdrawal         uint64 `mapstructure:"src_withdrawal"`
	SrcPublicWithdrawal   uint64 `mapstructure:"src_public_withdrawal"`
	SrcCancellation       uint64 `mapstructure:"src_cancellation"`
	SrcPublicCancellation uint64 `mapstructure:"src_public_cancellation"`
	DstWithdrawal         uint64 `mapstructure:"dst_withdrawal"`
	DstPublicWithdrawal   uint64 `mapstructure:"dst_public_withdrawal"`
	DstCancellation       uint64 `mapstructure:"dst_cancellation"`
}

// Config is the full daemon configuration.
type Config struct {
	ListenAddr    string    `mapstructure:"listen_addr"`
	LogLevel      string    `mapstructure:"log_level"`
	DatabaseURL   string    `mapstructure:"database_url"`
	RetryAttempts int       `mapstructure:"retry_attempts"`
	RetryDelaySec uint64    `mapstructure:"retry_delay_sec"`
	MaxWindowWait uint64    `mapstructure:"max_window_wait_sec"`
	TimeLocks     TimeLocks `mapstructure:"timelocks"`
	Chains        []Chain   `mapstructure:"chains"`
}

// Load reads the configuration file and applies environment overrides.
//
// Parameters:
// - path: the configuration file path; empty falls back to ./config.yaml.
//
// Returns:
// - *Config: the loaded configuration.
// - error: an error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_window_wait_sec", 120)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(cfg.Chains) == 0 {
		return nil, errors.New("no chains configured")
	}

	return &cfg, nil
}

// ChainConfigs converts the file entries into resolver configurations.
//
// Returns:
// - []*types.ChainConfig: one configuration per chain entry.
// - error: an error if a chain entry names an unknown family.
func (c *Config) ChainConfigs() ([]*types.ChainConfig, error) {
	configs := make([]*types.ChainConfig, 0, len(c.Chains))
	for _, chain := range c.Chains {
		chainType := types.ParseChainType(strings.ToUpper(chain.Type))
		if chainType == types.UNKNOWN {
			return nil, errors.Errorf("unknown chain type %q for chain %s", chain.Type, chain.Name)
		}

		configs = append(configs, &types.ChainConfig{
			Name:               chain.Name,
			ChainType:          chainType,
			ChainID:            chain.ChainID,
			RpcUrl:             chain.RpcUrl,
			WaitNBlocks:        chain.WaitNBlocks,
			PrivateKey:         chain.PrivateKey,
			EscrowFactory:      chain.EscrowFactory,
			EscrowInitCodeHash: chain.EscrowInitCodeHash,
			SafetyDeposit:      chain.SafetyDeposit,
			TokenDecimals:      chain.TokenDecimals,
		})
	}
	return configs, nil
}

// HTLCTimeLocks converts and validates the configured window durations.
//
// Returns:
// - htlc.TimeLocks: the validated durations.
// - error: an error if the ordering invariant is violated.
func (c *Config) HTLCTimeLocks() (htlc.TimeLocks, error) {
	return htlc.NewTimeLocks(htlc.TimeLocks{
		SrcWithdrawal:         time.Duration(c.TimeLocks.SrcWithdrawal) * time.Second,
		SrcPublicWithdrawal:   time.Duration(c.TimeLocks.SrcPublicWithdrawal) * time.Second,
		SrcCancellation:       time.Duration(c.TimeLocks.SrcCancellation) * time.Second,
		SrcPublicCancellation: time.Duration(c.TimeLocks.SrcPublicCancellation) * time.Second,
		DstWithdrawal:         time.Duration(c.TimeLocks.DstWithdrawal) * time.Second,
		DstPublicWithdrawal:   time.Duration(c.TimeLocks.DstPublicWithdrawal) * time.Second,
		DstCancellation:       time.Duration(c.TimeLocks.DstCancellation) * time.Second,
	})
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

const (
	defaultLogLevel = "info"

	configFile = "config.json"
	dirName    = ".atm"
)

// ErrUnknownKey is returned by Set for keys that are not part of Config.
var ErrUnknownKey = errors.New("unknown config key")

// Load reads config from dir (or creates defaults). dir defaults to ~/.atm.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// ApplyProjectFile overlays the non-zero fields of a TOML project file on top
// of c. A missing file is not an error. Wallet selection and logging stay
// per-user, so only deployment fields are taken from the project file.
func (c *Config) ApplyProjectFile(path string) (bool, error) {
	var p Config
	_, err := toml.DecodeFile(path, &p)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}

	if p.RPCURL != "" {
		c.RPCURL = p.RPCURL
	}
	if p.ContractAddress != "" {
		c.ContractAddress = p.ContractAddress
	}
	if p.ArtifactPath != "" {
		// Relative artifact paths resolve against the project file.
		if !filepath.IsAbs(p.ArtifactPath) {
			p.ArtifactPath = filepath.Join(filepath.Dir(path), p.ArtifactPath)
		}
		c.ArtifactPath = p.ArtifactPath
	}
	if p.ChainID != 0 {
		c.ChainID = p.ChainID
	}
	if p.ConfirmTimeout != 0 {
		c.ConfirmTimeout = p.ConfirmTimeout
	}
	return true, nil
}

// Keys returns the settable keys in display order.
func Keys() []string {
	return []string{
		"rpc_url", "contract_address", "artifact_path", "default_wallet",
		"chain_id", "confirm_timeout", "poll_interval_ms", "log_level",
	}
}

// Get returns the string form of a config value.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "rpc_url":
		return c.RPCURL, nil
	case "contract_address":
		return c.ContractAddress, nil
	case "artifact_path":
		return c.ArtifactPath, nil
	case "default_wallet":
		return c.DefaultWallet, nil
	case "chain_id":
		return strconv.FormatInt(c.ChainID, 10), nil
	case "confirm_timeout":
		return strconv.Itoa(c.ConfirmTimeout), nil
	case "poll_interval_ms":
		return strconv.Itoa(c.PollIntervalMS), nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set validates and assigns a config value from its string form.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "rpc_url":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") &&
			!strings.HasPrefix(value, "ws://") && !strings.HasPrefix(value, "wss://") {
			return fmt.Errorf("rpc_url must be an http(s) or ws(s) URL: %s", value)
		}
		c.RPCURL = value
	case "contract_address":
		if !common.IsHexAddress(value) {
			return fmt.Errorf("contract_address is not a valid address: %s", value)
		}
		c.ContractAddress = common.HexToAddress(value).Hex()
	case "artifact_path":
		c.ArtifactPath = value
	case "default_wallet":
		c.DefaultWallet = value
	case "chain_id":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("chain_id must be a non-negative integer: %s", value)
		}
		c.ChainID = n
	case "confirm_timeout":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("confirm_timeout must be a non-negative number of seconds: %s", value)
		}
		c.ConfirmTimeout = n
	case "poll_interval_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("poll_interval_ms must be a positive integer: %s", value)
		}
		c.PollIntervalMS = n
	case "log_level":
		switch value {
		case "debug", "info", "warn", "error":
			c.LogLevel = value
		default:
			return fmt.Errorf("log_level must be one of debug|info|warn|error: %s", value)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// ConfirmWait returns how long to wait for a transaction confirmation.
// Zero means no deadline.
func (c *Config) ConfirmWait() time.Duration {
	return time.Duration(c.ConfirmTimeout) * time.Second
}

// PollInterval returns the receipt polling interval.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return ReceiptPoll
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		RPCURL:          DefaultRPCURL,
		ContractAddress: DefaultContractAddress,
		ArtifactPath:    DefaultArtifactPath,
		ConfirmTimeout:  int(TxConfirmTimeout / time.Second),
		PollIntervalMS:  int(ReceiptPoll / time.Millisecond),
		LogLevel:        defaultLogLevel,
		configDir:       dir,
	}
}

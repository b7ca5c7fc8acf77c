package config

// Config holds all atm configuration.
type Config struct {
	RPCURL          string `json:"rpc_url"          toml:"rpc_url"`
	ContractAddress string `json:"contract_address" toml:"contract_address"`
	ArtifactPath    string `json:"artifact_path"    toml:"artifact_path"`
	DefaultWallet   string `json:"default_wallet"   toml:"default_wallet"`
	ChainID         int64  `json:"chain_id"         toml:"chain_id"`         // 0 = ask the node
	ConfirmTimeout  int    `json:"confirm_timeout"  toml:"confirm_timeout"`  // seconds, 0 = wait forever
	PollIntervalMS  int    `json:"poll_interval_ms" toml:"poll_interval_ms"` // receipt polling
	LogLevel        string `json:"log_level"        toml:"log_level"`        // "debug" | "info" | "warn" | "error"

	// internal: config dir path used for Save()
	configDir string
}

package config

import "time"

// Deployment defaults: the first contract deployed by the default Hardhat
// account on a local node.
const (
	DefaultContractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	DefaultRPCURL          = "http://127.0.0.1:8545"
	DefaultArtifactPath    = "artifacts/contracts/Assessment.sol/Assessment.json"
)

// GasLimitContractCall is used when the node cannot estimate a call for a
// reason other than a revert.
const GasLimitContractCall = uint64(200_000)

// Timeout constants.
const (
	RPCDialTimeout   = 10 * time.Second
	TxConfirmTimeout = 3 * time.Minute // default for confirm_timeout
	ReceiptPoll      = 2 * time.Second
)

// ProjectFile is the per-project override file looked up in the working directory.
const ProjectFile = "atm.toml"

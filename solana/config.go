package solana

import (
	"os"

	"go.uber.org/zap"
)

// USDC mint addresses per network.
const (
	USDCMintDevnet  = "Gh9ZwEmdLJ8DscKNTkTqPbNwLNNBjuSzaG9Vp2KGtKJr"
	USDCMintMainnet = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// Config carries the chain settings for the RPC client. Constructed once at
// startup and passed in explicitly so tests can point it at a fake endpoint.
type Config struct {
	Network   string // "devnet" or "mainnet-beta"
	RPCURL    string
	USDCMint  string
	ProgramID string // escrow program, empty until deployed
}

// ConfigFromEnv reads SOLANA_NETWORK, SOLANA_RPC_URL and PROGRAM_ID, falling
// back to the public devnet cluster.
func ConfigFromEnv() Config {
	network := os.Getenv("SOLANA_NETWORK")
	if network == "" {
		network = "devnet"
	}

	rpcURL := os.Getenv("SOLANA_RPC_URL")
	if rpcURL == "" {
		rpcURL = clusterRPCURL(network)
	}

	mint := USDCMintDevnet
	if network == "mainnet-beta" {
		mint = USDCMintMainnet
	}

	cfg := Config{
		Network:   network,
		RPCURL:    rpcURL,
		USDCMint:  mint,
		ProgramID: os.Getenv("PROGRAM_ID"),
	}

	zap.S().Infof("[Solana Config] Network: %s", cfg.Network)
	zap.S().Infof("[Solana Config] RPC URL: %s", cfg.RPCURL)
	zap.S().Infof("[Solana Config] USDC Mint: %s", cfg.USDCMint)

	return cfg
}

func clusterRPCURL(network string) string {
	switch network {
	case "mainnet-beta":
		return "https://api.mainnet-beta.solana.com"
	case "testnet":
		return "https://api.testnet.solana.com"
	default:
		return "https://api.devnet.solana.com"
	}
}

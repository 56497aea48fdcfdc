package domain

const (
	// Gateway constants
	DEFAULT_IPFS_GATEWAY = "https://gateway.pinata.cloud"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
)

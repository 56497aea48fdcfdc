// Package contracts holds the ABI surface of the collection factory and the
// collection contracts it deploys.
package contracts

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Event signatures
var (
	// CollectionCreated(uint256 indexed collectionId, address indexed contractAddress, address indexed creator, address parent)
	CollectionCreatedEventSignature = crypto.Keccak256Hash([]byte("CollectionCreated(uint256,address,address,address)"))

	// TokenMinted(uint256 indexed tokenId, address indexed minter, uint256 timestamp)
	TokenMintedEventSignature = crypto.Keccak256Hash([]byte("TokenMinted(uint256,address,uint256)"))
)

const factoryABIJSON = `[
{"inputs":[],"name":"getAllCollections","outputs":[{"components":[{"name":"collectionId","type":"uint256"},{"name":"contractAddress","type":"address"},{"name":"creator","type":"address"},{"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"parent","type":"address"}],"name":"","type":"tuple[]"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"collectionId","type":"uint256"}],"name":"collectionInfo","outputs":[{"components":[{"name":"collectionId","type":"uint256"},{"name":"contractAddress","type":"address"},{"name":"creator","type":"address"},{"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"parent","type":"address"}],"name":"","type":"tuple"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"creator","type":"address"}],"name":"getCollectionsByCreator","outputs":[{"name":"","type":"uint256[]"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"collection","type":"address"}],"name":"getCollectionLineage","outputs":[{"name":"","type":"address[]"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"collection","type":"address"},{"name":"tokenId","type":"uint256"},{"name":"uri","type":"string"}],"name":"updateTokenURI","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

const collectionABIJSON = `[
{"inputs":[],"name":"getCurrentSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"tokenId","type":"uint256"}],"name":"isTokenGenerated","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"getPrompt","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"getReferenceImageUrl","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"getParent","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"tokenId","type":"uint256"}],"name":"tokenURI","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"}
]`

var (
	// FactoryABI is the parsed factory contract ABI
	FactoryABI = mustParseABI(factoryABIJSON)

	// CollectionABI is the parsed collection contract ABI
	CollectionABI = mustParseABI(collectionABIJSON)
)

// CollectionInfo mirrors the factory's collection record tuple
type CollectionInfo struct {
	CollectionId    *big.Int
	ContractAddress common.Address
	Creator         common.Address
	Name            string
	Symbol          string
	Parent          common.Address
}

func mustParseABI(abiJSON string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI: %v", err))
	}
	return parsed
}

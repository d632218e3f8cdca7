package config

type Configuration struct {
	// Server config
	Server struct {
		UseSSL    bool   `yaml:"ssl"`
		RedisPort int    `yaml:"redis_port"`
		RedisHost string `yaml:"redis_host"`
	} `yaml:"server"`
	// EVM-related config
	EVM struct {
		PublicAddress string `yaml:"address"`
		PrivateKey    string `yaml:"private_key"`
	} `yaml:"EVM"`
	// off-chain quoting service
	PathFinder struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"pathfinder"`
	// bridge backend endpoints
	Bridges struct {
		HopAPI     string `yaml:"hop_api"`
		ConnextRPC string `yaml:"connext_rpc"`
		CBridgeAPI string `yaml:"cbridge_api"`
	} `yaml:"bridges"`
	// swap settings
	Swap struct {
		// max tolerated deviation between quoted and executed output, percent
		SlippagePercent string `yaml:"slippage_percent"`
	} `yaml:"swap"`
}

var Config Configuration

// maximum number of EVM RPC retries
const EVM_RETRIES = 3

// sentinel address for a chain's native asset
const NATIVE_ASSET = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

// Per-network aggregator configs. ABI selects the aggregator calling
// convention: the generic OneSplit-style signature, the Polygon variant
// (extra expectedReturn param), the Moonriver variant (explicit recipient)
// or the xDai variant.
type NetworkConfig struct {
	Name              string
	ChainID           int
	RPCList           []string
	AggregatorAddress string
	ABI               string // oneSplit | polygon | moonriver | xdai
	GasAPI            string // empty means gas price comes from the node
	DesiredParts      int
}

var Networks = map[int]NetworkConfig{
	1: {
		Name:              "Ethereum",
		ChainID:           1,
		RPCList:           []string{"https://eth.drpc.org", "https://eth.llamarpc.com"},
		AggregatorAddress: "0xC586BeF4a0992C495Cf22e1aeEE4E446CECDee0E",
		ABI:               "oneSplit",
		GasAPI:            "https://ethgasstation.info/api/ethgasAPI.json",
		DesiredParts:      3,
	}, // Ethereum
	10: {
		Name:              "Optimism",
		ChainID:           10,
		RPCList:           []string{"https://rpc.ankr.com/optimism", "https://optimism.drpc.org"},
		AggregatorAddress: "0x90f765F63E7DC5aE97d6c576BF693FB6AF41C129",
		ABI:               "oneSplit",
		DesiredParts:      3,
	}, // Optimism
	56: {
		Name:              "BNB",
		ChainID:           56,
		RPCList:           []string{"https://rpc.ankr.com/bsc", "https://bsc.drpc.org"},
		AggregatorAddress: "0x45A01E4e04F14f7A4a6702c74187c5F6222033cd",
		ABI:               "oneSplit",
		DesiredParts:      3,
	}, // BNB
	100: {
		Name:              "xDai",
		ChainID:           100,
		RPCList:           []string{"https://rpc.gnosischain.com", "https://gnosis.drpc.org"},
		AggregatorAddress: "0xe079c9ceF6a98F61BEbc46bcBFDDAe5d130c1dBc",
		ABI:               "xdai",
		DesiredParts:      3,
	}, // xDai / Gnosis
	137: {
		Name:              "Polygon",
		ChainID:           137,
		RPCList:           []string{"https://polygon-rpc.com", "https://polygon.drpc.org"},
		AggregatorAddress: "0xfB7734D21cb0F0f172F1BB458d411621CdAf8fD4",
		ABI:               "polygon",
		GasAPI:            "https://gasstation.polygon.technology/v2",
		DesiredParts:      3,
	}, // Polygon
	250: {
		Name:              "Fantom",
		ChainID:           250,
		RPCList:           []string{"https://rpc.ftm.tools", "https://fantom.drpc.org"},
		AggregatorAddress: "0x1111111254EEB25477B68fb85Ed929f73A960582",
		ABI:               "oneSplit",
		DesiredParts:      3,
	}, // Fantom
	1285: {
		Name:              "Moonriver",
		ChainID:           1285,
		RPCList:           []string{"https://rpc.api.moonriver.moonbeam.network"},
		AggregatorAddress: "0x0C02171D98cE2bbb6dF36E8F3BE6b863C903900D",
		ABI:               "moonriver",
		DesiredParts:      3,
	}, // Moonriver
	42161: {
		Name:              "Arbitrum",
		ChainID:           42161,
		RPCList:           []string{"https://rpc.ankr.com/arbitrum", "https://arbitrum.drpc.org"},
		AggregatorAddress: "0x735247fb0a604c0adC6cab38ACE16D0DbA31295F",
		ABI:               "oneSplit",
		DesiredParts:      3,
	}, // Arbitrum
	43114: {
		Name:              "Avalanche",
		ChainID:           43114,
		RPCList:           []string{"https://api.avax.network/ext/bc/C/rpc", "https://avalanche.drpc.org"},
		AggregatorAddress: "0x60aE616a2155Ee3d9A68541Ba4544862310933d4",
		ABI:               "oneSplit",
		DesiredParts:      3,
	}, // Avalanche
}

var RedisStatusSets = map[string]string{
	"active":   "transfers:active",   // transfer submitted, bridge still working on it
	"complete": "transfers:complete", // destination leg observed complete
	"failed":   "transfers:failed",   // bridge reported a terminal failure
	"refunded": "transfers:refunded", // bridge returned funds to the sender
}

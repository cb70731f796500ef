package bybit

import "maps"

// Aliases holds the static translation tables between unified identifiers and Bybit's own.
// Lookups use exact keys; an unknown key is returned unchanged.
// An Aliases value is read-only after construction and safe for concurrent use.
type Aliases struct {
	accountsByType map[string]string
	accountsByID   map[string]string
	networks       map[string]string
	networksByID   map[string]string
}

// DefaultAliases returns fresh copies of the built-in Bybit tables.
func DefaultAliases() *Aliases {
	return NewAliases(defaultAccountsByType, defaultAccountsByID, defaultNetworks, defaultNetworksByID)
}

// NewAliases builds an Aliases from caller-supplied tables. The maps are copied.
func NewAliases(accountsByType, accountsByID, networks, networksByID map[string]string) *Aliases {
	return &Aliases{
		accountsByType: maps.Clone(accountsByType),
		accountsByID:   maps.Clone(accountsByID),
		networks:       maps.Clone(networks),
		networksByID:   maps.Clone(networksByID),
	}
}

// AccountID maps a unified account type ("spot", "swap", "funding") to Bybit's account code.
func (a *Aliases) AccountID(accountType string) string {
	return lookup(a.accountsByType, accountType)
}

// AccountType maps a Bybit account code ("UNIFIED", "FUND") to a unified account type.
func (a *Aliases) AccountType(accountID string) string {
	return lookup(a.accountsByID, accountID)
}

// ChainID maps a unified network code ("ERC20") to Bybit's chain identifier ("ETH").
func (a *Aliases) ChainID(network string) string {
	return lookup(a.networks, network)
}

// NetworkCode maps a Bybit chain identifier ("ETH") to a unified network code ("ERC20").
func (a *Aliases) NetworkCode(chainID string) string {
	return lookup(a.networksByID, chainID)
}

func lookup(table map[string]string, key string) string {
	if v, ok := table[key]; ok {
		return v
	}
	return key
}

var defaultAccountsByType = map[string]string{
	"spot":       "SPOT",
	"margin":     "SPOT",
	"future":     "CONTRACT",
	"swap":       "CONTRACT",
	"option":     "OPTION",
	"investment": "INVESTMENT",
	"unified":    "UNIFIED",
	"funding":    "FUND",
	"fund":       "FUND",
	"contract":   "CONTRACT",
}

var defaultAccountsByID = map[string]string{
	"SPOT":       "spot",
	"MARGIN":     "spot",
	"CONTRACT":   "contract",
	"OPTION":     "option",
	"INVESTMENT": "investment",
	"UNIFIED":    "unified",
	"FUND":       "fund",
}

var defaultNetworks = map[string]string{
	"ERC20":    "ETH",
	"TRC20":    "TRX",
	"BEP20":    "BSC",
	"SOL":      "SOL",
	"ACA":      "ACA",
	"ADA":      "ADA",
	"ALGO":     "ALGO",
	"APT":      "APTOS",
	"AR":       "AR",
	"ARBONE":   "ARBI",
	"AVAXC":    "CAVAX",
	"AVAXX":    "XAVAX",
	"ATOM":     "ATOM",
	"BCH":      "BCH",
	"BEP2":     "BNB",
	"CHZ":      "CHZ",
	"DCR":      "DCR",
	"DGB":      "DGB",
	"DOGE":     "DOGE",
	"DOT":      "DOT",
	"EGLD":     "EGLD",
	"EOS":      "EOS",
	"ETC":      "ETC",
	"ETHF":     "ETHF",
	"ETHW":     "ETHW",
	"FIL":      "FIL",
	"STEP":     "FITFI",
	"FLOW":     "FLOW",
	"FTM":      "FTM",
	"GLMR":     "GLMR",
	"HBAR":     "HBAR",
	"HNT":      "HNT",
	"ICP":      "ICP",
	"ICX":      "ICX",
	"KDA":      "KDA",
	"KLAY":     "KLAY",
	"KMA":      "KMA",
	"KSM":      "KSM",
	"LTC":      "LTC",
	"MATIC":    "MATIC",
	"MINA":     "MINA",
	"MOVR":     "MOVR",
	"NEAR":     "NEAR",
	"NEM":      "NEM",
	"OASYS":    "OAS",
	"OASIS":    "ROSE",
	"OMNI":     "OMNI",
	"ONE":      "ONE",
	"OPTIMISM": "OP",
	"POKT":     "POKT",
	"QTUM":     "QTUM",
	"RVN":      "RVN",
	"SC":       "SC",
	"SCRT":     "SCRT",
	"STX":      "STX",
	"THETA":    "THETA",
	"TON":      "TON",
	"WAVES":    "WAVES",
	"WAX":      "WAXP",
	"XDC":      "XDC",
	"XEC":      "XEC",
	"XLM":      "XLM",
	"XRP":      "XRP",
	"XTZ":      "XTZ",
	"XYM":      "XYM",
	"ZEN":      "ZEN",
	"ZIL":      "ZIL",
	"ZKSYNC":   "ZKSYNC",
}

var defaultNetworksByID = map[string]string{
	"ETH":  "ERC20",
	"TRX":  "TRC20",
	"BSC":  "BEP20",
	"OMNI": "OMNI",
	"SPL":  "SOL",
}

package bybit

import (
	"encoding/json"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"

	"cctx/internal/codec"
	"cctx/pkg/core"
)

// bybitCoin is one row of GET /v5/asset/coin/query-info.
type bybitCoin struct {
	Coin   *string           `json:"coin"`
	Name   *string           `json:"name"`
	Chains []json.RawMessage `json:"chains"`
}

// bybitChain is one deposit/withdraw channel of a coin.
type bybitChain struct {
	Chain         *string       `json:"chain"`
	ChainType     *string       `json:"chainType"`
	WithdrawFee   codec.Decimal `json:"withdrawFee"`
	MinAccuracy   codec.Int     `json:"minAccuracy"`
	WithdrawMin   codec.Decimal `json:"withdrawMin"`
	DepositMin    codec.Decimal `json:"depositMin"`
	ChainDeposit  *string       `json:"chainDeposit"`
	ChainWithdraw *string       `json:"chainWithdraw"`
}

type bybitLotSizeFilter struct {
	BasePrecision  codec.Decimal `json:"basePrecision"`
	QuotePrecision codec.Decimal `json:"quotePrecision"`
	QtyStep        codec.Decimal `json:"qtyStep"`
	MinOrderQty    codec.Decimal `json:"minOrderQty"`
	MaxOrderQty    codec.Decimal `json:"maxOrderQty"`
	MinTradingQty  codec.Decimal `json:"minTradingQty"`
	MinOrderAmt    codec.Decimal `json:"minOrderAmt"`
	MaxOrderAmt    codec.Decimal `json:"maxOrderAmt"`
}

type bybitPriceFilter struct {
	MinPrice codec.Decimal `json:"minPrice"`
	MaxPrice codec.Decimal `json:"maxPrice"`
	TickSize codec.Decimal `json:"tickSize"`
}

type bybitLeverageFilter struct {
	MinLeverage codec.Decimal `json:"minLeverage"`
	MaxLeverage codec.Decimal `json:"maxLeverage"`
}

// bybitInstrument is one row of GET /v5/market/instruments-info, covering the fields
// of all four categories.
type bybitInstrument struct {
	Symbol        *string `json:"symbol"`
	BaseCoin      *string `json:"baseCoin"`
	QuoteCoin     *string `json:"quoteCoin"`
	SettleCoin    *string `json:"settleCoin"`
	Status        *string `json:"status"`
	Category      *string `json:"category"`
	MarginTrading *string `json:"marginTrading"`
	ContractType  *string `json:"contractType"`
	OptionsType   *string `json:"optionsType"`

	LaunchTime   codec.Int `json:"launchTime"`
	DeliveryTime codec.Int `json:"deliveryTime"`

	LotSizeFilter  bybitLotSizeFilter  `json:"lotSizeFilter"`
	PriceFilter    bybitPriceFilter    `json:"priceFilter"`
	LeverageFilter bybitLeverageFilter `json:"leverageFilter"`
}

const (
	contractInverseFutures   = "InverseFutures"
	contractLinearFutures    = "LinearFutures"
	contractLinearPerpetual  = "LinearPerpetual"
	contractInversePerpetual = "InversePerpetual"

	statusTrading = "Trading"

	// Delivery times at or above this value are already in milliseconds.
	millisecondThreshold = 100_000_000_000
)

var infoAPI = sonic.Config{UseNumber: true}.Froze()

// Normalizer converts Bybit payloads to canonical core types.
// Rows missing an identifying field are dropped and logged at debug level.
type Normalizer struct {
	aliases *Aliases
	logger  zerolog.Logger
}

// NewNormalizer creates a Normalizer. A nil aliases uses DefaultAliases.
func NewNormalizer(aliases *Aliases, logger zerolog.Logger) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Normalizer{aliases: aliases, logger: logger}
}

// currencyCode maps an exchange coin id to the canonical code. Bybit ids are used as is.
func (n *Normalizer) currencyCode(id string) string {
	return id
}

func (n *Normalizer) drop(kind, reason string, raw json.RawMessage) {
	n.logger.Debug().
		Str("kind", kind).
		Str("reason", reason).
		RawJSON("row", raw).
		Msg("dropping row")
}

// NormalizeCurrencies maps coin-info rows to currencies keyed by canonical code.
// Later rows for the same code replace earlier ones, as do later chains that share
// a canonical network code.
func (n *Normalizer) NormalizeCurrencies(rows []json.RawMessage) map[string]core.Currency {
	result := make(map[string]core.Currency, len(rows))

	for _, raw := range rows {
		var row bybitCoin
		if err := sonic.Unmarshal(raw, &row); err != nil {
			n.drop("coin", "undecodable", raw)
			continue
		}
		if isBlank(row.Coin) || isBlank(row.Name) {
			n.drop("coin", "missing coin or name", raw)
			continue
		}

		code := n.currencyCode(*row.Coin)
		networks := make(map[string]core.Network, len(row.Chains))
		for _, rawChain := range row.Chains {
			network, ok := n.normalizeNetwork(rawChain)
			if !ok {
				continue
			}
			networks[network.Network] = network
		}

		result[code] = core.Currency{
			ID:       *row.Coin,
			Code:     code,
			Name:     *row.Name,
			Networks: networks,
			Type:     "crypto",
			Info:     decodeInfo(raw),
		}
	}
	return result
}

func (n *Normalizer) normalizeNetwork(raw json.RawMessage) (core.Network, bool) {
	var chain bybitChain
	if err := sonic.Unmarshal(raw, &chain); err != nil {
		n.drop("chain", "undecodable", raw)
		return core.Network{}, false
	}
	if isBlank(chain.Chain) {
		n.drop("chain", "missing chain", raw)
		return core.Network{}, false
	}

	network := core.Network{
		ID:        *chain.Chain,
		Network:   n.aliases.NetworkCode(*chain.Chain),
		Name:      chain.ChainType,
		Fee:       chain.WithdrawFee.Ptr(),
		Precision: chain.MinAccuracy.Ptr(),
		Limits: core.CurrencyLimits{
			Withdraw: core.Limit{Min: chain.WithdrawMin.Ptr()},
			Deposit:  core.Limit{Min: chain.DepositMin.Ptr()},
		},
		Info: decodeInfo(raw),
	}

	deposit := flag(chain.ChainDeposit)
	withdraw := flag(chain.ChainWithdraw)
	network.Deposit = deposit
	network.Withdraw = withdraw
	if deposit != nil && withdraw != nil {
		network.Active = boolPtr(*deposit && *withdraw)
	}
	return network, true
}

// NormalizeSpotMarket maps one spot instrument row.
func (n *Normalizer) NormalizeSpotMarket(raw json.RawMessage) (core.Market, bool) {
	row, baseID, quoteID, ok := n.decodeInstrument("spot", raw)
	if !ok {
		return core.Market{}, false
	}

	base := n.currencyCode(baseID)
	quote := n.currencyCode(quoteID)
	lot := row.LotSizeFilter

	price := row.PriceFilter.TickSize.Ptr()
	if price == nil {
		price = lot.QuotePrecision.Ptr()
	}

	return core.Market{
		ID:      *row.Symbol,
		Symbol:  base + "/" + quote,
		Base:    base,
		Quote:   quote,
		BaseID:  baseID,
		QuoteID: quoteID,
		Active:  isTrading(row.Status),
		Type:    core.MarketTypeSpot,
		Spot:    true,
		Margin:  boolPtr(row.MarginTrading != nil && *row.MarginTrading != "none"),
		Precision: core.MarketPrecision{
			Amount: lot.BasePrecision.Ptr(),
			Price:  price,
		},
		Limits: core.MarketLimits{
			Amount:   core.Limit{Min: lot.MinOrderQty.Ptr(), Max: lot.MaxOrderQty.Ptr()},
			Cost:     core.Limit{Min: lot.MinOrderAmt.Ptr(), Max: lot.MaxOrderAmt.Ptr()},
			Leverage: core.Limit{Min: apd.New(1, 0)},
		},
		Info: decodeInfo(raw),
	}, true
}

// NormalizeDerivativeMarket maps one linear or inverse instrument row.
// Rows with an unknown contractType, or whose category disagrees with the request, are dropped.
func (n *Normalizer) NormalizeDerivativeMarket(category core.Category, raw json.RawMessage) (core.Market, bool) {
	row, baseID, quoteID, ok := n.decodeInstrument(string(category), raw)
	if !ok {
		return core.Market{}, false
	}
	if row.Category != nil && *row.Category != string(category) {
		n.drop(string(category), "category mismatch", raw)
		return core.Market{}, false
	}

	linear := category == core.CategoryLinear
	inverse := category == core.CategoryInverse

	var contractType string
	if row.ContractType != nil {
		contractType = *row.ContractType
	}
	linearPerpetual := contractType == contractLinearPerpetual
	swap := linearPerpetual || contractType == contractInversePerpetual
	future := contractType == contractLinearFutures || contractType == contractInverseFutures
	if !swap && !future {
		n.drop(string(category), "unknown contractType", raw)
		return core.Market{}, false
	}

	base := n.currencyCode(baseID)
	quote := n.currencyCode(quoteID)

	settleID := quoteID
	if inverse {
		settleID = baseID
	}
	if !isBlank(row.SettleCoin) {
		settleID = *row.SettleCoin
	}
	settle := n.currencyCode(settleID)
	if linearPerpetual && settleID == "USD" {
		settle = "USDC"
	}

	symbol := base + "/" + quote + ":" + settle
	market := core.Market{
		ID:       *row.Symbol,
		Base:     base,
		Quote:    quote,
		BaseID:   baseID,
		QuoteID:  quoteID,
		Active:   isTrading(row.Status),
		Swap:     swap,
		Future:   future,
		Contract: true,
		Settle:   &settle,
		SettleID: &settleID,
		Linear:   boolPtr(linear),
		Inverse:  boolPtr(inverse),
		Created:  row.LaunchTime.Ptr(),
		Info:     decodeInfo(raw),
	}

	if swap {
		market.Type = core.MarketTypeSwap
	} else {
		market.Type = core.MarketTypeFuture
		if expiry, ok := deliveryMillis(row.DeliveryTime); ok {
			suffix, ok := codec.YYMMDD(expiry)
			if ok {
				symbol += "-" + suffix
				market.Expiry = &expiry
				if dt, ok := codec.ISO8601(expiry); ok {
					market.ExpiryDatetime = &dt
				}
			}
		}
	}
	market.Symbol = symbol

	if linear {
		market.ContractSize = apd.New(1, 0)
	} else {
		market.ContractSize = row.LotSizeFilter.MinOrderQty.Ptr()
		if market.ContractSize == nil {
			market.ContractSize = row.LotSizeFilter.MinTradingQty.Ptr()
		}
	}

	n.applyContractFilters(&market, row)
	return market, true
}

// NormalizeOptionMarket maps one option instrument row. Strike and option letter come from
// the instrument id, e.g. BTC-29MAR24-70000-C; rows without an expiry are dropped.
func (n *Normalizer) NormalizeOptionMarket(raw json.RawMessage) (core.Market, bool) {
	row, baseID, quoteID, ok := n.decodeInstrument("option", raw)
	if !ok {
		return core.Market{}, false
	}

	parts := strings.Split(*row.Symbol, "-")
	if len(parts) < 4 {
		n.drop("option", "unexpected symbol format", raw)
		return core.Market{}, false
	}
	strike, _, err := apd.NewFromString(parts[2])
	if err != nil || strike.Form != apd.Finite {
		n.drop("option", "unparsable strike", raw)
		return core.Market{}, false
	}
	letter := parts[3]

	expiry, ok := deliveryMillis(row.DeliveryTime)
	if !ok {
		n.drop("option", "missing deliveryTime", raw)
		return core.Market{}, false
	}
	suffix, ok := codec.YYMMDD(expiry)
	if !ok {
		n.drop("option", "invalid deliveryTime", raw)
		return core.Market{}, false
	}

	base := n.currencyCode(baseID)
	quote := n.currencyCode(quoteID)
	settleID := quoteID
	if !isBlank(row.SettleCoin) {
		settleID = *row.SettleCoin
	}
	settle := n.currencyCode(settleID)
	linear := settle == "USDC" || settle == "USDT"

	var optionType *string
	switch {
	case !isBlank(row.OptionsType):
		optionType = stringPtr(strings.ToLower(*row.OptionsType))
	case letter == "C":
		optionType = stringPtr("call")
	case letter == "P":
		optionType = stringPtr("put")
	}

	market := core.Market{
		ID:           *row.Symbol,
		Symbol:       base + "/" + quote + ":" + settle + "-" + suffix + "-" + parts[2] + "-" + letter,
		Base:         base,
		Quote:        quote,
		BaseID:       baseID,
		QuoteID:      quoteID,
		Active:       isTrading(row.Status),
		Type:         core.MarketTypeOption,
		Option:       true,
		Contract:     true,
		Settle:       &settle,
		SettleID:     &settleID,
		ContractSize: apd.New(1, 0),
		Linear:       boolPtr(linear),
		Inverse:      boolPtr(!linear),
		Expiry:       &expiry,
		Strike:       strike,
		OptionType:   optionType,
		Created:      row.LaunchTime.Ptr(),
		Info:         decodeInfo(raw),
	}
	if dt, ok := codec.ISO8601(expiry); ok {
		market.ExpiryDatetime = &dt
	}

	n.applyContractFilters(&market, row)
	return market, true
}

func (n *Normalizer) applyContractFilters(market *core.Market, row bybitInstrument) {
	lot := row.LotSizeFilter
	price := row.PriceFilter
	leverage := row.LeverageFilter

	market.Precision = core.MarketPrecision{
		Amount: lot.QtyStep.Ptr(),
		Price:  price.TickSize.Ptr(),
	}
	market.Limits = core.MarketLimits{
		Amount:   core.Limit{Min: lot.MinOrderQty.Ptr(), Max: lot.MaxOrderQty.Ptr()},
		Price:    core.Limit{Min: price.MinPrice.Ptr(), Max: price.MaxPrice.Ptr()},
		Leverage: core.Limit{Min: leverage.MinLeverage.Ptr(), Max: leverage.MaxLeverage.Ptr()},
	}
}

// NormalizeMarkets maps a batch of instrument rows of one category, skipping dropped rows.
func (n *Normalizer) NormalizeMarkets(category core.Category, rows []json.RawMessage) []core.Market {
	markets := make([]core.Market, 0, len(rows))
	for _, raw := range rows {
		var (
			market core.Market
			ok     bool
		)
		switch category {
		case core.CategorySpot:
			market, ok = n.NormalizeSpotMarket(raw)
		case core.CategoryLinear, core.CategoryInverse:
			market, ok = n.NormalizeDerivativeMarket(category, raw)
		case core.CategoryOption:
			market, ok = n.NormalizeOptionMarket(raw)
		}
		if ok {
			markets = append(markets, market)
		}
	}
	return markets
}

func (n *Normalizer) decodeInstrument(kind string, raw json.RawMessage) (bybitInstrument, string, string, bool) {
	var row bybitInstrument
	if err := sonic.Unmarshal(raw, &row); err != nil {
		n.drop(kind, "undecodable", raw)
		return bybitInstrument{}, "", "", false
	}
	if isBlank(row.Symbol) || isBlank(row.BaseCoin) || isBlank(row.QuoteCoin) {
		n.drop(kind, "missing symbol, baseCoin or quoteCoin", raw)
		return bybitInstrument{}, "", "", false
	}
	return row, *row.BaseCoin, *row.QuoteCoin, true
}

// deliveryMillis converts deliveryTime to epoch milliseconds. Zero means no expiry.
// Values below the millisecond threshold are taken as seconds.
func deliveryMillis(v codec.Int) (int64, bool) {
	if !v.Valid || v.Value <= 0 {
		return 0, false
	}
	if v.Value >= millisecondThreshold {
		return v.Value, true
	}
	return v.Value * 1000, true
}

// decodeInfo keeps the source row with numbers preserved as json.Number.
func decodeInfo(raw json.RawMessage) map[string]any {
	var info map[string]any
	if err := infoAPI.Unmarshal(raw, &info); err != nil {
		return nil
	}
	return info
}

func isTrading(status *string) bool {
	return status != nil && *status == statusTrading
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}

// flag reads Bybit's "1"/"0" switches.
func flag(s *string) *bool {
	if s == nil {
		return nil
	}
	return boolPtr(*s == "1")
}

func boolPtr(b bool) *bool {
	return &b
}

func stringPtr(s string) *string {
	return &s
}

package application

// koreaExchangeSuffix is the Yahoo symbol suffix for the Korea Exchange,
// the deployment's default for every non-US market.
const koreaExchangeSuffix = ".KS"

// MarketSuffix maps a caller-supplied market/country code to the provider's
// ticker-suffix convention: US symbols are bare, everything else gets the
// Korean exchange suffix. Total over all inputs, including empty or
// unrecognized codes.
//
// The provider encodes the exchange inside the symbol rather than as a
// separate field; this function is the only place that knows that. Extending
// support to more exchanges means replacing this mapping, nothing else.
func MarketSuffix(market string) string {
	if market == "US" {
		return ""
	}
	return koreaExchangeSuffix
}

package domain

import (
	"errors"
	"fmt"
)

// ErrInstrumentNotFound signals that the quote provider confirmed the
// instrument does not exist. Callers treat it as a recoverable condition,
// unlike every other provider failure.
var ErrInstrumentNotFound = errors.New("instrument not found")

// MalformedResponseError reports a nominally successful provider response
// whose payload violates the documented shape.
type MalformedResponseError struct {
	Symbol string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed provider response for %s: %s", e.Symbol, e.Reason)
}

// PriceRecord is the normalized result of a price lookup. Symbol always
// echoes the requested ticker, even for the not-found sentinel, so batch
// callers can correlate results with requests.
type PriceRecord struct {
	Symbol   string  `json:"symbol"`
	Price    Decimal `json:"price"`
	Currency *string `json:"currency"`
}

// NewPriceRecord builds a populated record from provider data.
func NewPriceRecord(symbol string, price Decimal, currency string) PriceRecord {
	return PriceRecord{
		Symbol:   symbol,
		Price:    price,
		Currency: &currency,
	}
}

// NewPriceSentinel builds the "resolved but not found" record: zero price,
// nil currency. Distinct from a failed lookup, which yields no record at all.
func NewPriceSentinel(symbol string) PriceRecord {
	return PriceRecord{
		Symbol:   symbol,
		Price:    Zero,
		Currency: nil,
	}
}

// TickerRecord maps an identifier to the provider's best-match symbol.
type TickerRecord struct {
	ISIN   string  `json:"isin"`
	Ticker *string `json:"ticker"`
}

// NewTickerRecord builds a record for a matched identifier.
func NewTickerRecord(isin, ticker string) TickerRecord {
	return TickerRecord{
		ISIN:   isin,
		Ticker: &ticker,
	}
}

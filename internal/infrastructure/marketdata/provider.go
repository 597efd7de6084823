package marketdata

import (
	"context"

	"github.com/finbridge/quote-service/internal/domain"
)

// ChartSnapshot carries the fields the resolvers consume from a one-day
// chart response.
type ChartSnapshot struct {
	Symbol   string
	Price    domain.Decimal
	Currency string
}

// SearchMatch is a single hit from the provider's instrument search.
type SearchMatch struct {
	Symbol string
}

// QuoteProvider is the upstream quote service boundary.
//
// FetchChart returns domain.ErrInstrumentNotFound (via errors.Is) when the
// provider reports the symbol as unknown; every other failure is a hard
// error. SearchByIdentifier has no recoverable not-found classification: a
// zero-match search succeeds with an empty slice, any failure is hard.
type QuoteProvider interface {
	FetchChart(ctx context.Context, fullSymbol string) (*ChartSnapshot, error)
	SearchByIdentifier(ctx context.Context, code string) ([]SearchMatch, error)
}

package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/finbridge/quote-service/internal/domain"
	"github.com/finbridge/quote-service/internal/infrastructure/marketdata"
)

// QuoteService resolves price and identifier lookups against a quote
// provider. It holds no state beyond its collaborators; every lookup is
// request-scoped.
type QuoteService struct {
	provider         marketdata.QuoteProvider
	batchConcurrency int
}

// NewQuoteService creates a QuoteService. batchConcurrency caps the number
// of in-flight provider calls per batch; 0 means uncapped.
func NewQuoteService(provider marketdata.QuoteProvider, batchConcurrency int) *QuoteService {
	return &QuoteService{
		provider:         provider,
		batchConcurrency: batchConcurrency,
	}
}

// ResolvePrice resolves a single price lookup. It returns nil, never an
// error, when the instrument is unknown upstream or the call fails; callers
// see success-or-absence only.
func (s *QuoteService) ResolvePrice(ctx context.Context, ticker, market string) *domain.PriceRecord {
	if ticker == "" {
		return nil
	}

	fullSymbol := ticker + MarketSuffix(market)

	snapshot, err := s.provider.FetchChart(ctx, fullSymbol)
	if err != nil {
		if errors.Is(err, domain.ErrInstrumentNotFound) {
			slog.WarnContext(ctx, "Instrument not found", "ticker", ticker, "symbol", fullSymbol)
		} else {
			slog.ErrorContext(ctx, "Price lookup failed", "ticker", ticker, "symbol", fullSymbol, "error", err)
		}
		return nil
	}

	record := domain.NewPriceRecord(ticker, snapshot.Price, snapshot.Currency)
	return &record
}

// ResolveTicker resolves a single identifier lookup. Zero search matches and
// hard failures both yield nil; the distinction only matters inside batches.
func (s *QuoteService) ResolveTicker(ctx context.Context, isin string) *domain.TickerRecord {
	matches, err := s.provider.SearchByIdentifier(ctx, isin)
	if err != nil {
		slog.ErrorContext(ctx, "Identifier search failed", "isin", isin, "error", err)
		return nil
	}

	if len(matches) == 0 {
		slog.WarnContext(ctx, "No ticker found for identifier", "isin", isin)
		return nil
	}

	record := domain.NewTickerRecord(isin, matches[0].Symbol)
	return &record
}

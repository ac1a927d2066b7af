package rates

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
)

// StaticProvider serves exchange rates from an in-memory table, loaded
// from configuration at startup and replaceable at runtime. The ledger
// treats rates as externally supplied facts; this provider is the
// simplest source of them.
type StaticProvider struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// NewStaticProvider creates a provider from a pair table keyed as
// "FROM/TO", e.g. "USD/MXN".
func NewStaticProvider(pairs map[string]decimal.Decimal) *StaticProvider {
	rates := make(map[string]decimal.Decimal, len(pairs))
	for pair, rate := range pairs {
		rates[strings.ToUpper(pair)] = rate
	}
	return &StaticProvider{rates: rates}
}

// ParsePairs parses a comma-separated "FROM/TO=rate" list, the format the
// EXCHANGE_RATES environment variable uses.
func ParsePairs(s string) (map[string]decimal.Decimal, error) {
	pairs := make(map[string]decimal.Decimal)
	if strings.TrimSpace(s) == "" {
		return pairs, nil
	}

	for _, entry := range strings.Split(s, ",") {
		pair, value, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok {
			return nil, fmt.Errorf("malformed rate entry %q", entry)
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("malformed rate value %q: %w", value, err)
		}
		if !rate.IsPositive() {
			return nil, domain.ErrInvalidRate
		}

		pairs[strings.ToUpper(strings.TrimSpace(pair))] = rate
	}

	return pairs, nil
}

// GetRate returns the rate for from→to. When only the inverse pair is
// configured, its reciprocal is used.
func (p *StaticProvider) GetRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if rate, ok := p.rates[from+"/"+to]; ok {
		return rate, nil
	}

	if inverse, ok := p.rates[to+"/"+from]; ok && inverse.IsPositive() {
		return decimal.NewFromInt(1).Div(inverse), nil
	}

	return decimal.Zero, fmt.Errorf("no rate configured for %s/%s: %w", from, to, domain.ErrInvalidRate)
}

// SetRate installs or replaces a pair at runtime.
func (p *StaticProvider) SetRate(from, to string, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return domain.ErrInvalidRate
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.rates[strings.ToUpper(from)+"/"+strings.ToUpper(to)] = rate
	return nil
}

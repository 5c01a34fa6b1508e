package domain

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// DefaultSeed is the stock every inventory participant starts with.
var DefaultSeed = map[string]int{
	"product-001": 50,
	"product-002": 20,
	"product-003": 10,
}

// StockLedger is the shared stock counter per product. Counters may go
// negative; the ledger does not enforce availability.
type StockLedger struct {
	mu    sync.Mutex
	stock map[string]int
}

// NewStockLedger creates a ledger holding a copy of seed.
func NewStockLedger(seed map[string]int) *StockLedger {
	return &StockLedger{stock: maps.Clone(seed)}
}

// Has reports whether the product is known.
func (l *StockLedger) Has(product string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.stock[product]
	return ok
}

// Level returns the current counter for product.
func (l *StockLedger) Level(product string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.stock[product]
	return n, ok
}

// Take decrements product by qty and returns the counter before and after.
// It fails without touching the ledger when the product is unknown.
func (l *StockLedger) Take(product string, qty int) (prev, curr int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev, ok := l.stock[product]
	if !ok {
		return 0, 0, fmt.Errorf("unknown product %q", product)
	}
	curr = prev - qty
	l.stock[product] = curr
	return prev, curr, nil
}

// Restore increments product by qty and returns the counter before and
// after. An unknown product starts from zero.
func (l *StockLedger) Restore(product string, qty int) (prev, curr int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev = l.stock[product]
	curr = prev + qty
	l.stock[product] = curr
	return prev, curr
}

// Snapshot returns a copy of every counter.
func (l *StockLedger) Snapshot() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.stock)
}

// Products returns the known product codes in sorted order.
func (l *StockLedger) Products() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	products := make([]string, 0, len(l.stock))
	for p := range l.stock {
		products = append(products, p)
	}
	sort.Strings(products)
	return products
}

// ParseSeed parses "product:qty,product:qty". An empty string yields
// DefaultSeed.
func ParseSeed(s string) (map[string]int, error) {
	if strings.TrimSpace(s) == "" {
		return maps.Clone(DefaultSeed), nil
	}

	seed := make(map[string]int)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		product, qty, ok := strings.Cut(entry, ":")
		product = strings.TrimSpace(product)
		if !ok || product == "" {
			return nil, fmt.Errorf("invalid seed entry %q: want product:quantity", entry)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("invalid quantity for %s: %w", product, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative quantity for %s: %d", product, n)
		}
		seed[product] = n
	}
	if len(seed) == 0 {
		return nil, fmt.Errorf("seed %q has no products", s)
	}
	return seed, nil
}

package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cartwise/backend/internal/domain"
)

func flex(v float64) *domain.FlexFloat {
	f := domain.FlexFloat(v)
	return &f
}

func boolPtr(v bool) *bool {
	return &v
}

// testCatalog covers every category, a duplicate listing, a sale item that is
// out of stock and a product with neither price nor colors.
func testCatalog() []domain.RawProduct {
	return []domain.RawProduct{
		{ID: "1", Name: "Black Leather Jacket", Category: "jackets", Price: flex(400), Colors: []string{"Black"}, Gender: "Men", URL: "/products/black-leather-jacket"},
		{ID: "2", Name: "Black Leather Jacket", Category: "jackets", Price: flex(400), Colors: []string{"Black"}, Gender: "Men", URL: "/products/black-leather-jacket"},
		{ID: "3", Name: "Red Tote Bag", Category: "handbags", Price: flex(150), Colors: []string{"Red"}, Gender: "Women", URL: "/products/red-tote"},
		{ID: "4", Name: "Suede Gloves", Category: "gloves", Price: flex(60), OriginalPrice: flex(90), Colors: []string{"Tan"}, Gender: "Women", URL: "/products/suede-gloves"},
		{ID: "5", Name: "Classic Wallet", Category: "wallets", Price: flex(80), Colors: []string{"Brown"}, URL: "/products/classic-wallet"},
		{ID: "6", Name: "Women's Crossbody Bag", Category: "handbags", Price: flex(250), OriginalPrice: flex(300), Colors: []string{"Burgundy"}, InStock: boolPtr(false), URL: "/products/crossbody"},
		{ID: "7", Name: "Leather Belt", Category: "accessories", URL: "/products/leather-belt"},
	}
}

func testSnapshot(t *testing.T, raws []domain.RawProduct) *Snapshot {
	t.Helper()
	products, skipped := NewNormalizer(nil).NormalizeAll(raws)
	if skipped != 0 {
		t.Fatalf("fixture skipped %d products", skipped)
	}
	return newSnapshot(products, skipped)
}

type staticSource struct {
	mu    sync.Mutex
	raws  []domain.RawProduct
	err   error
	loads int
}

func (s *staticSource) Load(ctx context.Context) ([]domain.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.RawProduct(nil), s.raws...), nil
}

func (s *staticSource) set(raws []domain.RawProduct, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raws, s.err = raws, err
}

func (s *staticSource) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

// mapStore is an in-process SessionStore that ignores TTLs.
type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte)}
}

func (s *mapStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (s *mapStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data[key] = value
	return nil
}

func (s *mapStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	delete(s.data, key)
	return nil
}

func productIDs(products []domain.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

package receipt

import (
	"sort"
	"sync"
)

// MemoryDB is a thread-safe map store. Receipts live for the lifetime of the process.
type MemoryDB struct {
	mu       sync.RWMutex
	receipts map[string]*Receipt
}

// NewMemoryDB creates an empty MemoryDB
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{receipts: make(map[string]*Receipt)}
}

// SaveReceipt stores a copy of the receipt
func (m *MemoryDB) SaveReceipt(receipt *Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.receipts[receipt.ID]; ok {
		return exists(receipt.ID)
	}
	m.receipts[receipt.ID] = cloneReceipt(receipt)
	return nil
}

// GetReceipt returns a copy of the stored receipt
func (m *MemoryDB) GetReceipt(id string) (*Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	receipt, ok := m.receipts[id]
	if !ok {
		return nil, notFound(id)
	}
	return cloneReceipt(receipt), nil
}

// ListReceipts returns all receipts ordered by ID
func (m *MemoryDB) ListReceipts() ([]*Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	receipts := make([]*Receipt, 0, len(m.receipts))
	for _, r := range m.receipts {
		receipts = append(receipts, cloneReceipt(r))
	}
	sort.Slice(receipts, func(i, j int) bool { return receipts[i].ID < receipts[j].ID })
	return receipts, nil
}

// Close is a no-op
func (m *MemoryDB) Close() error { return nil }

// cloneReceipt copies r so callers never share the stored items slice
func cloneReceipt(r *Receipt) *Receipt {
	c := *r
	c.Items = append([]Item(nil), r.Items...)
	return &c
}

package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"
)

// PebbleDB implements the DB interface using PebbleDB
type PebbleDB struct {
	// serialises the existence check and write in SaveReceipt
	mu sync.Mutex
	db *pebble.DB
}

// NewPebbleDB opens (or creates) a pebble store in dir
func NewPebbleDB(dir string) (*PebbleDB, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble: %w", err)
	}
	return &PebbleDB{db: d}, nil
}

// SaveReceipt saves a receipt to the database
func (p *PebbleDB) SaveReceipt(receipt *Receipt) error {
	key := []byte(receipt.ID)

	p.mu.Lock()
	defer p.mu.Unlock()

	_, closer, err := p.db.Get(key)
	if err == nil {
		closer.Close()
		return exists(receipt.ID)
	}
	if !errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("checking receipt: %w", err)
	}

	data, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("marshaling receipt: %w", err)
	}
	if err := p.db.Set(key, data, pebble.Sync); err != nil {
		return fmt.Errorf("writing receipt: %w", err)
	}
	return nil
}

// GetReceipt retrieves a receipt by ID
func (p *PebbleDB) GetReceipt(id string) (*Receipt, error) {
	v, closer, err := p.db.Get([]byte(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading receipt: %w", err)
	}
	defer closer.Close()

	var receipt Receipt
	if err := json.Unmarshal(v, &receipt); err != nil {
		return nil, fmt.Errorf("unmarshaling receipt: %w", err)
	}
	return &receipt, nil
}

// ListReceipts returns all receipts in key order
func (p *PebbleDB) ListReceipts() ([]*Receipt, error) {
	it, err := p.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("opening iterator: %w", err)
	}
	defer it.Close()

	receipts := make([]*Receipt, 0)
	for it.First(); it.Valid(); it.Next() {
		var receipt Receipt
		if err := json.Unmarshal(it.Value(), &receipt); err != nil {
			return nil, fmt.Errorf("unmarshaling receipt: %w", err)
		}
		receipts = append(receipts, &receipt)
	}
	return receipts, nil
}

// Close closes the database
func (p *PebbleDB) Close() error { return p.db.Close() }

// Package persist stores the engine's save documents and validates them
// against their JSON schemas on the way back in.
package persist

import (
	"context"
	"errors"
	"fmt"
)

// Save document names.
const (
	CurrencyDoc   = "currency_data.json"
	GrowthDoc     = "growth_action_data.json"
	EvolutionDoc  = "evolution_data.json"
	CollectionDoc = "collection_data.json"
)

// DocumentNames lists every document in load order.
var DocumentNames = []string{CurrencyDoc, GrowthDoc, EvolutionDoc, CollectionDoc}

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidDocument  = errors.New("invalid document")
)

// Store reads and writes named documents.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

// Store kinds accepted by NewStore.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// NewStore opens the store named by kind. An empty kind means file.
func NewStore(kind, dir, sqlitePath string) (Store, error) {
	switch kind {
	case "", KindFile:
		return NewFileStore(dir)
	case KindSQLite:
		return OpenSQLite(sqlitePath)
	case KindMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

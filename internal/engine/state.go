package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/xtding233/nurture-economy/internal/collection"
	"github.com/xtding233/nurture-economy/internal/currency"
	"github.com/xtding233/nurture-economy/internal/evolution"
	"github.com/xtding233/nurture-economy/internal/growth"
	"github.com/xtding233/nurture-economy/internal/persist"
)

// decoded holds whichever documents loaded cleanly.
type decoded struct {
	currency   *currency.Document
	growth     *growth.Document
	evolution  *evolution.Document
	collection *collection.Document
}

// readDoc fetches and validates one document. A missing or invalid
// document is logged and reported as absent; only context errors are
// returned.
func (e *Engine) readDoc(ctx context.Context, name string, out any) (bool, error) {
	raw, err := e.store.Read(ctx, name)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		if errors.Is(err, persist.ErrDocumentNotFound) {
			e.log.Printf("engine: %s not found, using defaults", name)
		} else {
			e.log.Printf("engine: read %s: %v, using defaults", name, err)
		}
		return false, nil
	}
	if err := persist.Decode(name, raw, out); err != nil {
		e.log.Printf("engine: %v, using defaults", err)
		return false, nil
	}
	return true, nil
}

// Load reads every document first and restores only after all reads have
// finished, so a cancelled load changes nothing. Documents that are missing
// or fail validation leave their service at its current state. A
// successful load starts a new session.
func (e *Engine) Load(ctx context.Context) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	var d decoded
	var (
		cur  currency.Document
		gro  growth.Document
		evo  evolution.Document
		coll collection.Document
	)
	steps := []struct {
		name string
		out  any
		set  func()
	}{
		{persist.CurrencyDoc, &cur, func() { d.currency = &cur }},
		{persist.GrowthDoc, &gro, func() { d.growth = &gro }},
		{persist.EvolutionDoc, &evo, func() { d.evolution = &evo }},
		{persist.CollectionDoc, &coll, func() { d.collection = &coll }},
	}
	for _, s := range steps {
		ok, err := e.readDoc(ctx, s.name, s.out)
		if err != nil {
			return fmt.Errorf("load %s: %w", s.name, err)
		}
		if ok {
			s.set()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if d.currency != nil {
		e.ledger.Restore(*d.currency)
	}
	if d.growth != nil {
		e.growth.Restore(*d.growth)
	}
	if d.evolution != nil {
		e.resolver.Restore(*d.evolution)
	}
	if d.collection != nil {
		e.registry.Restore(*d.collection)
	}
	session := e.growth.NewSession()
	e.log.Printf("engine: loaded state, session %d", session)
	return nil
}

// Save snapshots every service under the lock, then writes outside it.
// Saves are serialized end to end, so overlapping calls finish in snapshot
// order. Write failures are joined; a failed document does not stop the
// others.
func (e *Engine) Save(ctx context.Context) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	at := e.now().Unix()
	docs := []struct {
		name string
		doc  any
	}{
		{persist.CurrencyDoc, e.ledger.Snapshot(at)},
		{persist.GrowthDoc, e.growth.Snapshot(at)},
		{persist.EvolutionDoc, e.resolver.Snapshot(at)},
		{persist.CollectionDoc, e.registry.Snapshot(at)},
	}
	e.mu.Unlock()

	var errs []error
	for _, d := range docs {
		b, err := persist.Encode(d.doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("encode %s: %w", d.name, err))
			continue
		}
		if err := e.store.Write(ctx, d.name, b); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", d.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases the store.
func (e *Engine) Close() error { return e.store.Close() }

// Package store keeps the whole application document in memory behind a single
// write lock and snapshots it to durable storage after every committed mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"restaurant-orders/internal/domain"
)

var (
	// ErrNoSnapshot is returned by a Snapshotter that has never been written.
	ErrNoSnapshot = errors.New("no snapshot")
	// ErrSnapshotQuarantined means the stored snapshot could not be decoded and was preserved
	// under another name before being reported.
	ErrSnapshotQuarantined = errors.New("snapshot moved aside")
)

// Snapshotter persists and restores a whole document.
type Snapshotter interface {
	Load(ctx context.Context) (domain.Document, error)
	Save(ctx context.Context, doc domain.Document) error
}

type Store struct {
	mu     sync.RWMutex
	doc    domain.Document
	snap   Snapshotter
	logger *log.Logger
	dirty  bool
	fresh  bool
}

// Open loads the last snapshot. A missing snapshot, or one the snapshotter moved aside as
// undecodable, starts an empty document. Any other load error is returned so the caller never
// overwrites a snapshot it could not read.
func Open(ctx context.Context, snap Snapshotter, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Store{snap: snap, logger: logger}

	doc, err := snap.Load(ctx)
	switch {
	case err == nil:
		doc.Normalize()
		s.doc = doc
		s.logger.Printf("store: loaded products=%d categories=%d orders=%d", len(doc.Products), len(doc.Categories), len(doc.Orders))
	case errors.Is(err, ErrNoSnapshot):
		s.doc = domain.NewDocument()
		s.fresh = true
		s.logger.Printf("store: no snapshot found, starting empty")
	case errors.Is(err, ErrSnapshotQuarantined):
		s.doc = domain.NewDocument()
		s.fresh = true
		s.logger.Printf("store: load error=%v, starting empty", err)
	default:
		s.logger.Printf("store: load error=%v", err)
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return s, nil
}

// Fresh reports whether the store started without a usable snapshot.
func (s *Store) Fresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fresh
}

// View runs fn against a copy of the current document.
func (s *Store) View(fn func(doc domain.Document)) {
	s.mu.RLock()
	doc := s.doc.Clone()
	s.mu.RUnlock()
	fn(doc)
}

// Snapshot returns a copy of the current document.
func (s *Store) Snapshot() domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Update applies fn to a working copy under the write lock. If fn fails nothing changes.
// A failed snapshot write is logged and retried on Flush; the in-memory commit stands.
func (s *Store) Update(ctx context.Context, fn func(doc *domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.doc.Clone()
	if err := fn(&work); err != nil {
		return err
	}
	work.Normalize()
	s.doc = work
	s.persistLocked(ctx)
	return nil
}

// Replace swaps the whole document, as a backup restore does.
func (s *Store) Replace(ctx context.Context, doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc = doc.Clone()
	doc.Normalize()
	s.doc = doc
	s.persistLocked(ctx)
	s.logger.Printf("store: replaced products=%d categories=%d orders=%d", len(doc.Products), len(doc.Categories), len(doc.Orders))
}

// Dirty reports whether the last committed state has not reached the snapshotter.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Flush writes the document if a previous snapshot attempt failed.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if err := s.snap.Save(ctx, s.doc); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Close flushes pending state; the store must not be used afterwards.
func (s *Store) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

func (s *Store) persistLocked(ctx context.Context) {
	if err := s.snap.Save(ctx, s.doc); err != nil {
		s.dirty = true
		s.logger.Printf("store: save error=%v", err)
		return
	}
	s.dirty = false
	s.fresh = false
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the snapshot backend when it supports it.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.snap.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

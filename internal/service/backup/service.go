// Package backup exports and restores the whole store document.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/store"
)

// ErrInvalidBackup wraps every reason a restore payload is refused.
var ErrInvalidBackup = errors.New("invalid backup file")

type Service struct {
	store  *store.Store
	logger *log.Logger
}

func New(s *store.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{store: s, logger: logger}
}

// Export renders the current document in the stored format.
func (s *Service) Export(_ context.Context) ([]byte, error) {
	return store.Encode(s.store.Snapshot())
}

// Restore validates raw and, only if it is a complete document, replaces the store with it.
func (s *Service) Restore(ctx context.Context, raw []byte) error {
	doc, err := domain.DecodeDocument(raw)
	if err != nil {
		s.logger.Printf("backup: restore rejected error=%v", err)
		return fmt.Errorf("%w: %w", ErrInvalidBackup, err)
	}
	s.store.Replace(ctx, doc)
	s.logger.Printf("backup: restored products=%d categories=%d orders=%d", len(doc.Products), len(doc.Categories), len(doc.Orders))
	return nil
}

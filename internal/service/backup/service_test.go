package backup

import (
	"context"
	"path/filepath"
	"testing"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.NewFileSnapshotter(filepath.Join(t.TempDir(), "data.json")), nil)
	require.NoError(t, err)
	require.NoError(t, s.Update(context.Background(), func(doc *domain.Document) error {
		doc.Categories = append(doc.Categories, domain.Category{ID: "1", Name: domain.LocalizedText{FA: "x", EN: "Appetizers", AR: "y"}})
		doc.Orders = append(doc.Orders, domain.Order{ID: "o1", Status: domain.StatusConfirmed, Paid: true})
		return nil
	}))
	return s
}

func TestRestoreMissingOrdersRejected(t *testing.T) {
	s := seededStore(t)
	svc := New(s, nil)

	err := svc.Restore(context.Background(), []byte(`{"products":[],"categories":[]}`))
	require.ErrorIs(t, err, ErrInvalidBackup)

	doc := s.Snapshot()
	assert.Len(t, doc.Categories, 1)
	assert.Len(t, doc.Orders, 1)
}

func TestRestoreGarbageRejected(t *testing.T) {
	s := seededStore(t)
	err := New(s, nil).Restore(context.Background(), []byte("not json"))
	require.ErrorIs(t, err, ErrInvalidBackup)
	assert.Len(t, s.Snapshot().Orders, 1)
}

func TestExportRestoreRoundTrip(t *testing.T) {
	src := New(seededStore(t), nil)
	raw, err := src.Export(context.Background())
	require.NoError(t, err)

	dst, err := store.Open(context.Background(), store.NewFileSnapshotter(filepath.Join(t.TempDir(), "data.json")), nil)
	require.NoError(t, err)
	require.NoError(t, New(dst, nil).Restore(context.Background(), raw))

	doc := dst.Snapshot()
	require.Len(t, doc.Orders, 1)
	assert.Equal(t, "o1", doc.Orders[0].ID)
	assert.Equal(t, "Appetizers", doc.Categories[0].Name.EN)
}

func TestRestoreReplacesWholeDocument(t *testing.T) {
	s := seededStore(t)
	err := New(s, nil).Restore(context.Background(), []byte(`{"products":[],"categories":[],"orders":[]}`))
	require.NoError(t, err)
	doc := s.Snapshot()
	assert.Empty(t, doc.Orders)
	assert.Empty(t, doc.Categories)
}

func TestRestoreMapsLegacyOrderStatus(t *testing.T) {
	s := seededStore(t)
	raw := `{"products":[],"categories":[],"orders":[{"id":"old-1","status":"delivered_manually","paid":true}]}`
	require.NoError(t, New(s, nil).Restore(context.Background(), []byte(raw)))

	doc := s.Snapshot()
	require.Len(t, doc.Orders, 1)
	assert.Equal(t, domain.StatusConfirmed, doc.Orders[0].Status)
	assert.Equal(t, "delivered_manually", doc.Orders[0].LegacyStatus)
}

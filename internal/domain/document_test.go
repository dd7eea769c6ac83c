package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDocumentRequiresAllCollections(t *testing.T) {
	_, err := DecodeDocument([]byte(`{"products":[],"categories":[]}`))
	require.ErrorIs(t, err, ErrInvalid)

	_, err = DecodeDocument([]byte(`[1,2]`))
	require.ErrorIs(t, err, ErrInvalid)

	doc, err := DecodeDocument([]byte(`{"products":null,"categories":[],"orders":[]}`))
	require.NoError(t, err)
	assert.NotNil(t, doc.Products)
}

func TestDecodeDocumentRejectsDuplicates(t *testing.T) {
	dup := `{"products":[],"categories":[
		{"id":"1","name":{"fa":"a","en":"a","ar":"a"}},
		{"id":"1","name":{"fa":"b","en":"b","ar":"b"}}],"orders":[]}`
	_, err := DecodeDocument([]byte(dup))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestDecodeDocumentMapsLegacyStatuses(t *testing.T) {
	raw := `{"products":[],"categories":[],"orders":[
		{"id":"o1","status":"delivered_manually","paid":true},
		{"id":"o2","status":"abandoned","paid":false},
		{"id":"o3","status":"preparing","paid":true}]}`
	doc, err := DecodeDocument([]byte(raw))
	require.NoError(t, err)
	require.Len(t, doc.Orders, 3)

	assert.Equal(t, StatusConfirmed, doc.Orders[0].Status)
	assert.Equal(t, "delivered_manually", doc.Orders[0].LegacyStatus)
	assert.Equal(t, StatusCancelled, doc.Orders[1].Status)
	assert.Equal(t, "abandoned", doc.Orders[1].LegacyStatus)
	assert.Equal(t, StatusPreparing, doc.Orders[2].Status)
	assert.Empty(t, doc.Orders[2].LegacyStatus)

	out, err := json.Marshal(doc.Orders[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"legacy_status":"delivered_manually"`)

	require.NoError(t, doc.Orders[0].SetStatus(StatusCompleted, time.Now()))
}

func TestDocumentMoneyEncodesAsNumbers(t *testing.T) {
	p := validProduct()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":15.5`)
}

func TestNewDocumentEncodesEmptyArrays(t *testing.T) {
	raw, err := json.Marshal(NewDocument())
	require.NoError(t, err)
	assert.JSONEq(t, `{"products":[],"categories":[],"orders":[]}`, string(raw))
}

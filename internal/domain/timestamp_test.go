package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampAcceptsZonelessISO(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1717000000000","date":"2024-05-29T17:46:40.123456","status":"pending_payment"}`), &o))
	assert.Equal(t, time.Date(2024, 5, 29, 17, 46, 40, 123456000, time.UTC), o.Date.Time)
}

func TestTimestampRoundTripsRFC3339(t *testing.T) {
	at := NewTimestamp(time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("GST", 4*3600)))
	raw, err := json.Marshal(at)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-01T08:00:00Z"`, string(raw))

	var back Timestamp
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Equal(at.Time))
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

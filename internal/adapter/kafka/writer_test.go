package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cyclone-inference-service/internal/domain"
)

func TestSerializeRecord(t *testing.T) {
	probability := 0.91
	rec := domain.PredictionRecord{
		ID: "rec-123",
		Features: domain.FeatureVector{
			SeaSurfaceTemp: 29.5,
			Pressure:       995.0,
			Humidity:       82.0,
			WindShear:      6.5,
			Vorticity:      3.1e-5,
			Latitude:       14.2,
			OceanDepth:     3200.0,
			Proximity:      120.0,
			Disturbance:    1,
		},
		Class:       domain.ClassCyclone,
		Label:       "Cyclone",
		Probability: &probability,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	msg, err := serializeRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("rec-123"), msg.Key)

	var decoded domain.PredictionRecord
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, rec.ID, decoded.ID)
	assert.Equal(t, rec.Class, decoded.Class)
	require.NotNil(t, decoded.Probability)
	assert.InDelta(t, probability, *decoded.Probability, 1e-9)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "Cyclone", headers["label"])
	assert.Equal(t, "2026-03-01T12:00:00Z", headers["created_at"])
}

func TestSerializeRecordNilProbability(t *testing.T) {
	rec := domain.PredictionRecord{
		ID:        "rec-456",
		Class:     domain.ClassNoCyclone,
		Label:     "No Cyclone",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	msg, err := serializeRecord(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	value, present := decoded["probability"]
	assert.True(t, present)
	assert.Nil(t, value)
}

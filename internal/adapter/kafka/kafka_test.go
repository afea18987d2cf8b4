package kafka

import (
	"testing"
	"time"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/catalog"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/config"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSample(label float64) domain.DaySample {
	return domain.DaySample{
		Date:     "01.01.2009",
		Steps:    2,
		Features: 3,
		Values:   []float64{1, 2, 3, 4, 5, 6},
		Label:    label,
	}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage("run-1", testSample(2.5))
	require.NoError(t, err)

	assert.Equal(t, []byte("01.01.2009"), msg.Key)
	assert.JSONEq(t, `{
		"run_id": "run-1",
		"catalog_version": "`+catalog.Version+`",
		"date": "01.01.2009",
		"steps": 2,
		"features": 3,
		"values": [1, 2, 3, 4, 5, 6],
		"label": 2.5
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[0].Value)
	assert.Equal(t, "class", msg.Headers[1].Key)
	assert.Equal(t, []byte("rain"), msg.Headers[1].Value)
	assert.Equal(t, "shape", msg.Headers[2].Key)
	assert.Equal(t, []byte("2x3"), msg.Headers[2].Value)
}

func TestSerializeToMessage_NoRainClass(t *testing.T) {
	msg, err := serializeToMessage("run-1", testSample(0))
	require.NoError(t, err)
	assert.Equal(t, []byte("no_rain"), msg.Headers[1].Value)
}

func TestDecodeSample_RoundTrip(t *testing.T) {
	want := testSample(0.3)
	msg, err := serializeToMessage("run-7", want)
	require.NoError(t, err)

	runID, got, err := DecodeSample(msg)
	require.NoError(t, err)
	assert.Equal(t, "run-7", runID)
	assert.Equal(t, want, got)
}

func TestDecodeSample_Errors(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{name: "invalid json", value: `{`, wantErr: "decode day sample"},
		{name: "foreign catalog", value: `{"catalog_version":"other","steps":1,"features":1,"values":[1]}`, wantErr: "catalog version"},
		{name: "shape mismatch", value: `{"catalog_version":"` + catalog.Version + `","date":"d","steps":2,"features":2,"values":[1]}`, wantErr: "1 values for shape 2x2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeSample(kafkago.Message{Value: []byte(tt.value)})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewWriter_UsesConfig(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:         []string{"broker-1:9092", "broker-2:9092"},
		KafkaSinkTopic:       "samples",
		PublishBatchSize:     25,
		PublishFlushInterval: 200 * time.Millisecond,
	}
	w := NewWriter(cfg, nil)
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "samples", w.writer.Topic)
	assert.Equal(t, 25, w.writer.BatchSize)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
	assert.Equal(t, 200*time.Millisecond, w.writer.BatchTimeout)
	assert.Equal(t, "broker-1:9092,broker-2:9092", w.writer.Addr.String())
}

func TestLoadBatch_Empty(t *testing.T) {
	w := &Writer{}
	assert.NoError(t, w.LoadBatch(t.Context(), "run-1", nil))
}

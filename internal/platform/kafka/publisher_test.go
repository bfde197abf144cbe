package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishJSON_KeyAndValue(t *testing.T) {
	w := &recordingWriter{}
	p := NewPublisherWithWriter(w)

	require.NoError(t, p.PublishJSON(context.Background(), "tx-1", map[string]string{"payment_id": "p-1"}))
	require.Len(t, w.msgs, 1)
	require.Equal(t, "tx-1", string(w.msgs[0].Key))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &body))
	require.Equal(t, "p-1", body["payment_id"])
	require.False(t, w.msgs[0].Time.IsZero())
}

func TestPublishJSON_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker unavailable")
	p := NewPublisherWithWriter(&recordingWriter{err: boom})
	require.ErrorIs(t, p.PublishJSON(context.Background(), "k", 1), boom)
}

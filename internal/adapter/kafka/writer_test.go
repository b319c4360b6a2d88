package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratawatch/cii-engine/internal/pipeline"
)

func TestSerializeToMessage(t *testing.T) {
	env := pipeline.Envelope{
		Source:  "protests",
		Payload: json.RawMessage(`[{"lat":48.8,"lon":2.3,"country":"FR"}]`),
	}

	msg, err := serializeToMessage(env)
	require.NoError(t, err)

	assert.Equal(t, []byte("protests"), msg.Key, "messages are keyed by source for per-feed ordering")

	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "source", msg.Headers[0].Key)
	assert.Equal(t, []byte("protests"), msg.Headers[0].Value)

	var decoded pipeline.Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, env.Source, decoded.Source)
	assert.JSONEq(t, string(env.Payload), string(decoded.Payload))
}

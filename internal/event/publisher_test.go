package event

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventJSON(t *testing.T) {
	e := New(TypeCredited, "user-1", map[string]interface{}{"amount": "12.5"})
	b, err := json.Marshal(e)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "ledger.credited", got["type"])
	assert.Equal(t, "user-1", got["user_id"])
	assert.NotEmpty(t, got["id"])
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var p Publisher = &r
	require.NoError(t, p.Publish(context.Background(), New(TypeLockUpgraded, "u", nil)))
	require.NoError(t, NopPublisher{}.Publish(context.Background(), New(TypeLockReleased, "u", nil)))
	assert.Equal(t, []string{TypeLockUpgraded}, r.Types())
}

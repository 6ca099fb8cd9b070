package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutURLDropsEvents(t *testing.T) {
	p, err := New("")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.Publish(context.Background(), AttendanceMarked, map[string]string{"user_id": "u1"}))
	assert.NoError(t, p.Close())
}

func TestNewUnreachableServer(t *testing.T) {
	_, err := New("nats://127.0.0.1:1")
	assert.ErrorContains(t, err, "failed to connect to NATS")
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), AttendanceMarked, 42))
	require.Len(t, r.Events, 1)
	assert.Equal(t, Recorded{Subject: AttendanceMarked, Data: 42}, r.Events[0])
}

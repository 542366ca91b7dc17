package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(10, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.ConnectionCount())

	hub.UnregisterClient(clientA)
	assert.Equal(t, 1, hub.ConnectionCount())

	// Double unregister is harmless.
	hub.UnregisterClient(clientA)
	assert.Equal(t, 1, hub.ConnectionCount())

	hub.UnregisterClient(clientB)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(7, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(7, nil)
	assert.Error(t, err)

	// Another user is unaffected.
	_, err = hub.Register(8, nil)
	assert.NoError(t, err)
}

func TestHub_AnonymousClientsSkipPerUserLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser+1; i++ {
		_, err := hub.Register(0, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, maxConnsPerUser+1, hub.ConnectionCount())
}

func TestHub_BroadcastReachesAllUserClients(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(3, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(3, nil)
	require.NoError(t, err)
	other, err := hub.Register(4, nil)
	require.NoError(t, err)

	hub.Broadcast(3, `{"type":"comment_approved"}`)

	assert.Len(t, clientA.Send, 1)
	assert.Len(t, clientB.Send, 1)
	assert.Len(t, other.Send, 0)
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()

	authed, err := hub.Register(3, nil)
	require.NoError(t, err)
	anon, err := hub.Register(0, nil)
	require.NoError(t, err)

	hub.BroadcastAll(`{"type":"comment_created"}`)

	assert.Len(t, authed.Send, 1)
	assert.Len(t, anon.Send, 1)
}

func TestHub_ShutdownClearsConnections(t *testing.T) {
	hub := NewHub()

	_, err := hub.Register(3, nil)
	require.NoError(t, err)
	_, err = hub.Register(0, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.ConnectionCount())
}

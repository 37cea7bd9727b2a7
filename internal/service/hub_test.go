package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/benbeisheim/chessrules-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []ws.Message
	control  []int
	closed   bool
	fail     bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var msg ws.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeConn) WriteMessage(messageType int, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.control = append(f.control, messageType)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) types() []ws.MessageType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ws.MessageType, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.Type)
	}
	return out
}

func TestHubRegisterRejectsDuplicates(t *testing.T) {
	hub := NewHub()
	first, second := &fakeConn{}, &fakeConn{}

	require.NoError(t, hub.Register("g1", "alice", first))
	err := hub.Register("g1", "alice", second)
	assert.ErrorIs(t, err, ErrDuplicateConnection)
	assert.True(t, second.closed)
	assert.Equal(t, []int{websocket.CloseMessage}, second.control)
	assert.False(t, first.closed)
	assert.Equal(t, 1, hub.Count("g1"))

	require.NoError(t, hub.Register("g2", "alice", &fakeConn{}))
	assert.Equal(t, 1, hub.Count("g2"))
}

func TestHubBroadcastDropsFailedClients(t *testing.T) {
	hub := NewHub()
	good, bad, other := &fakeConn{}, &fakeConn{fail: true}, &fakeConn{}
	require.NoError(t, hub.Register("g1", "good", good))
	require.NoError(t, hub.Register("g1", "bad", bad))
	require.NoError(t, hub.Register("g2", "other", other))

	msg, err := ws.NewMessage(ws.MessageTypeTurn, map[string]string{"side": "black"})
	require.NoError(t, err)
	hub.Broadcast("g1", msg)

	assert.Equal(t, []ws.MessageType{ws.MessageTypeTurn}, good.types())
	assert.Empty(t, other.types())
	assert.Equal(t, 1, hub.Count("g1"))
}

func TestHubSendAndUnregister(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	require.NoError(t, hub.Register("g1", "alice", conn))

	msg, err := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: "nope"})
	require.NoError(t, err)
	require.NoError(t, hub.Send("g1", "alice", msg))
	assert.NoError(t, hub.Send("g1", "nobody", msg))
	assert.Equal(t, []ws.MessageType{ws.MessageTypeError}, conn.types())

	hub.Unregister("g1", "alice")
	hub.Unregister("g1", "alice")
	hub.Unregister("missing", "alice")
	assert.Equal(t, 0, hub.Count("g1"))
}

func TestHubCloseGame(t *testing.T) {
	hub := NewHub()
	a, b, other := &fakeConn{}, &fakeConn{}, &fakeConn{}
	require.NoError(t, hub.Register("g1", "a", a))
	require.NoError(t, hub.Register("g1", "b", b))
	require.NoError(t, hub.Register("g2", "other", other))

	hub.CloseGame("g1", "game deleted")
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.False(t, other.closed)
	assert.Equal(t, 0, hub.Count("g1"))
	assert.Equal(t, 1, hub.Count("g2"))

	hub.CloseGame("missing", "game deleted")
}

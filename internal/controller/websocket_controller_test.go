package controller

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	mu       sync.Mutex
	messages []ws.Message
}

func (r *recordingConn) WriteJSON(v interface{}) error {
	msg, ok := v.(ws.Message)
	if !ok {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordingConn) WriteMessage(int, []byte) error { return nil }
func (r *recordingConn) Close() error                  { return nil }

func (r *recordingConn) types() []ws.MessageType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ws.MessageType, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, m.Type)
	}
	return out
}

func (r *recordingConn) last() ws.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[len(r.messages)-1]
}

type wsFixture struct {
	wsc    *WebSocketController
	gs     *service.GameService
	gameID string
	alice  *recordingConn
	bob    *recordingConn
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gs := service.NewGameService(service.NewGameManager(service.NewHub()))
	gameID, err := gs.CreateGame(service.CreateOptions{Start: true})
	require.NoError(t, err)

	f := &wsFixture{
		wsc:    NewWebSocketController(gs),
		gs:     gs,
		gameID: gameID,
		alice:  &recordingConn{},
		bob:    &recordingConn{},
	}
	require.NoError(t, gs.RegisterConnection(gameID, "alice", f.alice))
	require.NoError(t, gs.RegisterConnection(gameID, "bob", f.bob))
	return f
}

func (f *wsFixture) send(clientID, frame string) {
	f.wsc.dispatch(f.gameID, clientID, []byte(frame))
}

func errorText(t *testing.T, msg ws.Message) string {
	t.Helper()
	require.Equal(t, ws.MessageTypeError, msg.Type)
	var payload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	return payload.Error
}

func TestWSLegalMovesRepliesToSenderOnly(t *testing.T) {
	f := newWSFixture(t)
	f.send("alice", `{"type":"legalMoves","payload":{"square":"g1"}}`)

	assert.Equal(t, []ws.MessageType{ws.MessageTypeGameState, ws.MessageTypeLegalMoves}, f.alice.types())
	assert.Equal(t, []ws.MessageType{ws.MessageTypeGameState}, f.bob.types())

	var reply LegalMovesResponse
	require.NoError(t, json.Unmarshal(f.alice.last().Payload, &reply))
	assert.Equal(t, "g1", reply.Square)
	require.Len(t, reply.Moves, 2)
	assert.ElementsMatch(t, []string{"f3", "h3"}, []string{reply.Moves[0].String(), reply.Moves[1].String()})
	assert.Empty(t, reply.Enemies)

	f.send("bob", `{"type":"legalMoves","payload":{"square":"a1"}}`)
	require.NoError(t, json.Unmarshal(f.bob.last().Payload, &reply))
	assert.Equal(t, ws.MessageTypeLegalMoves, f.bob.last().Type)
	assert.Empty(t, reply.Moves)
	assert.Len(t, f.alice.types(), 2)
}

func TestWSMoveBroadcastsState(t *testing.T) {
	f := newWSFixture(t)
	f.send("alice", `{"type":"move","payload":{"side":"white","from":"e2","to":"e4"}}`)

	want := []ws.MessageType{
		ws.MessageTypeGameState,
		ws.MessageTypeTurn,
		ws.MessageTypeGameState,
		ws.MessageTypeCheck,
		ws.MessageTypeCheck,
	}
	assert.Equal(t, want, f.alice.types())
	assert.Equal(t, want, f.bob.types())

	st, err := f.gs.GetGameState(f.gameID)
	require.NoError(t, err)
	assert.Equal(t, model.Black, st.ToMove)
	require.NotNil(t, st.LastMove)
	assert.Equal(t, "e4", st.LastMove.To.String())
}

func TestWSErrorsGoBackToSender(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"illegal move", `{"type":"move","payload":{"side":"white","from":"e2","to":"e5"}}`, model.ErrIllegalMove.Error()},
		{"wrong turn", `{"type":"move","payload":{"side":"black","from":"e7","to":"e5"}}`, model.ErrWrongTurn.Error()},
		{"unknown square", `{"type":"legalMoves","payload":{"square":"z0"}}`, model.ErrUnknownSquare.Error()},
		{"unknown type", `{"type":"resign","payload":{}}`, "unknown message type"},
		{"malformed frame", `{"type":`, "parse error"},
		{"malformed move payload", `{"type":"move","payload":"e2e4"}`, "cannot unmarshal"},
		{"malformed legal moves payload", `{"type":"legalMoves","payload":[1]}`, "cannot unmarshal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWSFixture(t)
			f.send("alice", tt.frame)

			require.Len(t, f.alice.types(), 2)
			assert.Contains(t, errorText(t, f.alice.last()), tt.want)
			assert.Equal(t, []ws.MessageType{ws.MessageTypeGameState}, f.bob.types())

			st, err := f.gs.GetGameState(f.gameID)
			require.NoError(t, err)
			assert.Empty(t, st.MoveHistory)
		})
	}
}

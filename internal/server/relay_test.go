package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coupfree/coup-server-go/internal/game"
	"github.com/coupfree/coup-server-go/internal/session"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type relayFixture struct {
	relay    *Relay
	matches  *game.Manager
	sessions *session.Manager
	server   *httptest.Server
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	matches := game.NewManager(zap.NewNop())
	sessions := session.NewManager(time.Minute, zap.NewNop())
	relay := NewRelay(matches, sessions, zap.NewNop())
	matches.SetNotificationHandler(relay.HandleNotification)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", relay.handleWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &relayFixture{relay: relay, matches: matches, sessions: sessions, server: server}
}

func (f *relayFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestRelayRegisterIssuesAToken(t *testing.T) {
	f := newRelayFixture(t)
	conn := f.dial(t)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgRegister, Token: "alice"}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgRegistered, msg.Type)
	assert.NotEmpty(t, msg.Token)
}

func TestRelayJoinSendsARedactedView(t *testing.T) {
	f := newRelayFixture(t)
	require.NoError(t, f.matches.StartMatch("m1", game.Config{PlayerCount: 2, Seed: 42}))

	conn := f.dial(t)
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgRegister, Token: "alice"}))
	token := readMessage(t, conn).Token

	require.NoError(t, conn.WriteJSON(ClientMessage{
		Type: MsgJoin, Token: token, MatchID: "m1", PlayerID: "player-1",
	}))
	msg := readMessage(t, conn)
	require.Equal(t, MsgView, msg.Type)
	require.NotNil(t, msg.View)
	assert.Equal(t, "player-1", msg.View.ViewerID)

	// Own cards visible, opponent's hidden.
	require.Len(t, msg.View.Players, 2)
	assert.NotNil(t, msg.View.Players[0].Cards[0].Character)
	assert.Nil(t, msg.View.Players[1].Cards[0].Character)
}

func TestRelayCommandBroadcastsFreshViews(t *testing.T) {
	f := newRelayFixture(t)
	require.NoError(t, f.matches.StartMatch("m1", game.Config{PlayerCount: 2, Seed: 42}))

	conn := f.dial(t)
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgRegister, Token: "alice"}))
	token := readMessage(t, conn).Token
	require.NoError(t, conn.WriteJSON(ClientMessage{
		Type: MsgJoin, Token: token, MatchID: "m1", PlayerID: "player-1",
	}))
	readMessage(t, conn) // join view

	require.NoError(t, conn.WriteJSON(ClientMessage{
		Type: MsgCommand, Token: token, MatchID: "m1",
		Command: game.Command{
			Type:     game.CmdDeclareAction,
			PlayerID: "player-1",
			Action:   "INCOME",
		},
	}))

	msg := readMessage(t, conn)
	require.Equal(t, MsgView, msg.Type)
	require.NotNil(t, msg.View)
	assert.Equal(t, 3, msg.View.Players[0].Coins)
	assert.Equal(t, "player-2", msg.View.CurrentPlayer)
}

func TestRelayRejectedCommandReturnsAnError(t *testing.T) {
	f := newRelayFixture(t)
	require.NoError(t, f.matches.StartMatch("m1", game.Config{PlayerCount: 2, Seed: 42}))

	conn := f.dial(t)
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgRegister, Token: "alice"}))
	token := readMessage(t, conn).Token

	// Out-of-turn command: the match must stand and the caller learns why.
	require.NoError(t, conn.WriteJSON(ClientMessage{
		Type: MsgCommand, Token: token, MatchID: "m1",
		Command: game.Command{
			Type:     game.CmdDeclareAction,
			PlayerID: "player-2",
			Action:   "INCOME",
		},
	}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.NotEmpty(t, msg.Error)

	state, err := f.matches.CurrentState("m1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.Turn)
}

func TestRelayRequiresAValidSession(t *testing.T) {
	f := newRelayFixture(t)
	require.NoError(t, f.matches.StartMatch("m1", game.Config{PlayerCount: 2, Seed: 42}))

	conn := f.dial(t)
	require.NoError(t, conn.WriteJSON(ClientMessage{
		Type: MsgJoin, Token: "bogus", MatchID: "m1", PlayerID: "player-1",
	}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgError, msg.Type)
}

func TestRelayUnknownMessageType(t *testing.T) {
	f := newRelayFixture(t)
	conn := f.dial(t)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "NOPE"}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgError, msg.Type)
}

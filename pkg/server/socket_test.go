package server

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webdesk/pkg/apps"
	"webdesk/pkg/websocket"
)

func (a *testAPI) dialTerminal(id string) *websocket.Conn {
	a.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(a.srv.URL, "http") + base + "/terminals/" + id + "/ws"
	conn, err := websocket.Dial(ctx, url, nil)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { _ = conn.Close(websocket.StatusNormal, "") })
	require.NoError(a.t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

// next reads events until one of type typ arrives.
func next(t *testing.T, conn *websocket.Conn, typ string, match func(socketEvent) bool) socketEvent {
	t.Helper()
	for {
		var ev socketEvent
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Type == typ && (match == nil || match(ev)) {
			return ev
		}
	}
}

func TestTerminalSocket(t *testing.T) {
	api := newTestAPI(t, Options{})

	var opened windowResponse
	require.Equal(t, http.StatusCreated,
		api.do(http.MethodPost, base+"/windows", map[string]string{"appId": apps.Terminal}, &opened))
	conn := api.dialTerminal(opened.ID)

	first := next(t, conn, "transcript", nil)
	require.NotNil(t, first.Transcript)
	assert.Equal(t, opened.ID, first.Transcript.WindowID)
	assert.Empty(t, first.Transcript.Lines)

	require.NoError(t, conn.WriteJSON(socketRequest{Type: "exec", Line: "echo over the wire"}))
	done := next(t, conn, "transcript", func(ev socketEvent) bool {
		tr := ev.Transcript
		return !tr.Busy && len(tr.Lines) == 2
	})
	assert.Contains(t, done.Transcript.Lines[1].Text, "over the wire")

	require.NoError(t, conn.WriteJSON(socketRequest{Type: "complete", Line: "cd Doc"}))
	c := next(t, conn, "completion", nil)
	assert.Equal(t, "cd Documents/", c.Completion.Line)

	require.NoError(t, conn.WriteJSON(socketRequest{Type: "history", Direction: "prev"}))
	h := next(t, conn, "history", nil)
	assert.Equal(t, historyResponse{Line: "echo over the wire", OK: true}, *h.History)

	require.NoError(t, conn.WriteJSON(socketRequest{Type: "history", Direction: "sideways"}))
	assert.Contains(t, next(t, conn, "error", nil).Error, "sideways")

	require.NoError(t, conn.WriteJSON(socketRequest{Type: "dance"}))
	assert.Contains(t, next(t, conn, "error", nil).Error, "dance")

	require.NoError(t, conn.WriteMessage(websocket.OpText, []byte("{not json")))
	assert.Contains(t, next(t, conn, "error", nil).Error, "invalid message")

	// the transcript written by a plain HTTP exec reaches the socket too
	require.Equal(t, http.StatusOK,
		api.do(http.MethodPost, base+"/terminals/"+opened.ID+"/exec", execRequest{Line: "pwd"}, nil))
	next(t, conn, "transcript", func(ev socketEvent) bool { return len(ev.Transcript.Lines) == 4 })

	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, base+"/windows/"+opened.ID, nil, nil))
	next(t, conn, "closed", nil)
	_, _, err := conn.ReadMessage()
	assert.ErrorIs(t, err, websocket.ErrClosed)
}

func TestTerminalSocketRejects(t *testing.T) {
	api := newTestAPI(t, Options{})

	var e ErrorResponse
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, base+"/terminals/win-missing/ws", nil, &e))

	var opened windowResponse
	require.Equal(t, http.StatusCreated,
		api.do(http.MethodPost, base+"/windows", map[string]string{"appId": apps.Terminal}, &opened))
	resp, err := http.Get(api.srv.URL + base + "/terminals/" + opened.ID + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "plain GET is not a handshake")
}

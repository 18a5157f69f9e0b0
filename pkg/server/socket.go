package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"webdesk/pkg/logging"
	"webdesk/pkg/session"
	"webdesk/pkg/websocket"
)

// socketPollInterval is how often a terminal socket checks its transcript
// for changes.
const socketPollInterval = 100 * time.Millisecond

// socketRequest is a message from the client of a terminal socket.
type socketRequest struct {
	Type      string `json:"type"` // exec, complete, history or transcript
	Line      string `json:"line,omitempty"`
	Direction string `json:"direction,omitempty"` // prev or next
}

// socketEvent is a message to the client of a terminal socket.
type socketEvent struct {
	Type       string              `json:"type"` // transcript, completion, history, error or closed
	Transcript *session.Transcript `json:"transcript,omitempty"`
	Completion *completeResponse   `json:"completion,omitempty"`
	History    *historyResponse    `json:"history,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// handleTerminalSocket streams the transcript of a terminal window and
// accepts commands for it over a websocket.
func (a *API) handleTerminalSocket(w http.ResponseWriter, r *http.Request) {
	d := desktopFrom(r)
	id := chi.URLParam(r, "id")
	if _, err := d.Transcript(id); err != nil {
		writeError(w, r, err)
		return
	}

	log := logging.WithContext(r.Context()).With(zap.String("window", id))
	conn, err := websocket.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormal, "")
	log.Debug("terminal socket opened", zap.String("remote", conn.RemoteAddr().String()))

	ctx, cancel := context.WithCancel(r.Context())
	pushed := make(chan struct{})
	go func() {
		defer close(pushed)
		pushTranscript(ctx, conn, d, id)
	}()
	defer func() {
		cancel()
		<-pushed
	}()

	for {
		var req socketRequest
		if err := conn.ReadJSON(&req); err != nil {
			var (
				syntaxErr *json.SyntaxError
				typeErr   *json.UnmarshalTypeError
			)
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				_ = conn.WriteJSON(socketEvent{Type: "error", Error: "invalid message: " + err.Error()})
				continue
			}
			if !errors.Is(err, websocket.ErrClosed) {
				log.Debug("terminal socket read", zap.Error(err))
			}
			return
		}
		if ev := handleSocketRequest(d, id, req); ev != nil {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

// handleSocketRequest runs one client request. Exec replies through the
// transcript stream, so it returns nil unless it fails.
func handleSocketRequest(d *session.Desktop, id string, req socketRequest) *socketEvent {
	fail := func(err error) *socketEvent {
		return &socketEvent{Type: "error", Error: err.Error()}
	}

	switch req.Type {
	case "exec":
		if err := d.Submit(id, req.Line); err != nil {
			return fail(err)
		}
		return nil

	case "complete":
		c, err := d.Complete(id, req.Line)
		if err != nil {
			return fail(err)
		}
		resp := completeResponse(c)
		return &socketEvent{Type: "completion", Completion: &resp}

	case "history":
		step := d.HistoryPrev
		switch req.Direction {
		case "prev":
		case "next":
			step = d.HistoryNext
		default:
			return fail(badRequest("unknown history direction " + req.Direction))
		}
		line, ok, err := step(id)
		if err != nil {
			return fail(err)
		}
		return &socketEvent{Type: "history", History: &historyResponse{Line: line, OK: ok}}

	case "transcript":
		tr, err := d.Transcript(id)
		if err != nil {
			return fail(err)
		}
		return &socketEvent{Type: "transcript", Transcript: &tr}
	}
	return fail(badRequest("unknown message type " + req.Type))
}

// pushTranscript sends the transcript whenever it changes until ctx is done
// or the window is closed.
func pushTranscript(ctx context.Context, conn *websocket.Conn, d *session.Desktop, id string) {
	tick := time.NewTicker(socketPollInterval)
	defer tick.Stop()

	var last []byte
	for {
		tr, err := d.Transcript(id)
		if err != nil {
			_ = conn.WriteJSON(socketEvent{Type: "closed"})
			_ = conn.Close(websocket.StatusNormal, "window closed")
			return
		}
		data, err := json.Marshal(socketEvent{Type: "transcript", Transcript: &tr})
		if err == nil && !bytes.Equal(data, last) {
			if err := conn.WriteMessage(websocket.OpText, data); err != nil {
				return
			}
			last = data
		}

		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}

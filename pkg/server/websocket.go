package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Sumatoshi-tech/locstats/pkg/dataset"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
)

const (
	wsBufferSize     = 1024
	wsMaxMessageSize = 4096
	wsWriteWait      = 10 * time.Second
	wsDefaultIdle    = 60 * time.Second
)

// WindowRequest is one slider position sent over /ws/window. Exactly one
// field is set.
type WindowRequest struct {
	Progress *float64 `json:"progress,omitempty"`
	Cutoff   *string  `json:"cutoff,omitempty"`
	Step     *int     `json:"step,omitempty"`
	// Limit caps the file list of the reply.
	Limit int `json:"limit,omitempty"`
}

// sameOrigin accepts requests without an Origin header (non-browser clients)
// and browser requests from the host serving the page.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return u.Host == r.Host
}

// handleWindowSocket answers every WindowRequest with the window view, or
// with an ErrorResponse. The connection holds no state between messages.
func (s *Server) handleWindowSocket(responseWriter http.ResponseWriter, request *http.Request) {
	ds, ok := s.dataset(responseWriter, request)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(responseWriter, request, nil)
	if err != nil {
		s.logger.WarnContext(request.Context(), "websocket upgrade failed", "error", err)

		return
	}

	s.track(conn)

	defer func() {
		s.untrack(conn)
		conn.Close()
	}()

	idle := s.opts.Config.IdleTimeout
	if idle <= 0 {
		idle = wsDefaultIdle
	}

	conn.SetReadLimit(wsMaxMessageSize)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(idle))

		_, data, readErr := conn.ReadMessage()
		if readErr != nil {
			if !websocket.IsCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(readErr, net.ErrClosed) {
				s.logger.DebugContext(request.Context(), "websocket closed", "error", readErr)
			}

			return
		}

		var reply any

		var msg WindowRequest

		decodeErr := json.Unmarshal(data, &msg)
		if decodeErr != nil {
			reply = ErrorResponse{Error: fmt.Sprintf("invalid message: %v", decodeErr)}
		} else {
			reply = s.windowReply(ds, msg)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))

		writeErr := conn.WriteJSON(reply)
		if writeErr != nil {
			s.logger.DebugContext(request.Context(), "websocket write failed", "error", writeErr)

			return
		}
	}
}

func (s *Server) windowReply(ds *dataset.Dataset, msg WindowRequest) any {
	query := dataset.WindowQuery{Progress: msg.Progress, Step: msg.Step}

	if msg.Cutoff != nil {
		cutoff, err := linelog.ParseTimestamp(*msg.Cutoff)
		if err != nil {
			return ErrorResponse{Error: fmt.Sprintf("cutoff: %v", err)}
		}

		query.Cutoff = &cutoff
	}

	window, err := ds.Query(query)
	if err != nil {
		return ErrorResponse{Error: err.Error()}
	}

	limit := msg.Limit
	if limit <= 0 {
		limit = s.opts.Config.FileLimit
	}

	return ds.View(window, limit)
}

package rpc

import (
	"log/slog"
	"net/http"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"swapdex/core/events"
)

// SetStream attaches a live event broadcaster, served over a websocket on
// /ws/events. Without one the endpoint reports not found.
func (s *Server) SetStream(b *events.Broadcaster) {
	s.stream = b
}

func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	if s.stream == nil {
		http.Error(w, "event stream not configured", http.StatusNotFound)
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", slog.Any("error", err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	ch, cancel := s.stream.Subscribe()
	defer cancel()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case evt := <-ch:
			if err := wsjson.Write(ctx, conn, evt); err != nil {
				return
			}
		}
	}
}

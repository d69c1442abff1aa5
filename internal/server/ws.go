package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmylchreest/toastui/internal/center"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/render"
	"github.com/jmylchreest/toastui/internal/surface"
)

const (
	streamBuffer = 256
	writeTimeout = 10 * time.Second
)

// StreamMessage is one websocket frame. HTML is the toast element as it
// looked when the frame was built; Surface carries the whole surface on
// added events so a page that has none yet can create it.
type StreamMessage struct {
	Type    center.EventType    `json:"type"`
	Toast   *model.Notification `json:"toast,omitempty"`
	HTML    string              `json:"html,omitempty"`
	Surface string              `json:"surface,omitempty"`
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.currentConfig().Server.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// streamMessage converts a center event to a frame.
func (s *Server) streamMessage(ev center.Event) StreamMessage {
	msg := StreamMessage{Type: ev.Type, Toast: ev.Toast}
	if ev.Toast == nil || ev.Type == center.EventRemoved {
		return msg
	}

	s.center.View(func(doc *surface.Document) {
		el := doc.ElementByID(center.ElementID(ev.Toast.ID))
		if el == nil {
			return
		}
		var err error
		if msg.HTML, err = render.ElementHTML(el); err != nil {
			s.logger.Error("render toast failed", "id", ev.Toast.ID, "error", err)
		}
		if ev.Type == center.EventAdded {
			if sf := doc.Surface(); sf != nil {
				if msg.Surface, err = render.ElementHTML(sf); err != nil {
					s.logger.Error("render surface failed", "error", err)
				}
			}
		}
	})
	return msg
}

// wsStream upgrades to a websocket and pushes every center event until the
// client disconnects. A client that cannot keep up is dropped.
func (s *Server) wsStream(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribe before the handshake completes so no event between the
	// upgrade and the first read is lost.
	msgs := make(chan StreamMessage, streamBuffer)
	unsubscribe := s.center.Subscribe(func(ev center.Event) {
		select {
		case msgs <- s.streamMessage(ev):
		default:
			s.logger.Warn("websocket client too slow, dropping", "remote", r.RemoteAddr)
			cancel()
		}
	})
	defer unsubscribe()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	s.logger.Debug("websocket client connected", "remote", r.RemoteAddr)

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.logger.Debug("websocket client disconnected", "remote", r.RemoteAddr, "error", err)
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-msgs:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debug("websocket write failed", "remote", r.RemoteAddr, "error", err)
				return
			}
		}
	}
}

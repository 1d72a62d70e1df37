// Package server exposes a generated terrain to out-of-process renderers: an
// HTTP bootstrap endpoint and a websocket that streams chunk buffers.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/terragen/internal/logger"
	"github.com/Faultbox/terragen/internal/terrain"
)

const (
	handshakeTimeout = 5 * time.Second
	writeTimeout     = 10 * time.Second
)

// Server streams the chunks of one terrain.
type Server struct {
	terrain *terrain.Terrain
	policy  terrain.ChunkVisibilityPolicy
	log     *zap.Logger

	upgrader websocket.Upgrader
	sessions atomic.Uint64
}

// NewServer serves t. A nil policy renders every chunk.
func NewServer(t *terrain.Terrain, policy terrain.ChunkVisibilityPolicy, log *zap.Logger) *Server {
	if policy == nil {
		policy = terrain.AlwaysRender
	}
	if log == nil {
		log = logger.Named("server")
	}
	return &Server{
		terrain: t,
		policy:  policy,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 256 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler routes /bootstrap and /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap", s.BootstrapHandler())
	mux.HandleFunc("/ws", s.WSHandler())
	return mux
}

// BootstrapHandler answers GET with the terrain configuration and chunk grid.
func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		resp := BootstrapResponse{
			ProtocolVersion: ProtocolVersion,
			Config:          s.terrain.Config(),
			NumChunksX:      s.terrain.NumChunksX(),
			NumChunksZ:      s.terrain.NumChunksZ(),
			Vertices:        s.terrain.VertexCount(),
			Triangles:       s.terrain.TriangleCount(),
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// WSHandler upgrades the connection, waits for SUBSCRIBE, streams one CHUNK
// message per chunk the policy accepts for the subscriber's viewer, sends DONE
// and closes normally.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		log := s.log.With(zap.Uint64("session", s.sessions.Add(1)), zap.String("remote", r.RemoteAddr))

		_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Debug("handshake read failed", zap.Error(err))
			return
		}
		var sub SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			closeWith(conn, websocket.ClosePolicyViolation, "bad subscribe")
			return
		}
		if sub.Type != TypeSubscribe || sub.ProtocolVersion != ProtocolVersion {
			closeWith(conn, websocket.ClosePolicyViolation, "expected SUBSCRIBE")
			return
		}
		_ = conn.SetReadDeadline(time.Time{})

		sent := 0
		for coord, c := range s.terrain.Visible(s.policy, sub.Viewer) {
			out := ChunkMsg{
				Type:      TypeChunk,
				CX:        coord.X,
				CZ:        coord.Z,
				Positions: c.PositionBuffer(),
				Indices:   c.IndexBuffer(),
			}
			if err := writeJSON(conn, out); err != nil {
				log.Warn("chunk stream aborted", zap.Stringer("chunk", coord), zap.Error(err))
				return
			}
			sent++
		}
		if err := writeJSON(conn, DoneMsg{Type: TypeDone, Chunks: sent}); err != nil {
			return
		}
		log.Info("chunk stream complete", zap.Int("chunks", sent))
		closeWith(conn, websocket.CloseNormalClosure, "bye")
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	}
	return nil
}

func closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}

package server

import "github.com/Faultbox/terragen/internal/terrain"

// ProtocolVersion is the chunk stream protocol version.
const ProtocolVersion = "1.0"

// Message types.
const (
	TypeSubscribe = "SUBSCRIBE"
	TypeChunk     = "CHUNK"
	TypeDone      = "DONE"
)

// BootstrapResponse describes the served terrain.
type BootstrapResponse struct {
	ProtocolVersion string         `json:"protocol_version"`
	Config          terrain.Config `json:"config"`
	NumChunksX      int            `json:"num_chunks_x"`
	NumChunksZ      int            `json:"num_chunks_z"`
	Vertices        int            `json:"vertices"`
	Triangles       int            `json:"triangles"`
}

// SubscribeMsg is the first message a client sends on the websocket.
type SubscribeMsg struct {
	Type            string              `json:"type"`
	ProtocolVersion string              `json:"protocol_version"`
	Viewer          terrain.ViewerState `json:"viewer"`
}

// ChunkMsg carries one chunk's buffers, ready for upload.
type ChunkMsg struct {
	Type      string    `json:"type"`
	CX        int       `json:"cx"`
	CZ        int       `json:"cz"`
	Positions []float32 `json:"positions"`
	Indices   []uint32  `json:"indices"`
}

// DoneMsg ends a stream.
type DoneMsg struct {
	Type   string `json:"type"`
	Chunks int    `json:"chunks"`
}

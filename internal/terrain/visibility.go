package terrain

import "github.com/Faultbox/terragen/pkg/math"

// ViewerState is what a visibility policy knows about the observer.
type ViewerState struct {
	Position math.Vec3 `json:"position"`
	Forward  math.Vec3 `json:"forward"`
}

// ChunkVisibilityPolicy decides per frame whether a chunk should be drawn.
// Activation and culling strategies are supplied by the host engine.
type ChunkVisibilityPolicy interface {
	ShouldRender(coord ChunkCoord, viewer ViewerState) bool
}

// PolicyFunc adapts a function to ChunkVisibilityPolicy.
type PolicyFunc func(coord ChunkCoord, viewer ViewerState) bool

// ShouldRender calls f.
func (f PolicyFunc) ShouldRender(coord ChunkCoord, viewer ViewerState) bool {
	return f(coord, viewer)
}

// AlwaysRender renders every chunk.
var AlwaysRender ChunkVisibilityPolicy = PolicyFunc(func(ChunkCoord, ViewerState) bool { return true })

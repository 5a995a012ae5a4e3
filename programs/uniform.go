package programs

import (
	"github.com/go-gl/mathgl/mgl32"
)

const DefaultIterations = 1000

// Uniforms are uploaded to the program before every draw.
// The uniform tag is the GLSL name.
type Uniforms struct {
	Resolution mgl32.Vec2 `uniform:"resolution"`
	Iterations int32      `uniform:"iterations"`
}

func (u *Uniforms) DefaultValues() {
	if u.Iterations <= 0 {
		u.Iterations = DefaultIterations
	}
}

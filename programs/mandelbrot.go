package programs

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
)

//go:embed shaders/mandelbrot.frag
var mandelbrotFragment string

func init() {
	NewProgram(Program{
		Name:           "mandelbrot",
		VertexShader:   defaultVertexShader,
		FragmentShader: mandelbrotFragment,
		GetPixel: func(uniforms Uniforms, fragCoord mgl32.Vec2) mgl32.Vec3 {
			res := uniforms.Resolution
			cr := fragCoord[0]/res[0]*4 - 2
			ci := (fragCoord[1]/res[1]*4 - 2) * (res[1] / res[0])

			var zr, zi float32
			iterations := int32(0)
			for zr*zr+zi*zi < 4 && iterations < uniforms.Iterations {
				zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
				iterations++
			}

			t := float32(iterations) / float32(uniforms.Iterations)
			return mgl32.Vec3{t, t, t}
		},
	})
}

// Package programs holds the shader programs used to load the GPU, along with
// CPU implementations of the same kernels.
package programs

import (
	_ "embed"
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrNoCPUImplementation = errors.New("program does not have a CPU implementation")

//go:embed default.vert
var defaultVertexShader string

// ContextVersion is the OpenGL core profile version to request. Every shader
// targets GLSL 330; debug output needs 4.3.
func ContextVersion(debug bool) (major, minor int) {
	if debug {
		return 4, 3
	}
	return 3, 3
}

// QuadVertices is a full-screen quad, drawn as a triangle strip.
var QuadVertices = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

// Lookup returns the program registered under name.
func Lookup(name string) (Program, error) {
	for _, p := range programs {
		if p.Name == name {
			return p, nil
		}
	}
	return Program{}, fmt.Errorf("no program named %q", name)
}

func NewProgram(p Program) error {
	if _, err := Lookup(p.Name); err == nil {
		return fmt.Errorf("program %q already registered", p.Name)
	}
	programs = append(programs, p)
	return nil
}

var programs []Program

// PixelFunc computes the colour the fragment shader writes at fragCoord,
// which is in window pixels with the origin at the bottom left.
type PixelFunc func(uniforms Uniforms, fragCoord mgl32.Vec2) mgl32.Vec3

type Program struct {
	Name           string
	VertexShader   string
	FragmentShader string
	GetPixel       PixelFunc
}

// GetImage returns the program's output for a width by height framebuffer.
func (p *Program) GetImage(uniforms Uniforms, width, height int) (Image, error) {
	if p.GetPixel == nil {
		return nil, ErrNoCPUImplementation
	}

	uniforms.Resolution = mgl32.Vec2{float32(width), float32(height)}
	return &programImage{
		uniforms:  uniforms,
		bounds:    image.Rect(0, 0, width, height),
		pixelFunc: p.GetPixel,
	}, nil
}

type Image interface {
	GetPixel(fragCoord mgl32.Vec2) mgl32.Vec3
	Bounds() image.Rectangle
}

type programImage struct {
	uniforms  Uniforms
	bounds    image.Rectangle
	pixelFunc PixelFunc
}

func (i *programImage) GetPixel(fragCoord mgl32.Vec2) mgl32.Vec3 {
	return i.pixelFunc(i.uniforms, fragCoord)
}

func (i *programImage) Bounds() image.Rectangle {
	return i.bounds
}

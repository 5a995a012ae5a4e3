package programs

import (
	"reflect"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mandelbrot(t *testing.T) Program {
	p, err := Lookup("mandelbrot")
	require.NoError(t, err)
	return p
}

func TestRegistry(t *testing.T) {
	p, err := Lookup("mandelbrot")
	require.NoError(t, err)
	assert.NotNil(t, p.GetPixel)

	_, err = Lookup("nope")
	assert.Error(t, err)

	assert.Error(t, NewProgram(Program{Name: "mandelbrot"}))
}

func TestShaderSources(t *testing.T) {
	p := mandelbrot(t)
	assert.Contains(t, p.VertexShader, "in vec2 vert;")
	assert.Contains(t, p.FragmentShader, "uniform vec2 resolution;")
	assert.Contains(t, p.FragmentShader, "uniform int iterations;")
	assert.Contains(t, p.FragmentShader, "out vec4 outputColor;")
}

func TestMandelbrotPixel(t *testing.T) {
	p := mandelbrot(t)
	u := Uniforms{Resolution: mgl32.Vec2{400, 400}}
	u.DefaultValues()
	require.EqualValues(t, DefaultIterations, u.Iterations)

	// the window centre maps to c = 0, which never escapes
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, p.GetPixel(u, mgl32.Vec2{200, 200}))

	// the bottom left corner maps to c = -2-2i, which escapes after one step
	got := p.GetPixel(u, mgl32.Vec2{0, 0})
	assert.InDelta(t, 1.0/DefaultIterations, got[0], 1e-6)
	assert.Equal(t, got[0], got[1])
	assert.Equal(t, got[0], got[2])
}

func TestMandelbrotAspect(t *testing.T) {
	p := mandelbrot(t)
	u := Uniforms{Resolution: mgl32.Vec2{800, 400}, Iterations: 50}

	// top centre: c.y = 2 * (400/800) = 1, c.x = 0, so c = i, which stays bounded
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, p.GetPixel(u, mgl32.Vec2{400, 400}))

	// without the aspect correction the same pixel would be c = 2i, which escapes
	square := Uniforms{Resolution: mgl32.Vec2{400, 400}, Iterations: 50}
	assert.Less(t, p.GetPixel(square, mgl32.Vec2{200, 400})[0], float32(1))
}

func TestGetImage(t *testing.T) {
	p := mandelbrot(t)
	img, err := p.GetImage(Uniforms{Iterations: 10}, 64, 32)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	noCPU := Program{Name: "gpu-only"}
	_, err = noCPU.GetImage(Uniforms{}, 1, 1)
	assert.ErrorIs(t, err, ErrNoCPUImplementation)
}

func TestContextVersion(t *testing.T) {
	major, minor := ContextVersion(false)
	assert.Equal(t, [2]int{3, 3}, [2]int{major, minor})

	major, minor = ContextVersion(true)
	assert.Equal(t, [2]int{4, 3}, [2]int{major, minor})

	// shaders must compile on the context requested without debug
	p := mandelbrot(t)
	for _, src := range []string{p.VertexShader, p.FragmentShader} {
		assert.True(t, strings.HasPrefix(src, "#version 330 core\n"), src)
	}
}

func TestUniformFields(t *testing.T) {
	p := mandelbrot(t)
	typ := reflect.TypeOf(Uniforms{})
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)

		// the only types the renderer uploads
		assert.Contains(t, []reflect.Type{
			reflect.TypeOf(mgl32.Vec2{}),
			reflect.TypeOf(int32(0)),
		}, f.Type, f.Name)

		name := f.Tag.Get("uniform")
		require.NotEmpty(t, name, f.Name)
		assert.Regexp(t, `uniform \w+ `+name+`;`, p.FragmentShader)
	}
}

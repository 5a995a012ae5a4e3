package main

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	gldebug "github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glstress/programs"
	"go.uber.org/zap"
)

type RenderWindow struct {
	*glfw.Window
	log *zap.SugaredLogger

	width  int
	height int

	vao              uint32
	vbo              uint32
	program          uint32
	vertexAttrib     uint32
	uniformLocations map[string]int32

	uniforms programs.Uniforms
}

func (w *RenderWindow) glDebugMessage(
	source,
	gltype,
	id,
	severity uint32,
	length int32,
	message string,
	user unsafe.Pointer,
) {
	severityStr := "unknown"
	switch severity {
	case gldebug.DEBUG_SEVERITY_HIGH:
		severityStr = "high"
	case gldebug.DEBUG_SEVERITY_LOW:
		severityStr = "low"
	case gldebug.DEBUG_SEVERITY_MEDIUM:
		severityStr = "medium"
	case gldebug.DEBUG_SEVERITY_NOTIFICATION:
		severityStr = "notification"
	}

	sourceStr := "unknownSource"
	switch source {
	case gldebug.DEBUG_SOURCE_API:
		sourceStr = "api"
	case gldebug.DEBUG_SOURCE_APPLICATION:
		sourceStr = "application"
	case gldebug.DEBUG_SOURCE_OTHER:
		sourceStr = "other"
	case gldebug.DEBUG_SOURCE_SHADER_COMPILER:
		sourceStr = "shaderCompiler"
	case gldebug.DEBUG_SOURCE_THIRD_PARTY:
		sourceStr = "thirdParty"
	case gldebug.DEBUG_SOURCE_WINDOW_SYSTEM:
		sourceStr = "windowSystem"
	}

	typeStr := "unknownType"
	switch gltype {
	case gldebug.DEBUG_TYPE_ERROR:
		typeStr = "error"
	case gldebug.DEBUG_TYPE_DEPRECATED_BEHAVIOR:
		typeStr = "deprecatedBehavior"
	case gldebug.DEBUG_TYPE_MARKER:
		typeStr = "marker"
	case gldebug.DEBUG_TYPE_OTHER:
		typeStr = "other"
	case gldebug.DEBUG_TYPE_PERFORMANCE:
		typeStr = "performance"
	case gldebug.DEBUG_TYPE_POP_GROUP:
		typeStr = "popGroup"
	case gldebug.DEBUG_TYPE_PORTABILITY:
		typeStr = "portability"
	case gldebug.DEBUG_TYPE_PUSH_GROUP:
		typeStr = "pushGroup"
	case gldebug.DEBUG_TYPE_UNDEFINED_BEHAVIOR:
		typeStr = "undefinedBehavior"
	}

	w.log.Debugw(message,
		"source", sourceStr,
		"severity", severityStr,
		"type", typeStr,
		"id", id,
	)
}

func (w *RenderWindow) createQuad() {
	verticies := programs.QuadVertices

	gl.GenVertexArrays(1, &w.vao)
	gl.BindVertexArray(w.vao)

	gl.GenBuffers(1, &w.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verticies)*4, gl.Ptr(verticies), gl.STATIC_DRAW)
}

func (w *RenderWindow) resize(window *glfw.Window, width, height int) {
	w.width, w.height = width, height
	w.uniforms.Resolution = mgl32.Vec2{float32(width), float32(height)}
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Draw renders one frame. The fractal is only drawn while stressing;
// otherwise the frame is just cleared.
func (w *RenderWindow) Draw(stressing bool) {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	if stressing && w.width > 0 && w.height > 0 {
		gl.UseProgram(w.program)
		w.loadUniforms()
		gl.BindVertexArray(w.vao)
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, int32(len(programs.QuadVertices)/2))
	}

	w.SwapBuffers()
}

func (w *RenderWindow) loadUniforms() {
	v := reflect.ValueOf(&w.uniforms).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)

		ptr := f.Addr().UnsafePointer()
		loc := w.uniformLocations[v.Type().Field(i).Tag.Get("uniform")]

		switch f.Type() {
		case reflect.TypeOf(mgl32.Vec2{}):
			gl.Uniform2fv(loc, 1, (*float32)(ptr))
		case reflect.TypeOf(int32(0)):
			gl.Uniform1iv(loc, 1, (*int32)(ptr))
		default:
			w.log.Warnw("unsupported uniform type", "type", f.Type())
		}
	}
}

func (w *RenderWindow) loadProgram(program programs.Program) error {
	vertexShader, err := compileShader(program.VertexShader+"\x00", gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(program.FragmentShader+"\x00", gl.FRAGMENT_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(fragmentShader)

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vertexShader)
	gl.AttachShader(handle, fragmentShader)
	gl.BindFragDataLocation(handle, 0, gl.Str("outputColor\x00"))
	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetProgramInfoLog(handle, l, nil, gl.Str(log))
		gl.DeleteProgram(handle)
		return fmt.Errorf("failed to link program %v: %v", program.Name, strings.TrimRight(log, "\x00"))
	}

	if w.program != 0 {
		gl.DeleteProgram(w.program)
	}
	w.program = handle
	gl.UseProgram(w.program)

	w.uniformLocations = make(map[string]int32)
	t := reflect.TypeOf(w.uniforms)
	w.uniforms.DefaultValues()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("uniform")
		w.uniformLocations[name] = gl.GetUniformLocation(w.program, gl.Str(name+"\x00"))
	}

	gl.BindVertexArray(w.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)
	w.vertexAttrib = uint32(gl.GetAttribLocation(w.program, gl.Str("vert\x00")))
	gl.EnableVertexAttribArray(w.vertexAttrib)
	gl.VertexAttribPointerWithOffset(w.vertexAttrib, 2, gl.FLOAT, false, 2*4, 0)

	w.log.Infow("loaded program", "name", program.Name, "iterations", w.uniforms.Iterations)
	return nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	defer runtime.KeepAlive(source)
	cstring, free := gl.Strs(source)
	defer free()

	shader := gl.CreateShader(shaderType)
	gl.ShaderSource(shader, 1, cstring, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetShaderInfoLog(shader, l, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader\n\"\n%v\n\"\nfailed to compile: %v", strings.TrimRight(source, "\x00"), strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}

package main

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	gldebug "github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stewi1014/glstress/programs"
	"go.uber.org/zap"
)

func NewRenderWindow(log *zap.SugaredLogger, debug bool) (*RenderWindow, error) {
	major, minor := programs.ContextVersion(debug)
	glfw.WindowHint(glfw.ContextVersionMajor, major)
	glfw.WindowHint(glfw.ContextVersionMinor, minor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}

	width, height := getWindowSize()
	window, err := glfw.CreateWindow(
		width,
		height,
		windowTitle,
		nil,
		nil,
	)

	if err != nil {
		return nil, fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}

	w := &RenderWindow{
		Window: window,
		log:    log,
	}

	w.MakeContextCurrent()
	err = gl.Init()
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("gl.Init failed: %w", err)
	}

	log.Infow("created window",
		"width", width,
		"height", height,
		"glVersion", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
	)

	if debug {
		if err := gldebug.Init(); err != nil {
			log.Warnw("OpenGL debug output unavailable", "err", err)
		} else {
			gldebug.Enable(gldebug.DEBUG_OUTPUT)
			gldebug.DebugMessageCallback(w.glDebugMessage, nil)
		}
	}

	w.createQuad()
	w.SetFramebufferSizeCallback(w.resize)
	fbWidth, fbHeight := window.GetFramebufferSize()
	w.resize(window, fbWidth, fbHeight)

	return w, nil
}

// getWindowSize picks 60% of the primary monitor.
func getWindowSize() (width, height int) {
	width = 1200
	height = 800

	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		return
	}

	mode := monitor.GetVideoMode()
	if mode == nil {
		return
	}

	width = int(float32(mode.Width) * .6)
	height = int(float32(mode.Height) * .6)
	return
}

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stewi1014/glstress/config"
	"github.com/stewi1014/glstress/programs"
	"github.com/stewi1014/glstress/stress"
	"go.uber.org/zap"
)

const windowTitle = "GPU Stresser"

func NewApplication(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*Application, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw.Init failed: %w", err)
	}

	stats := &stress.Stats{}
	a := &Application{
		ctx:        ctx,
		cfg:        cfg,
		log:        log,
		stats:      stats,
		controller: stress.NewController(log, stress.Stressers(cfg.StressOptions(), log, stats)),
	}

	var err error
	a.window, err = NewRenderWindow(log, cfg.Debug)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}

	program, err := programs.Lookup("mandelbrot")
	if err != nil {
		a.Destroy()
		return nil, err
	}

	a.window.uniforms.Iterations = cfg.Iterations
	if err := a.window.loadProgram(program); err != nil {
		a.Destroy()
		return nil, err
	}

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	a.window.SetKeyCallback(a.key)
	context.AfterFunc(ctx, a.wake)

	return a, nil
}

type Application struct {
	ctx  context.Context
	cfg  config.Config
	log  *zap.SugaredLogger
	quit context.CancelCauseFunc

	window     *RenderWindow
	controller *stress.Controller
	stats      *stress.Stats

	deadline    time.Time
	titleFrames uint64
	titleAt     time.Time

	glfwMu         sync.Mutex
	glfwTerminated bool
}

// wake unblocks glfw.WaitEvents from any goroutine.
func (a *Application) wake() {
	a.glfwMu.Lock()
	defer a.glfwMu.Unlock()
	if !a.glfwTerminated {
		glfw.PostEmptyEvent()
	}
}

// Stressing is safe to call from any goroutine.
func (a *Application) Stressing() bool {
	return a.controller.State() == stress.Stressing
}

// Run processes window events until the window is closed or the context is
// done. It must be called from the main thread.
func (a *Application) Run(quit context.CancelCauseFunc) {
	a.quit = quit
	defer quit(nil)

	a.log.Infow("waiting for a key press", "stopKey", "q")
	for !a.window.ShouldClose() && a.ctx.Err() == nil {
		stressing := a.Stressing()
		if stressing {
			glfw.PollEvents()
		} else {
			glfw.WaitEvents()
		}

		if stressing && !a.deadline.IsZero() && time.Now().After(a.deadline) {
			a.log.Infow("duration elapsed", "duration", a.cfg.Duration)
			a.stop()
		}

		a.window.Draw(a.Stressing())
		a.frame()
	}
}

func (a *Application) key(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press || key == glfw.KeyUnknown {
		return
	}

	switch a.controller.State() {
	case stress.Idle:
		a.start()
	case stress.Stressing:
		if isStopKey(key, scancode) {
			a.stop()
		}
	}
}

// isStopKey matches 'q' in the active keyboard layout.
func isStopKey(key glfw.Key, scancode int) bool {
	if name := glfw.GetKeyName(key, scancode); name != "" {
		return name == "q" || name == "Q"
	}
	return key == glfw.KeyQ
}

func (a *Application) start() {
	if err := a.controller.Start(); err != nil {
		a.quit(err)
		return
	}

	if a.cfg.Duration > 0 {
		a.deadline = time.Now().Add(a.cfg.Duration)
	}
	a.titleFrames, a.titleAt = a.stats.Frames.Load(), time.Now()
}

func (a *Application) stop() {
	a.deadline = time.Time{}
	err := a.controller.Stop()
	a.window.SetTitle(windowTitle)

	if err != nil {
		a.quit(err)
		return
	}
	if !a.cfg.KeepOpen {
		a.window.SetShouldClose(true)
	}
}

// frame counts a drawn frame and refreshes the frame rate in the title once a second.
func (a *Application) frame() {
	if !a.Stressing() {
		return
	}

	frames := a.stats.Frames.Add(1)
	if elapsed := time.Since(a.titleAt); elapsed >= time.Second {
		fps := float64(frames-a.titleFrames) / elapsed.Seconds()
		a.window.SetTitle(fmt.Sprintf("%v - %.0f fps", windowTitle, fps))
		a.titleFrames, a.titleAt = frames, time.Now()
	}
}

// Destroy releases the window and GLFW. Stressers that are still running are
// left to die with the process.
func (a *Application) Destroy() {
	a.glfwMu.Lock()
	defer a.glfwMu.Unlock()

	if a.window != nil {
		a.window.Destroy()
	}
	glfw.Terminate()
	a.glfwTerminated = true
}

package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/spf13/cobra"
	"github.com/stewi1014/glstress/programs"
	"go.uber.org/zap"
)

type SaveOptions struct {
	Name          string
	Width, Height int
	Iterations    int32
	Antialias     float32
}

func newRenderCommand() *cobra.Command {
	opts := SaveOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the stress fractal on the CPU to a PNG",
		Long: "render computes the same fractal the GPU stress draws, on the CPU, and saves it\n" +
			"as a PNG to compare against what the window shows.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(false)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if err := save(ctx, opts, log, cmd.ErrOrStderr()); err != nil {
				log.Errorw("render failed", "err", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "out", "o", "glstress.png", "output file")
	cmd.Flags().IntVar(&opts.Width, "width", 1920, "image width")
	cmd.Flags().IntVar(&opts.Height, "height", 1080, "image height")
	cmd.Flags().Int32Var(&opts.Iterations, "iterations", programs.DefaultIterations, "fractal iterations per pixel")
	cmd.Flags().Float32Var(&opts.Antialias, "antialias", 0, "9x antialiasing sample distance in pixels, 0 to disable")

	return cmd
}

func save(
	ctx context.Context,
	opts SaveOptions,
	log *zap.SugaredLogger,
	progressOut io.Writer,
) (err error) {
	if opts.Width < 1 || opts.Height < 1 {
		return fmt.Errorf("invalid image size %vx%v", opts.Width, opts.Height)
	}
	if opts.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %v", opts.Iterations)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	program, err := programs.Lookup("mandelbrot")
	if err != nil {
		return err
	}

	img, err := program.GetImage(programs.Uniforms{Iterations: opts.Iterations}, opts.Width, opts.Height)
	if err != nil {
		return err
	}

	if opts.Antialias > 0 {
		img = programs.AntiAlias9x(img, opts.Antialias)
	}

	imageImage := programs.ToImage(img)
	rendering := programs.WrapWithProgress(&imageImage)
	buff := programs.BufferImage(imageImage)

	start := time.Now()
	done := showProgress(ctx, progressOut, "Rendering ", rendering)
	err = buff.Buffer(ctx)
	<-done
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}
	log.Infow("rendered", "width", opts.Width, "height", opts.Height, "took", time.Since(start))

	file, err := os.Create(opts.Name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(file.Name())
		}
	}()

	var encoded image.Image = buff
	encoding := programs.WrapWithProgress(&encoded)

	encodeCtx, encodeDone := context.WithCancel(ctx)
	done = showProgress(encodeCtx, progressOut, "Encoding  ", encoding)
	err = func() (err error) {
		defer CatchPanicToContext(cancel)
		return png.Encode(file, encoded)
	}()
	encodeDone()
	<-done
	if err == nil {
		err = context.Cause(ctx)
	}
	if err != nil {
		return fmt.Errorf("encoding %v failed: %w", file.Name(), err)
	}

	log.Infow("saved", "file", file.Name())
	return nil
}

// showProgress draws a progress bar fed by progress until it reaches 1 or ctx
// is done. The returned channel is closed once the bar is finished.
func showProgress(ctx context.Context, out io.Writer, prefix string, progress func() float64) <-chan struct{} {
	const total = 1000

	bar := pb.New(total)
	bar.Output = out
	bar.ShowCounters = false
	bar.Prefix(prefix)
	bar.Start()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer bar.Finish()

		ticker := time.NewTicker(time.Second / 10)
		defer ticker.Stop()

		for {
			p := progress()
			bar.Set(int(p * total))
			if p >= 1 {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return done
}

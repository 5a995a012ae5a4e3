package programs

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// WrapWithProgress replaces *img with a wrapper counting sampled pixels, and
// returns a function reporting the sampled fraction.
func WrapWithProgress(img *image.Image) func() float64 {
	p := &ProgressImage{
		Image: *img,
	}

	*img = p
	return p.Progress
}

type ProgressImage struct {
	image.Image
	count atomic.Int64
}

func (i *ProgressImage) At(x, y int) color.Color {
	i.count.Add(1)
	return i.Image.At(x, y)
}

func (i *ProgressImage) Progress() float64 {
	end := i.Bounds().Dx() * i.Bounds().Dy()
	if end == 0 {
		return 1
	}
	return float64(i.count.Load()) / float64(end)
}

func (i *ProgressImage) Opaque() bool {
	return true
}

// AntiAlias9x samples 9 positions for each sampled position,
// returning the average colour.
//
// offset is the distance in pixels between the sampled positions.
func AntiAlias9x(img Image, offset float32) Image {
	return &antialias9xImage{
		Image:  img,
		offset: offset,
	}
}

type antialias9xImage struct {
	Image
	offset float32
}

func (i *antialias9xImage) GetPixel(pos mgl32.Vec2) mgl32.Vec3 {
	avg := mgl32.Vec3{}
	for _, dx := range [3]float32{-i.offset, 0, i.offset} {
		for _, dy := range [3]float32{-i.offset, 0, i.offset} {
			avg = avg.Add(i.Image.GetPixel(mgl32.Vec2{pos[0] + dx, pos[1] + dy}))
		}
	}
	return avg.Mul(1 / float32(9))
}

func BufferImage(img image.Image) *BufferedImage {
	return &BufferedImage{
		Image:  img,
		height: img.Bounds().Dy(),
	}
}

// BufferedImage renders an image once, in parallel, and serves At from memory.
type BufferedImage struct {
	image.Image
	height int
	buff   []color.Color
}

func (b *BufferedImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Image.Bounds().Dx(), b.Image.Bounds().Dy())
}

func (b *BufferedImage) At(x, y int) color.Color {
	return b.buff[x*b.height+y]
}

// Buffer renders the wrapped image in column chunks, one goroutine each.
func (b *BufferedImage) Buffer(ctx context.Context) error {
	b.buff = make([]color.Color, b.Image.Bounds().Dx()*b.Image.Bounds().Dy())

	min, max := b.Image.Bounds().Min, b.Image.Bounds().Max
	chunkSize := 50
	var wg sync.WaitGroup

	for chunkMin := min.X; chunkMin < max.X; chunkMin += chunkSize {
		chunkMax := chunkMin + chunkSize
		if chunkMax > max.X {
			chunkMax = max.X
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			i := (chunkMin - min.X) * b.height
			for x := chunkMin; x < chunkMax; x++ {
				if ctx.Err() != nil {
					return
				}

				for y := min.Y; y < max.Y; y++ {
					b.buff[i] = b.Image.At(x, y)
					i++
				}
			}
		}()
	}

	wg.Wait()

	return ctx.Err()
}

func (b *BufferedImage) Opaque() bool {
	return true
}

// ToImage samples img at pixel centres. Image rows run top to bottom while
// fragment coordinates run bottom to top, so rows are flipped.
func ToImage(img Image) image.Image {
	return &imageImage{
		Image: img,
	}
}

type imageImage struct {
	Image
}

func (i *imageImage) At(x, y int) color.Color {
	b := i.Bounds()
	c := i.GetPixel(mgl32.Vec2{
		float32(x-b.Min.X) + .5,
		float32(b.Max.Y-1-y) + .5,
	})

	return color.NRGBA{
		R: channel(c[0]),
		G: channel(c[1]),
		B: channel(c[2]),
		A: 0xff,
	}
}

func (i *imageImage) ColorModel() color.Model {
	return color.NRGBAModel
}

func (i *imageImage) Opaque() bool {
	return true
}

func channel(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1) * 255)
}

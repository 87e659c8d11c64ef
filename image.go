package trellis

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/hajimehoshi/ebiten/v2"
)

// Image is a decoded bitmap. The engine texture is created on first draw.
type Image struct {
	src  image.Image
	eimg *ebiten.Image
	// owned images are disposed with the node that decoded them.
	owned bool
}

// NewImage wraps a decoded image.
func NewImage(img image.Image) *Image {
	return &Image{src: img}
}

// NewImageFromEbiten wraps an existing engine image. The caller keeps
// ownership of it.
func NewImageFromEbiten(img *ebiten.Image) *Image {
	return &Image{eimg: img}
}

// DecodeImage decodes PNG, JPEG, GIF, BMP or WebP data.
func DecodeImage(r io.Reader) (*Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if globalDebug {
		b := img.Bounds()
		logger.Debug("trellis: decoded image", "format", format, "width", b.Dx(), "height", b.Dy())
	}
	return &Image{src: img}, nil
}

// LoadImage decodes the image file at path.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	defer f.Close()
	return DecodeImage(f)
}

// Bounds returns the image size as a Rect at the origin.
func (i *Image) Bounds() Rect {
	var b image.Rectangle
	if i.eimg != nil {
		b = i.eimg.Bounds()
	} else {
		b = i.src.Bounds()
	}
	return Rect{0, 0, float64(b.Dx()), float64(b.Dy())}
}

// Width returns the image width in pixels.
func (i *Image) Width() int { return int(i.Bounds().Width) }

// Height returns the image height in pixels.
func (i *Image) Height() int { return int(i.Bounds().Height) }

func (i *Image) ebitenImage() *ebiten.Image {
	if i.eimg == nil {
		i.eimg = ebiten.NewImageFromImage(i.src)
	}
	return i.eimg
}

// Dispose releases the engine texture of an image decoded by a node.
// Images supplied by the caller are left alone.
func (i *Image) Dispose() {
	if !i.owned {
		return
	}
	if i.eimg != nil {
		i.eimg.Deallocate()
		i.eimg = nil
	}
}

// buildImage reads the "image" prop: an *Image (used as is), a file path or
// encoded bytes (decoded and owned by the node).
func buildImage(n *Node) (any, error) {
	switch v := n.resolved["image"].(type) {
	case *Image:
		return v, nil
	case string:
		img, err := LoadImage(v)
		if err != nil {
			return nil, err
		}
		img.owned = true
		return img, nil
	case []byte:
		img, err := DecodeImage(bytes.NewReader(v))
		if err != nil {
			return nil, err
		}
		img.owned = true
		return img, nil
	case nil:
		return nil, fmt.Errorf("image: missing image")
	default:
		return nil, fmt.Errorf("image: unsupported value %T", v)
	}
}

// ImageFit controls how an image is placed into its destination rect.
type ImageFit uint8

const (
	FitFill      ImageFit = iota // stretch to fill
	FitContain                   // scale to fit inside, keep aspect
	FitCover                     // scale to cover, keep aspect, crop
	FitNone                      // natural size, centered, cropped
	FitScaleDown                 // like contain, but never upscale
)

var fitNames = map[string]ImageFit{
	"fill":      FitFill,
	"contain":   FitContain,
	"cover":     FitCover,
	"none":      FitNone,
	"scaleDown": FitScaleDown,
}

// fitRects returns the source and destination rects for drawing an image of
// size src into dst with the given fit.
func fitRects(fit ImageFit, src, dst Rect) (Rect, Rect) {
	if src.Empty() || dst.Empty() {
		return src, dst
	}
	switch fit {
	case FitContain, FitScaleDown:
		s := min(dst.Width/src.Width, dst.Height/src.Height)
		if fit == FitScaleDown {
			s = min(s, 1)
		}
		return src, centered(dst, src.Width*s, src.Height*s)
	case FitCover:
		s := max(dst.Width/src.Width, dst.Height/src.Height)
		return centered(src, dst.Width/s, dst.Height/s), dst
	case FitNone:
		w, h := min(src.Width, dst.Width), min(src.Height, dst.Height)
		return centered(src, w, h), centered(dst, w, h)
	}
	return src, dst
}

// centered returns a w x h rect centered in r.
func centered(r Rect, w, h float64) Rect {
	return Rect{r.X + (r.Width-w)/2, r.Y + (r.Height-h)/2, w, h}
}

// Package services provides technical adapters used by the business flows
package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/amirphl/Kyu-Ar/utils"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/colornames"
	xdraw "golang.org/x/image/draw"
)

// Gradient directions
const (
	GradientHorizontal = "horizontal"
	GradientVertical   = "vertical"
	GradientDiagonal   = "diagonal"
)

var (
	// ErrContentTooLarge is returned when the content does not fit any QR version
	ErrContentTooLarge = errors.New("content too large for a QR code")
	// ErrInvalidColor is returned for a colour that is neither hex nor a CSS colour name
	ErrInvalidColor = errors.New("invalid color")
	// ErrEmptyContent is returned when there is nothing to encode
	ErrEmptyContent = errors.New("empty content")
)

// QRRenderer turns a string into an encoded QR image
type QRRenderer interface {
	PNG(content string, opts RenderOptions) ([]byte, error)
	SVG(content string, opts RenderOptions) ([]byte, error)
}

// Gradient colours the dark modules from Start to End along Direction
type Gradient struct {
	Start     color.RGBA
	End       color.RGBA
	Direction string
}

// RenderOptions controls the output geometry and colours.
// Scale is the pixel size of one module and Border the quiet zone in modules.
type RenderOptions struct {
	Scale    int
	Border   int
	Dark     color.RGBA
	Light    color.RGBA
	Gradient *Gradient
}

// DefaultRenderOptions returns black on white at scale 8 with a 2 module border
func DefaultRenderOptions() RenderOptions {
	dark, _ := ParseColor(utils.DefaultDarkColor)
	light, _ := ParseColor(utils.DefaultLightColor)
	return RenderOptions{
		Scale:  utils.DefaultImageScale,
		Border: utils.DefaultImageBorder,
		Dark:   dark,
		Light:  light,
	}
}

type qrRendererImpl struct {
	level qrcode.RecoveryLevel
}

// NewQRRenderer creates a renderer using medium error correction
func NewQRRenderer() QRRenderer {
	return &qrRendererImpl{level: qrcode.Medium}
}

func (r *qrRendererImpl) matrix(content string) ([][]bool, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	q, err := qrcode.New(content, r.level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentTooLarge, err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

// PNG draws one pixel per module and scales the result up with nearest
// neighbour sampling so module edges stay sharp.
func (r *qrRendererImpl) PNG(content string, opts RenderOptions) ([]byte, error) {
	bitmap, err := r.matrix(content)
	if err != nil {
		return nil, err
	}
	n := len(bitmap)
	side := n + 2*opts.Border

	modules := image.NewRGBA(image.Rect(0, 0, side, side))
	imagedraw.Draw(modules, modules.Bounds(), &image.Uniform{C: opts.Light}, image.Point{}, imagedraw.Src)
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			modules.SetRGBA(x+opts.Border, y+opts.Border, moduleColor(opts, x, y, n))
		}
	}

	scale := max(opts.Scale, 1)
	dst := image.NewRGBA(image.Rect(0, 0, side*scale, side*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), modules, modules.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// SVG emits the dark modules as a single path so a gradient spans the whole symbol
func (r *qrRendererImpl) SVG(content string, opts RenderOptions) ([]byte, error) {
	bitmap, err := r.matrix(content)
	if err != nil {
		return nil, err
	}
	n := len(bitmap)
	scale := max(opts.Scale, 1)
	side := (n + 2*opts.Border) * scale

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(side, side, `shape-rendering="crispEdges"`)

	fill := "fill:" + HexColor(opts.Dark)
	if g := opts.Gradient; g != nil {
		x1, y1, x2, y2 := gradientVector(g.Direction)
		canvas.Def()
		canvas.LinearGradient("qr-fill", x1, y1, x2, y2, []svg.Offcolor{
			{Offset: 0, Color: HexColor(g.Start), Opacity: 1.0},
			{Offset: 100, Color: HexColor(g.End), Opacity: 1.0},
		})
		canvas.DefEnd()
		fill = "fill:url(#qr-fill)"
	}

	canvas.Rect(0, 0, side, side, "fill:"+HexColor(opts.Light))
	canvas.Path(modulePath(bitmap, opts.Border, scale), fill)
	canvas.End()

	return buf.Bytes(), nil
}

// modulePath joins horizontal runs of dark modules into one path description
func modulePath(bitmap [][]bool, border, scale int) string {
	var b strings.Builder
	for y, row := range bitmap {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			fmt.Fprintf(&b, "M%d %dh%dv%dh-%dz",
				(start+border)*scale, (y+border)*scale, (x-start)*scale, scale, (x-start)*scale)
		}
	}
	return b.String()
}

func gradientVector(direction string) (x1, y1, x2, y2 uint8) {
	switch direction {
	case GradientVertical:
		return 0, 0, 0, 100
	case GradientDiagonal:
		return 0, 0, 100, 100
	default:
		return 0, 0, 100, 0
	}
}

// moduleColor returns the colour of the dark module at (x, y) of an n×n symbol
func moduleColor(opts RenderOptions, x, y, n int) color.RGBA {
	g := opts.Gradient
	if g == nil || n == 0 {
		return opts.Dark
	}
	var t float64
	switch g.Direction {
	case GradientVertical:
		t = (float64(y) + 0.5) / float64(n)
	case GradientDiagonal:
		t = (float64(x+y) + 1) / float64(2*n)
	default:
		t = (float64(x) + 0.5) / float64(n)
	}
	return lerpColor(g.Start, g.End, t)
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	mix := func(p, q uint8) uint8 {
		return uint8(float64(p) + (float64(q)-float64(p))*t + 0.5)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// ParseColor accepts #rgb, #rrggbb or a CSS colour name such as "navy"
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// HexColor formats c as #rrggbb
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

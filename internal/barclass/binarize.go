// Package barclass decides whether a matched bar is fully filled (an
// actual, reported figure) or partially filled (a forecast) by running an
// ensemble of binarization heuristics over the bar region.
package barclass

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/seung-gu/factset-data-collector/internal/entity"
)

// grayCrop extracts the given region of src as a grayscale image, clamped
// to the source bounds. Degenerate regions produce an empty image.
func grayCrop(src image.Image, region entity.Box) *image.Gray {
	b := src.Bounds()
	x0 := clampInt(int(math.Floor(region.X0)), b.Min.X, b.Max.X)
	y0 := clampInt(int(math.Floor(region.Y0)), b.Min.Y, b.Max.Y)
	x1 := clampInt(int(math.Ceil(region.X1)), b.Min.X, b.Max.X)
	y1 := clampInt(int(math.Ceil(region.Y1)), b.Min.Y, b.Max.Y)
	if x1 <= x0 || y1 <= y0 {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}
	dst := image.NewGray(image.Rect(0, 0, x1-x0, y1-y0))
	xdraw.Copy(dst, image.Point{}, src, image.Rect(x0, y0, x1, y1), xdraw.Src, nil)
	return dst
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// otsuThreshold picks the global threshold maximizing between-class
// variance of the gray histogram.
func otsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	total := 0
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[g.GrayAt(x, y).Y]++
			total++
		}
	}
	if total == 0 {
		return 0
	}
	sum := 0.0
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}
	var (
		sumB, wB  float64
		maxVar    float64
		threshold uint8
		found     bool
	)
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			threshold = uint8(i)
			found = true
		}
	}
	if !found {
		// Uniform crop: put the threshold at the single gray value so the
		// plain binarization maps everything to black.
		for i, n := range hist {
			if n > 0 {
				return uint8(i)
			}
		}
	}
	return threshold
}

// binary is a packed 1-bit image: true means white.
type binary struct {
	w, h int
	pix  []bool
}

func newBinary(w, h int) *binary {
	return &binary{w: w, h: h, pix: make([]bool, w*h)}
}

func (b *binary) at(x, y int) bool     { return b.pix[y*b.w+x] }
func (b *binary) set(x, y int, v bool) { b.pix[y*b.w+x] = v }

// whiteRatio is the fraction of white pixels; 0 for an empty image.
func (b *binary) whiteRatio() float64 {
	if len(b.pix) == 0 {
		return 0
	}
	n := 0
	for _, v := range b.pix {
		if v {
			n++
		}
	}
	return float64(n) / float64(len(b.pix))
}

// thresholdGray binarizes against a global threshold. With inverted
// polarity, dark source pixels become white.
func thresholdGray(g *image.Gray, threshold uint8, inverted bool) *binary {
	b := g.Bounds()
	out := newBinary(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			white := g.GrayAt(b.Min.X+x, b.Min.Y+y).Y > threshold
			if inverted {
				white = !white
			}
			out.set(x, y, white)
		}
	}
	return out
}

const (
	adaptiveBlock = 11  // neighborhood size for local thresholding
	adaptiveC     = 2.0 // offset subtracted from the local mean
	gaussianSigma = 2.0
)

// adaptiveThreshold binarizes against a Gaussian-weighted local mean:
// a pixel is white when it exceeds its neighborhood mean minus a small
// constant. Borders are handled by clamping.
func adaptiveThreshold(g *image.Gray) *binary {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := newBinary(w, h)
	if w == 0 || h == 0 {
		return out
	}

	kernel := gaussianKernel(adaptiveBlock, gaussianSigma)
	r := adaptiveBlock / 2

	// Separable pass: horizontal then vertical.
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k := -r; k <= r; k++ {
				xx := clampInt(x+k, 0, w-1)
				acc += kernel[k+r] * float64(g.GrayAt(b.Min.X+xx, b.Min.Y+y).Y)
			}
			tmp[y*w+x] = acc
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var mean float64
			for k := -r; k <= r; k++ {
				yy := clampInt(y+k, 0, h-1)
				mean += kernel[k+r] * tmp[yy*w+x]
			}
			out.set(x, y, float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y) > mean-adaptiveC)
		}
	}
	return out
}

func gaussianKernel(size int, sigma float64) []float64 {
	k := make([]float64, size)
	r := size / 2
	sum := 0.0
	for i := range k {
		d := float64(i - r)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// close3x3 applies a morphological closing (dilate then erode) with a 3x3
// rectangular kernel, filling small gaps inside sparsely-filled bars.
func close3x3(in *binary) *binary {
	return erode3x3(dilate3x3(in))
}

func dilate3x3(in *binary) *binary {
	out := newBinary(in.w, in.h)
	for y := 0; y < in.h; y++ {
		for x := 0; x < in.w; x++ {
			v := false
			for dy := -1; dy <= 1 && !v; dy++ {
				for dx := -1; dx <= 1 && !v; dx++ {
					xx, yy := x+dx, y+dy
					if xx >= 0 && xx < in.w && yy >= 0 && yy < in.h && in.at(xx, yy) {
						v = true
					}
				}
			}
			out.set(x, y, v)
		}
	}
	return out
}

// erode treats out-of-bounds neighbors as white so the crop border does
// not shrink, mirroring dilate's treatment of them as black.
func erode3x3(in *binary) *binary {
	out := newBinary(in.w, in.h)
	for y := 0; y < in.h; y++ {
		for x := 0; x < in.w; x++ {
			v := true
			for dy := -1; dy <= 1 && v; dy++ {
				for dx := -1; dx <= 1 && v; dx++ {
					xx, yy := x+dx, y+dy
					if xx < 0 || xx >= in.w || yy < 0 || yy >= in.h {
						continue
					}
					if !in.at(xx, yy) {
						v = false
					}
				}
			}
			out.set(x, y, v)
		}
	}
	return out
}

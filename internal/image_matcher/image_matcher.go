// Package image_matcher finds the paint color of a car in a swatch image.
package image_matcher

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/nfnt/resize"
	"github.com/oliamb/cutter"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Algorithm selects how the dominant color is chosen.
type Algorithm string

const (
	// Mode takes the most frequent color of the center of the image after
	// discarding background pixels.
	Mode Algorithm = "mode"

	// KMeans clusters the whole image with prominentcolor and takes the
	// largest cluster.
	KMeans Algorithm = "kmeans"
)

// FallbackColor is reported by callers when an image can't be evaluated.
const FallbackColor = "#808080"

// SampleSize is the edge length images are reduced to before sampling.
const SampleSize = 50

// Algorithms lists the valid algorithm names.
func Algorithms() []Algorithm {
	return []Algorithm{Mode, KMeans}
}

// ParseAlgorithm validates an algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, alg := range Algorithms() {
		if string(alg) == strings.ToLower(name) {
			return alg, nil
		}
	}
	return "", fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", name, Algorithms())
}

// Decode reads an image in any registered format (jpeg, png, gif, webp).
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to decode image: %w", err)
	}
	return img, nil
}

// GetDominantColorOf decodes data and returns its dominant color as #rrggbb.
func GetDominantColorOf(data []byte, alg Algorithm) (string, error) {
	img, err := Decode(data)
	if err != nil {
		return "", err
	}

	return DominantColor(img, alg)
}

// DominantColor returns the dominant color of img as #rrggbb.
func DominantColor(img image.Image, alg Algorithm) (string, error) {
	switch alg {
	case Mode, "":
		return modeColor(img)
	case KMeans:
		return kmeansColor(img)
	default:
		return "", fmt.Errorf("unknown algorithm: %s", alg)
	}
}

// RGBToHex formats a color as #rrggbb.
func RGBToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// HexToRGB parses #rrggbb (the leading # is optional).
func HexToRGB(hex string) (r, g, b uint8, err error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color: %q", hex)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color: %q", hex)
	}

	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// IsBackgroundColor reports whether a pixel is most likely backdrop: close to
// white or a very light gray.
func IsBackgroundColor(r, g, b uint8) bool {
	if r > 240 && g > 240 && b > 240 {
		return true
	}

	return absDiff(r, g) < 10 && absDiff(g, b) < 10 && r > 230
}

//--------------------------------------------------------------------------------
// private

type rgb struct {
	r, g, b uint8
}

func modeColor(img image.Image) (string, error) {
	small := resize.Resize(SampleSize, SampleSize, toOpaque(img), resize.Lanczos3)

	// the car body is expected to fill the middle 40% of the picture
	bounds := small.Bounds()
	left := int(float64(bounds.Dx()) * 0.3)
	top := int(float64(bounds.Dy()) * 0.3)
	right := int(float64(bounds.Dx()) * 0.7)
	bottom := int(float64(bounds.Dy()) * 0.7)

	center, err := cutter.Crop(small, cutter.Config{
		Width:  right - left,
		Height: bottom - top,
		Anchor: image.Point{X: left, Y: top},
		Mode:   cutter.TopLeft,
	})
	if err != nil {
		return "", fmt.Errorf("unable to crop image: %w", err)
	}

	pixels := pixelsOf(center)
	if len(pixels) == 0 {
		return "", errors.New("no pixels to sample")
	}

	return mostCommon(filterBackground(pixels)).hex(), nil
}

func kmeansColor(img image.Image) (string, error) {
	colors, err := prominentcolor.KmeansWithArgs(prominentcolor.ArgumentNoCropping, img)
	if err != nil {
		return "", fmt.Errorf("unable to extract dominant color: %w", err)
	}

	var best *prominentcolor.ColorItem
	for i, c := range colors {
		if best == nil || c.Cnt > best.Cnt {
			best = &colors[i]
		}
	}

	if best == nil {
		return "", errors.New("no colors found")
	}

	return RGBToHex(uint8(best.Color.R), uint8(best.Color.G), uint8(best.Color.B)), nil
}

// toOpaque copies img into an origin-anchored NRGBA with every pixel made
// fully opaque. Straight (non-premultiplied) sources keep the color stored
// under transparent pixels, so a transparent white backdrop stays white.
func toOpaque(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	rowLen := 4 * b.Dx()

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowLen], src.Pix[i:i+rowLen])
		}
	case *image.NRGBA64:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := src.NRGBA64At(b.Min.X+x, b.Min.Y+y)
				dst.SetNRGBA(x, y, color.NRGBA{uint8(c.R >> 8), uint8(c.G >> 8), uint8(c.B >> 8), 0xff})
			}
		}
	default:
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	}

	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}

	return dst
}

func pixelsOf(img image.Image) []rgb {
	b := img.Bounds()
	pixels := make([]rgb, 0, b.Dx()*b.Dy())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pixels = append(pixels, rgb{c.R, c.G, c.B})
		}
	}

	return pixels
}

// filterBackground drops background pixels unless that would leave less than
// a tenth of the sample, which happens when the car itself is white or gray
func filterBackground(pixels []rgb) []rgb {
	kept := make([]rgb, 0, len(pixels))
	for _, p := range pixels {
		if !IsBackgroundColor(p.r, p.g, p.b) {
			kept = append(kept, p)
		}
	}

	if float64(len(kept)) < float64(len(pixels))*0.1 {
		return pixels
	}

	return kept
}

// mostCommon returns the most frequent pixel; ties go to the one seen first
func mostCommon(pixels []rgb) rgb {
	counts := make(map[rgb]int, len(pixels))
	order := make([]rgb, 0, len(pixels))

	for _, p := range pixels {
		if counts[p] == 0 {
			order = append(order, p)
		}
		counts[p]++
	}

	var best rgb
	bestCount := 0
	for _, p := range order {
		if counts[p] > bestCount {
			best = p
			bestCount = counts[p]
		}
	}

	return best
}

func (c rgb) hex() string {
	return RGBToHex(c.r, c.g, c.b)
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

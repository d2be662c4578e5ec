// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package simulator

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
)

const (
	MinDepth = 0.0
	MaxDepth = 100.0

	// maxMapSide bounds the working resolution of a loaded depth map.
	maxMapSide = 1024
)

// DepthMap samples water depth from a grayscale image centred on the start
// position. Darker pixels are deeper; white is MinDepth and black is MaxDepth.
type DepthMap struct {
	img *image.Gray
	// metresPerPixel converts world offsets to pixels.
	metresPerPixel float64
}

// NewDepthMap converts src to grayscale and spreads it over an area
// widthMetres wide.
func NewDepthMap(src image.Image, widthMetres float64) (*DepthMap, error) {
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("depth map image is empty")
	}
	if widthMetres <= 0 {
		return nil, fmt.Errorf("depth map width must be positive, got %g", widthMetres)
	}

	w, h := b.Dx(), b.Dy()
	var gray *image.Gray
	if w > maxMapSide || h > maxMapSide {
		scale := float64(maxMapSide) / float64(max(w, h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
		gray = image.NewGray(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(gray, gray.Bounds(), src, b, draw.Src, nil)
	} else {
		gray = image.NewGray(image.Rect(0, 0, w, h))
		draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)
	}

	return &DepthMap{img: gray, metresPerPixel: widthMetres / float64(w)}, nil
}

// LoadDepthMap decodes a PNG or JPEG depth map from path.
func LoadDepthMap(path string, widthMetres float64) (*DepthMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open depth map: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode depth map %s: %w", path, err)
	}
	return NewDepthMap(img, widthMetres)
}

// BowlImage draws a round lake of the given side: shallow at the shore and
// deepest in the middle. Outside the shore is dry land.
func BowlImage(side int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, side, side))
	c := float64(side-1) / 2
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			r := math.Hypot(float64(x)-c, float64(y)-c) / c
			v := 255.0
			if r < 1 {
				// depth falls off as a paraboloid towards the shore
				v = 255 * r * r
			}
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(v))})
		}
	}
	return img
}

// Depth returns the interpolated depth east and north metres from the map
// centre. Points off the map take the nearest edge value.
func (m *DepthMap) Depth(east, north float64) float64 {
	b := m.img.Bounds()
	px := east/m.metresPerPixel + float64(b.Dx()-1)/2
	py := -north/m.metresPerPixel + float64(b.Dy()-1)/2

	px = math.Max(0, math.Min(px, float64(b.Dx()-1)))
	py = math.Max(0, math.Min(py, float64(b.Dy()-1)))

	x0, y0 := int(px), int(py)
	x1, y1 := min(x0+1, b.Dx()-1), min(y0+1, b.Dy()-1)
	fx, fy := px-float64(x0), py-float64(y0)

	top := lerp(m.gray(x0, y0), m.gray(x1, y0), fx)
	bottom := lerp(m.gray(x0, y1), m.gray(x1, y1), fx)
	v := lerp(top, bottom, fy)

	return (255-v)/255*(MaxDepth-MinDepth) + MinDepth
}

func (m *DepthMap) gray(x, y int) float64 {
	return float64(m.img.GrayAt(x, y).Y)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

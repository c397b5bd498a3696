// Package geometry holds the coordinate math behind tag placement: fitting
// an uploaded image into the display surface, converting pointer positions
// to resolution-independent fractions, and keeping dragged pins and the
// selection dropdown inside their bounds.
package geometry

import "errors"

// ErrDisplayNotReady signals position math attempted before the image's
// display size is known.
var ErrDisplayNotReady = errors.New("display size not available")

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is an absolute pixel position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Fraction is a position expressed relative to the display size, each
// component in [0, 1].
type Fraction struct {
	FX float64 `json:"fx"`
	FY float64 `json:"fy"`
}

// FitDisplay scales natural down into max preserving aspect ratio. Images
// already inside the cap keep their natural size; nothing is ever upscaled.
func FitDisplay(natural, max Size) Size {
	if natural.Width <= 0 || natural.Height <= 0 {
		return Size{}
	}
	if natural.Width <= max.Width && natural.Height <= max.Height {
		return natural
	}

	scale := max.Width / natural.Width
	if s := max.Height / natural.Height; s < scale {
		scale = s
	}
	return Size{
		Width:  natural.Width * scale,
		Height: natural.Height * scale,
	}
}

// Normalize converts a click inside the displayed image to fractions of the
// display size.
func Normalize(click Point, display Size) (Fraction, error) {
	if display.Width <= 0 || display.Height <= 0 {
		return Fraction{}, ErrDisplayNotReady
	}
	return Fraction{
		FX: click.X / display.Width,
		FY: click.Y / display.Height,
	}, nil
}

// Denormalize recovers the natural-resolution pixel position for a stored
// fraction. Used at export time only.
func Denormalize(f Fraction, natural Size) Point {
	return Point{
		X: f.FX * natural.Width,
		Y: f.FY * natural.Height,
	}
}

// ClampDrag clamps a dragged pixel offset to [0, W] x [0, H] and converts
// back to fractions, so a pin released past the right edge lands at exactly
// fx = 1.0.
func ClampDrag(p Point, display Size) (Fraction, error) {
	if display.Width <= 0 || display.Height <= 0 {
		return Fraction{}, ErrDisplayNotReady
	}

	x := clamp(p.X, 0, display.Width)
	y := clamp(p.Y, 0, display.Height)
	return Fraction{
		FX: x / display.Width,
		FY: y / display.Height,
	}, nil
}

const (
	// DropdownWidth/Height is the fixed footprint of the selection dropdown.
	DropdownWidth  = 360.0
	DropdownHeight = 480.0
	// DropdownMargin is the minimum gap kept from viewport edges.
	DropdownMargin = 10.0
)

// PlaceDropdown anchors the dropdown's top-left at the click point and
// slides it left/up only as far as needed to keep the full footprint inside
// the viewport with the minimum margin.
func PlaceDropdown(click Point, viewport Size) Point {
	x := click.X
	y := click.Y

	if x+DropdownWidth+DropdownMargin > viewport.Width {
		x = viewport.Width - DropdownWidth - DropdownMargin
	}
	if y+DropdownHeight+DropdownMargin > viewport.Height {
		y = viewport.Height - DropdownHeight - DropdownMargin
	}

	if x < DropdownMargin {
		x = DropdownMargin
	}
	if y < DropdownMargin {
		y = DropdownMargin
	}

	return Point{X: x, Y: y}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

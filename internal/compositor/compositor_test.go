package compositor

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/wirasakti/partmap/internal/catalog"
	"github.com/wirasakti/partmap/internal/geometry"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
)

func TestRenderKeepsNaturalDimensions(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 640, 480))
	marks := []Mark{
		{
			Number:   1,
			Position: geometry.Fraction{FX: 0.5, FY: 0.5},
			Items:    []catalog.Item{{ID: "a", PartName: "Bracket", PartNo: "BD010"}},
		},
		{
			// pin near the right edge: label mirrors left instead of clipping
			Number:   2,
			Position: geometry.Fraction{FX: 0.98, FY: 0.95},
			Items:    []catalog.Item{{ID: "b", PartName: "Bolt M10", PartNo: "X-22"}},
		},
	}

	data, err := Render(src, marks)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 640 || bounds.Dy() != 480 {
		t.Fatalf("expected 640x480 output, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderWithoutImage(t *testing.T) {
	_, err := Render(nil, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestScaleClamp(t *testing.T) {
	cases := []struct {
		short float64
		want  float64
	}{
		{short: 250, want: 1},   // below base: never shrink below 1
		{short: 1000, want: 2},  // 1000/500
		{short: 10000, want: 8}, // capped at 8
	}
	for _, tc := range cases {
		if got := clamp(tc.short/scaleBase, minScale, maxScale); got != tc.want {
			t.Fatalf("scale for short edge %v: expected %v, got %v", tc.short, tc.want, got)
		}
	}
}

func TestLabelLinesSingleItem(t *testing.T) {
	label, code := labelLines([]catalog.Item{{PartName: "Bracket", PartNo: "BD010"}})
	if label != "Bracket" {
		t.Fatalf("expected bare part name, got %q", label)
	}
	if code != "Part No: BD010" {
		t.Fatalf("expected part number line, got %q", code)
	}
}

func TestLabelLinesMultiItemTruncates(t *testing.T) {
	items := []catalog.Item{
		{PartName: "Left Hand Mirror Mounting Bracket", PartNo: "A1"},
		{PartName: "Right Hand Mirror Mounting Bracket", PartNo: "B2"},
	}
	label, code := labelLines(items)

	if got, want := label, "2 Items: Left Hand Mirror Mounting Brac..."; got != want {
		t.Fatalf("expected truncated label %q, got %q", want, got)
	}
	if code != "Part No: A1, B2" {
		t.Fatalf("expected joined part numbers, got %q", code)
	}
}

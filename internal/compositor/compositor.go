// Package compositor renders the tagged image export: the source bitmap at
// natural resolution with numbered markers and measured labels drawn over
// it. All geometry scales with the source size so exports stay legible from
// thumbnails to scans.
package compositor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/wirasakti/partmap/internal/catalog"
	"github.com/wirasakti/partmap/internal/geometry"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	// scaleBase divides the short edge to derive the marker scale factor.
	scaleBase = 500.0
	minScale  = 1.0
	maxScale  = 8.0

	markerRadius   = 15.0
	markerStroke   = 4.0
	numberFontSize = 16.0
	labelFontSize  = 18.0
	codeFontSize   = 14.0
	labelOffset    = 25.0
	labelPadding   = 12.0
	labelRadius    = 8.0

	// nameBudget caps the joined item names on multi-item labels.
	nameBudget = 30

	defaultMarkerColor = "#3B82F6"
	codeTextColor      = "#FFD700"
)

// Mark is one numbered pin to draw.
type Mark struct {
	Number   int
	Position geometry.Fraction
	Items    []catalog.Item
}

// Render draws the marks over the bitmap and returns an encoded PNG with
// the source's natural dimensions.
func Render(bitmap image.Image, marks []Mark) ([]byte, error) {
	if bitmap == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no image to export")
	}

	bounds := bitmap.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	scale := clamp(min(w, h)/scaleBase, minScale, maxScale)

	boldFont, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	regularFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}

	numberFace := newFace(boldFont, max(numberFontSize*scale, 16))
	labelSize := max(labelFontSize*scale, 14)
	codeSize := max(codeFontSize*scale, 12)
	labelFace := newFace(boldFont, labelSize)
	codeFace := newFace(regularFont, codeSize)

	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(bitmap, 0, 0)

	for _, mark := range marks {
		drawMark(dc, mark, w, h, scale, markContext{
			numberFace: numberFace,
			labelFace:  labelFace,
			codeFace:   codeFace,
			labelSize:  labelSize,
			codeSize:   codeSize,
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type markContext struct {
	numberFace font.Face
	labelFace  font.Face
	codeFace   font.Face
	labelSize  float64
	codeSize   float64
}

func drawMark(dc *gg.Context, mark Mark, w, h, scale float64, mc markContext) {
	x := mark.Position.FX * w
	y := mark.Position.FY * h

	radius := markerRadius * scale
	stroke := markerStroke * scale
	offset := labelOffset * scale
	padding := labelPadding * scale
	corner := labelRadius * scale

	// marker drop shadow
	dc.SetRGBA(0, 0, 0, 0.3)
	dc.DrawCircle(x+2*scale, y+2*scale, radius)
	dc.Fill()

	color := defaultMarkerColor
	if len(mark.Items) > 0 && mark.Items[0].Color != "" {
		color = mark.Items[0].Color
	}
	dc.SetHexColor(color)
	dc.DrawCircle(x, y, radius)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(stroke)
	dc.DrawCircle(x, y, radius)
	dc.Stroke()

	dc.SetFontFace(mc.numberFace)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(fmt.Sprintf("%d", mark.Number), x, y, 0.5, 0.35)

	labelText, codeText := labelLines(mark.Items)

	dc.SetFontFace(mc.labelFace)
	labelWidth, _ := dc.MeasureString(labelText)
	dc.SetFontFace(mc.codeFace)
	codeWidth, _ := dc.MeasureString(codeText)

	maxTextWidth := max(labelWidth, codeWidth)
	labelHeight := mc.labelSize + mc.codeSize + padding*1.5

	// mirror to the left when the default right-side placement overflows
	exceedsRight := x+maxTextWidth+padding*2+offset > w
	exceedsBottom := y+labelHeight/2 > h
	exceedsTop := y-labelHeight/2 < 0

	var labelX float64
	alignRight := false
	if exceedsRight {
		labelX = x - offset
		alignRight = true
	} else {
		labelX = x + offset
	}

	labelY := y
	if exceedsBottom && !exceedsTop {
		labelY = y - offset
	} else if exceedsTop && !exceedsBottom {
		labelY = y + offset
	}

	var bgX float64
	if alignRight {
		bgX = labelX - maxTextWidth - padding*2
	} else {
		bgX = labelX - padding
	}
	bgY := labelY - labelHeight/2
	bgW := maxTextWidth + padding*2

	// background shadow, fill, hairline border
	dc.SetRGBA(0, 0, 0, 0.3)
	dc.DrawRoundedRectangle(bgX+3*scale, bgY+3*scale, bgW, labelHeight, corner)
	dc.Fill()

	dc.SetRGBA(0, 0, 0, 0.85)
	dc.DrawRoundedRectangle(bgX, bgY, bgW, labelHeight, corner)
	dc.Fill()

	dc.SetRGBA(1, 1, 1, 0.3)
	dc.SetLineWidth(1 * scale)
	dc.DrawRoundedRectangle(bgX, bgY, bgW, labelHeight, corner)
	dc.Stroke()

	textX := bgX + padding
	dc.SetFontFace(mc.labelFace)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(labelText, textX, bgY+padding/2+mc.labelSize)

	dc.SetFontFace(mc.codeFace)
	dc.SetHexColor(codeTextColor)
	dc.DrawString(codeText, textX, bgY+padding/2+mc.labelSize+4*scale+mc.codeSize)
}

// labelLines builds the two label rows: item name(s) on top, part numbers
// below. Multi-item names share a truncated budget behind an item count.
func labelLines(items []catalog.Item) (string, string) {
	if len(items) == 0 {
		return "", "Part No: -"
	}

	if len(items) == 1 {
		return items[0].PartName, "Part No: " + items[0].PartNo
	}

	names := make([]string, 0, len(items))
	codes := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.PartName)
		codes = append(codes, item.PartNo)
	}

	joined := strings.Join(names, ", ")
	if len(joined) > nameBudget {
		joined = joined[:nameBudget] + "..."
	}

	label := fmt.Sprintf("%d Items: %s", len(items), joined)
	return label, "Part No: " + strings.Join(codes, ", ")
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
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

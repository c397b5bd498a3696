package workspace

import (
	"bytes"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/wirasakti/partmap/internal/geometry"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
)

// DecodeUpload sniffs the payload's MIME type, rejects anything that is not
// a raster image, and decodes it into an ImageState with display geometry
// fitted to the cap.
func DecodeUpload(data []byte, maxDisplay geometry.Size) (*ImageState, error) {
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty upload")
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only image files are accepted").
			WithDetails(map[string]any{"detected_type": mtype.String()})
	}

	bitmap, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode image")
	}

	bounds := bitmap.Bounds()
	natural := geometry.Size{
		Width:  float64(bounds.Dx()),
		Height: float64(bounds.Dy()),
	}

	return &ImageState{
		Bitmap:  bitmap,
		Natural: natural,
		Display: geometry.FitDisplay(natural, maxDisplay),
		Format:  format,
	}, nil
}

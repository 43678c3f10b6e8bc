package barcode

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	mqrcode "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// zxingBackend decodes with gozxing, a pure Go port of ZXing.
type zxingBackend struct{}

func (b *zxingBackend) Name() string { return NameZXing }

func (b *zxingBackend) Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error) {
	if img == nil {
		return nil, nil
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("zxing: binarize: %w", err)
	}

	hints := make(map[gozxing.DecodeHintType]interface{})
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}

	var out []Result
	if opts.Wants(FormatQR) {
		out = append(out, decodeQR(bmp, hints, opts.Multi)...)
	}
	for _, sr := range singleReaders() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if !opts.Wants(sr.format) {
			continue
		}
		r, err := sr.reader.Decode(bmp, hints)
		if err != nil {
			// NotFound and checksum failures land here; neither is fatal.
			continue
		}
		out = append(out, convertResult(r))
	}
	return out, nil
}

func decodeQR(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}, multi bool) []Result {
	if multi {
		rs, err := mqrcode.NewQRCodeMultiReader().DecodeMultiple(bmp, hints)
		if err == nil && len(rs) > 0 {
			out := make([]Result, 0, len(rs))
			for _, r := range rs {
				out = append(out, convertResult(r))
			}
			return out
		}
		slog.Debug("zxing multi QR reader found nothing, trying single", "error", err)
	}
	r, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return nil
	}
	return []Result{convertResult(r)}
}

type formatReader struct {
	format Format
	reader gozxing.Reader
}

// singleReaders returns fresh non-QR readers; gozxing readers keep state
// between calls so they are not shared.
func singleReaders() []formatReader {
	return []formatReader{
		{FormatDataMatrix, datamatrix.NewDataMatrixReader()},
		{FormatAztec, aztec.NewAztecReader()},
		{FormatCode128, oned.NewCode128Reader()},
		{FormatCode39, oned.NewCode39Reader()},
		{FormatEAN13, oned.NewEAN13Reader()},
		{FormatEAN8, oned.NewEAN8Reader()},
		{FormatUPCA, oned.NewUPCAReader()},
		{FormatUPCE, oned.NewUPCEReader()},
		{FormatITF, oned.NewITFReader()},
		{FormatCodabar, oned.NewCodaBarReader()},
	}
}

func convertResult(r *gozxing.Result) Result {
	var points []Point
	if pts := r.GetResultPoints(); len(pts) > 0 {
		points = make([]Point, 0, len(pts))
		for _, p := range pts {
			points = append(points, Point{X: int(p.GetX()), Y: int(p.GetY())})
		}
	}
	return Result{
		Type:   formatFromZXing(r.GetBarcodeFormat()),
		Value:  r.GetText(),
		Points: points,
		BBox:   rectFromPoints(points),
	}
}

func formatFromZXing(bf gozxing.BarcodeFormat) Format {
	switch bf {
	case gozxing.BarcodeFormat_QR_CODE:
		return FormatQR
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return FormatDataMatrix
	case gozxing.BarcodeFormat_AZTEC:
		return FormatAztec
	case gozxing.BarcodeFormat_CODE_128:
		return FormatCode128
	case gozxing.BarcodeFormat_CODE_39:
		return FormatCode39
	case gozxing.BarcodeFormat_EAN_8:
		return FormatEAN8
	case gozxing.BarcodeFormat_EAN_13:
		return FormatEAN13
	case gozxing.BarcodeFormat_UPC_A:
		return FormatUPCA
	case gozxing.BarcodeFormat_UPC_E:
		return FormatUPCE
	case gozxing.BarcodeFormat_ITF:
		return FormatITF
	case gozxing.BarcodeFormat_CODABAR:
		return FormatCodabar
	default:
		return FormatUnknown
	}
}

package images

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// GrayFill is the constant border color used to pad letterboxed frames,
// the neutral gray most detection networks are trained against.
const GrayFill = 114

// Letterbox describes the aspect-preserving resize and constant-border
// padding that fits a source frame into a fixed model input. The same
// geometry drives both directions: the preprocessor applies it to the
// frame, the decoder inverts it to map boxes back to frame pixels.
type Letterbox struct {
	SrcW, SrcH int
	DstW, DstH int

	// Gain is the scale applied to the source. The content occupies
	// NewW x NewH pixels of the destination.
	Gain       float32
	NewW, NewH int

	// Padding around the scaled content. Left/right (and top/bottom)
	// differ by at most one pixel when the slack is odd.
	PadLeft, PadTop, PadRight, PadBottom int
}

// FitLetterbox computes the letterbox geometry for scaling a srcW x srcH
// frame into a dstW x dstH model input. When allowUpscale is false the
// gain is clamped to 1 and small frames are padded instead of enlarged.
func FitLetterbox(srcW, srcH, dstW, dstH int, allowUpscale bool) (Letterbox, error) {
	if srcW <= 0 || srcH <= 0 {
		return Letterbox{}, errors.Errorf("empty source image %dx%d", srcW, srcH)
	}
	if dstW <= 0 || dstH <= 0 {
		return Letterbox{}, errors.Errorf("invalid target size %dx%d", dstW, dstH)
	}

	gain := math32.Min(float32(dstW)/float32(srcW), float32(dstH)/float32(srcH))
	if !allowUpscale && gain > 1 {
		gain = 1
	}

	newW := clampDim(int(math32.Round(float32(srcW)*gain)), dstW)
	newH := clampDim(int(math32.Round(float32(srcH)*gain)), dstH)

	dw := dstW - newW
	dh := dstH - newH
	padLeft := dw / 2
	padTop := dh / 2

	return Letterbox{
		SrcW: srcW, SrcH: srcH,
		DstW: dstW, DstH: dstH,
		Gain: gain,
		NewW: newW, NewH: newH,
		PadLeft:   padLeft,
		PadTop:    padTop,
		PadRight:  dw - padLeft,
		PadBottom: dh - padTop,
	}, nil
}

// ToModel maps a corner-form box from source-frame pixels into model
// input pixels.
func (l Letterbox) ToModel(b Rect) Rect {
	px := float32(l.PadLeft)
	py := float32(l.PadTop)
	return Rect{
		X1: b.X1*l.Gain + px,
		Y1: b.Y1*l.Gain + py,
		X2: b.X2*l.Gain + px,
		Y2: b.Y2*l.Gain + py,
	}
}

// ToSource inverts ToModel, mapping a box from model input pixels back
// to source-frame pixels and clamping it to the frame bounds.
func (l Letterbox) ToSource(b Rect) Rect {
	px := float32(l.PadLeft)
	py := float32(l.PadTop)
	w := float32(l.SrcW)
	h := float32(l.SrcH)
	return Rect{
		X1: math32.Min(math32.Max((b.X1-px)/l.Gain, 0), w),
		Y1: math32.Min(math32.Max((b.Y1-py)/l.Gain, 0), h),
		X2: math32.Min(math32.Max((b.X2-px)/l.Gain, 0), w),
		Y2: math32.Min(math32.Max((b.Y2-py)/l.Gain, 0), h),
	}
}

// clampDim keeps a rounded content dimension inside [1, limit].
func clampDim(v, limit int) int {
	if v < 1 {
		return 1
	}
	if v > limit {
		return limit
	}
	return v
}

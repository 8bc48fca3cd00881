package inference

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/armaint/go-detect/images"
)

// InputBuffer is the pre-allocated model input storage the preprocessor
// writes into. Exactly one field is non-nil, matching the model's
// quantization mode.
type InputBuffer struct {
	Floats []float32
	Bytes  []uint8
}

// Preprocessor converts an arbitrary-resolution frame into the model's
// fixed input tensor: aspect-preserving resize, constant gray padding,
// and normalization fused into the buffer fill. The letterbox canvas is
// reused across calls; a Preprocessor must not be shared between
// goroutines.
type Preprocessor struct {
	cfg          ModelConfig
	allowUpscale bool
	canvas       *image.NRGBA
}

// NewPreprocessor creates a preprocessor for the given model.
func NewPreprocessor(cfg ModelConfig, allowUpscale bool) *Preprocessor {
	return &Preprocessor{
		cfg:          cfg,
		allowUpscale: allowUpscale,
		canvas:       image.NewNRGBA(image.Rect(0, 0, cfg.InputWidth, cfg.InputHeight)),
	}
}

// Fill letterboxes img onto the reused canvas and writes the model input
// buffer in one pass. Quantized models get raw bytes; float models are
// normalized to [0,1] while copying, without an intermediate normalized
// image. The returned geometry is what the decoder needs to map boxes
// back to frame pixels.
func (p *Preprocessor) Fill(img image.Image, dst InputBuffer) (images.Letterbox, error) {
	bounds := img.Bounds()
	lb, err := images.FitLetterbox(bounds.Dx(), bounds.Dy(), p.cfg.InputWidth, p.cfg.InputHeight, p.allowUpscale)
	if err != nil {
		return images.Letterbox{}, err
	}

	need := 3 * p.cfg.InputWidth * p.cfg.InputHeight
	if p.cfg.Quantized {
		if len(dst.Bytes) != need {
			return images.Letterbox{}, errors.Errorf("input buffer holds %d bytes, model needs %d", len(dst.Bytes), need)
		}
	} else if len(dst.Floats) != need {
		return images.Letterbox{}, errors.Errorf("input buffer holds %d floats, model needs %d", len(dst.Floats), need)
	}

	// Area averaging when shrinking, linear when enlarging: less
	// aliasing than a single fixed filter.
	filter := imaging.Box
	if lb.Gain > 1 {
		filter = imaging.Linear
	}
	resized := imaging.Resize(img, lb.NewW, lb.NewH, filter)

	p.resetCanvas()
	content := image.Rect(lb.PadLeft, lb.PadTop, lb.PadLeft+lb.NewW, lb.PadTop+lb.NewH)
	draw.Draw(p.canvas, content, resized, image.Point{}, draw.Src)

	if p.cfg.Quantized {
		p.fillBytes(dst.Bytes)
	} else {
		p.fillFloats(dst.Floats)
	}
	return lb, nil
}

// resetCanvas paints the whole canvas with the letterbox fill color.
func (p *Preprocessor) resetCanvas() {
	px := p.canvas.Pix
	for i := 0; i < len(px); i += 4 {
		px[i] = images.GrayFill
		px[i+1] = images.GrayFill
		px[i+2] = images.GrayFill
		px[i+3] = 0xff
	}
}

func (p *Preprocessor) fillFloats(dst []float32) {
	w, h := p.cfg.InputWidth, p.cfg.InputHeight
	plane := w * h
	i := 0
	for y := 0; y < h; y++ {
		row := p.canvas.Pix[y*p.canvas.Stride:]
		for x := 0; x < w; x++ {
			r := float32(row[x*4]) / 255
			g := float32(row[x*4+1]) / 255
			b := float32(row[x*4+2]) / 255
			if p.cfg.Layout == LayoutNCHW {
				dst[i] = r
				dst[plane+i] = g
				dst[2*plane+i] = b
			} else {
				dst[i*3] = r
				dst[i*3+1] = g
				dst[i*3+2] = b
			}
			i++
		}
	}
}

func (p *Preprocessor) fillBytes(dst []uint8) {
	w, h := p.cfg.InputWidth, p.cfg.InputHeight
	plane := w * h
	i := 0
	for y := 0; y < h; y++ {
		row := p.canvas.Pix[y*p.canvas.Stride:]
		for x := 0; x < w; x++ {
			if p.cfg.Layout == LayoutNCHW {
				dst[i] = row[x*4]
				dst[plane+i] = row[x*4+1]
				dst[2*plane+i] = row[x*4+2]
			} else {
				dst[i*3] = row[x*4]
				dst[i*3+1] = row[x*4+1]
				dst[i*3+2] = row[x*4+2]
			}
			i++
		}
	}
}

// Package report renders the timeline of a classified frame stream:
// the head rotation and the eye and smile probabilities of the first
// face, the classifier thresholds and the emitted gestures.
package report

import (
	"image"
	"image/color"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/disintegration/imaging"
	gesture "github.com/esimov/gesture/core"
	"github.com/fogleman/gg"
)

// Sample is the first face of a classified frame.
type Sample struct {
	Seq      uint64
	Features gesture.FaceFeatures
}

// Timeline accumulates samples and events of one session.
type Timeline struct {
	Thresholds gesture.Thresholds
	Samples    []Sample
	Events     []gesture.Event
}

// NewTimeline creates an empty timeline.
func NewTimeline(th gesture.Thresholds) *Timeline {
	return &Timeline{Thresholds: th}
}

// Add records a classified frame and the gestures it emitted.
func (t *Timeline) Add(seq uint64, faces []gesture.FaceFeatures, events []gesture.Event) {
	if len(faces) > 0 {
		t.Samples = append(t.Samples, Sample{Seq: seq, Features: faces[0]})
	}
	t.Events = append(t.Events, events...)
}

// Options configures the rendered image.
type Options struct {
	Width  int
	Height int
	// MaxWidth downsizes the rendered image when positive.
	MaxWidth int
}

// DefaultOptions returns the default image size.
func DefaultOptions() Options {
	return Options{Width: 1280, Height: 720}
}

const margin = 40.0

var (
	background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	axisColor  = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	angleColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	leftColor  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	rightColor = color.RGBA{R: 0, G: 160, B: 0, A: 255}
	smileColor = color.RGBA{R: 255, G: 140, B: 0, A: 255}
	thrColor   = color.RGBA{R: 255, G: 0, B: 0, A: 255}

	kindColors = map[gesture.Kind]color.RGBA{
		gesture.DoubleEyeBlink: {R: 128, G: 0, B: 128, A: 255},
		gesture.Smile:          smileColor,
		gesture.NodLeft:        {R: 220, G: 20, B: 60, A: 255},
		gesture.NodRight:       {R: 0, G: 139, B: 139, A: 255},
		gesture.LeftEyeBlink:   leftColor,
		gesture.RightEyeBlink:  rightColor,
	}
)

// panel maps sample values into a rectangle of the image.
type panel struct {
	x, y, w, h float64
	min, max   float64
	first      uint64
	last       uint64
}

func (p panel) px(seq uint64) float64 {
	if p.last == p.first {
		return p.x + p.w/2
	}
	return p.x + p.w*float64(seq-p.first)/float64(p.last-p.first)
}

func (p panel) py(v float64) float64 {
	v = math.Max(p.min, math.Min(p.max, v))
	return p.y + p.h - p.h*(v-p.min)/(p.max-p.min)
}

// Render draws the timeline.
func (t *Timeline) Render(opts Options) (image.Image, error) {
	if len(t.Samples) == 0 {
		return nil, errors.New("timeline has no samples")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultOptions().Width, DefaultOptions().Height
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(background)
	dc.Clear()

	first, last := t.Samples[0].Seq, t.Samples[len(t.Samples)-1].Seq
	for _, s := range t.Samples {
		first = min(first, s.Seq)
		last = max(last, s.Seq)
	}

	w := float64(opts.Width) - 2*margin
	h := (float64(opts.Height) - 3*margin) / 2

	lo, hi := t.angleRange()
	angle := panel{x: margin, y: margin, w: w, h: h, min: lo, max: hi, first: first, last: last}
	prob := panel{x: margin, y: 2*margin + h, w: w, h: h, min: 0, max: 1, first: first, last: last}

	drawFrame(dc, angle, "head angle (deg)")
	drawFrame(dc, prob, "probability")

	drawThreshold(dc, angle, t.Thresholds.LeftNod)
	drawThreshold(dc, angle, t.Thresholds.RightNod)
	drawThreshold(dc, prob, t.Thresholds.EyeOpenMax)
	drawThreshold(dc, prob, t.Thresholds.EyeOpenMin)
	drawThreshold(dc, prob, t.Thresholds.Smile)

	t.drawTrace(dc, angle, angleColor, func(f gesture.FaceFeatures) float64 { return f.HeadEulerAngleZ })
	t.drawTrace(dc, prob, leftColor, func(f gesture.FaceFeatures) float64 { return f.LeftEyeOpenProbability })
	t.drawTrace(dc, prob, rightColor, func(f gesture.FaceFeatures) float64 { return f.RightEyeOpenProbability })
	t.drawTrace(dc, prob, smileColor, func(f gesture.FaceFeatures) float64 { return f.SmilingProbability })

	for _, ev := range t.Events {
		x := angle.px(ev.Seq)
		dc.SetColor(kindColors[ev.Kind])
		dc.SetLineWidth(1.5)
		dc.DrawLine(x, angle.y, x, prob.y+prob.h)
		dc.Stroke()
		dc.DrawStringAnchored(ev.Kind.String(), x+3, angle.y+10, 0, 0.5)
	}

	img := dc.Image()
	if opts.MaxWidth > 0 && opts.MaxWidth < opts.Width {
		img = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	}
	return img, nil
}

// Save renders the timeline into a file. The image format is
// deduced from the file extension.
func (t *Timeline) Save(path string, opts Options) error {
	img, err := t.Render(opts)
	if err != nil {
		return err
	}
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return errors.WithHint(
			errors.Wrapf(err, "unsupported report format %s", path),
			"use a .png or .jpg file name",
		)
	}
	return errors.Wrapf(imaging.Save(img, path, imaging.JPEGQuality(95)), "saving report %s", path)
}

// angleRange returns the vertical range of the head angle panel,
// wide enough to show both nod thresholds.
func (t *Timeline) angleRange() (float64, float64) {
	lo := math.Min(t.Thresholds.RightNod, t.Thresholds.LeftNod)
	hi := math.Max(t.Thresholds.RightNod, t.Thresholds.LeftNod)
	for _, s := range t.Samples {
		a := s.Features.HeadEulerAngleZ
		if math.IsNaN(a) || math.IsInf(a, 0) {
			continue
		}
		lo = math.Min(lo, a)
		hi = math.Max(hi, a)
	}
	pad := math.Max((hi-lo)*0.1, 1)
	return lo - pad, hi + pad
}

func (t *Timeline) drawTrace(dc *gg.Context, p panel, c color.Color, value func(gesture.FaceFeatures) float64) {
	dc.SetColor(c)
	dc.SetLineWidth(2)
	dc.NewSubPath()
	for _, s := range t.Samples {
		v := value(s.Features)
		if math.IsNaN(v) {
			continue
		}
		dc.LineTo(p.px(s.Seq), p.py(v))
	}
	dc.Stroke()
}

func drawFrame(dc *gg.Context, p panel, label string) {
	dc.SetColor(axisColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(p.x, p.y, p.w, p.h)
	dc.Stroke()
	dc.DrawString(label, p.x, p.y-6)
}

func drawThreshold(dc *gg.Context, p panel, v float64) {
	dc.SetColor(thrColor)
	dc.SetLineWidth(1)
	dc.SetDash(6, 4)
	y := p.py(v)
	dc.DrawLine(p.x, y, p.x+p.w, y)
	dc.Stroke()
	dc.SetDash()
}

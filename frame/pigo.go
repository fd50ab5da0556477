package frame

import (
	"bufio"
	"bytes"
	"io"
	"math"

	"github.com/cockroachdb/errors"
	gesture "github.com/esimov/gesture/core"
)

// Neutral probabilities assigned to faces whose detector only reports
// geometry. They satisfy none of the eye or smile conditions.
const (
	NeutralEyeOpenProbability = 0.5
	NeutralSmilingProbability = 0.0
)

// Point is a detection point as written by the pigo face detector CLI:
// x is the horizontal and y the vertical image coordinate.
type Point struct {
	X     int `json:"x,omitempty"`
	Y     int `json:"y,omitempty"`
	Scale int `json:"size,omitempty"`
}

// PigoDetection is one face of the pigo JSON output.
type PigoDetection struct {
	Face      Point   `json:"face,omitempty"`
	Eyes      []Point `json:"eyes,omitempty"`
	Landmarks []Point `json:"landmark_points,omitempty"`
}

// HeadRoll returns the in-plane head rotation in degrees derived from
// the two pupils, counter-clockwise positive. The second return value
// is false when the pupils were not localized.
func (d PigoDetection) HeadRoll() (float64, bool) {
	if len(d.Eyes) < 2 {
		return 0, false
	}
	left, right := d.Eyes[0], d.Eyes[1]
	if left.X > right.X {
		left, right = right, left
	}
	dx := float64(right.X - left.X)
	dy := float64(right.Y - left.Y)
	if dx == 0 && dy == 0 {
		return 0, false
	}
	// The image y axis points downwards.
	return -math.Atan2(dy, dx) * 180 / math.Pi, true
}

// Features converts the detection into classifier input.
func (d PigoDetection) Features() (gesture.FaceFeatures, bool) {
	roll, ok := d.HeadRoll()
	if !ok {
		return gesture.FaceFeatures{}, false
	}
	return gesture.FaceFeatures{
		HeadEulerAngleZ:         roll,
		LeftEyeOpenProbability:  NeutralEyeOpenProbability,
		RightEyeOpenProbability: NeutralEyeOpenProbability,
		SmilingProbability:      NeutralSmilingProbability,
	}, true
}

// PigoDecoder reads a stream where every line holds the JSON array of
// detections pigo reports for one frame.
type PigoDecoder struct {
	scanner *bufio.Scanner
	line    int
	seq     uint64
}

// NewPigoDecoder returns a decoder reading pigo detections from r.
func NewPigoDecoder(r io.Reader) *PigoDecoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &PigoDecoder{scanner: sc}
}

// Decode reads the next frame into f. Detections without localized
// pupils are dropped from the frame.
func (d *PigoDecoder) Decode(f *Frame) error {
	for d.scanner.Scan() {
		d.line++
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var dets []PigoDetection
		if err := json.Unmarshal(line, &dets); err != nil {
			return errors.Wrapf(err, "line %d: malformed pigo detection", d.line)
		}
		d.seq++
		*f = Frame{Seq: d.seq}
		for _, det := range dets {
			if feat, ok := det.Features(); ok {
				f.Faces = append(f.Faces, feat)
			}
		}
		return nil
	}
	if err := d.scanner.Err(); err != nil {
		return errors.Wrapf(err, "line %d: reading pigo detections", d.line+1)
	}
	return io.EOF
}

// Source is implemented by the frame decoders.
type Source interface {
	Decode(*Frame) error
}

// Format names an input stream format.
type Format string

const (
	FormatFrames Format = "frames"
	FormatPigo   Format = "pigo"
)

// NewSource returns a decoder for the given format.
func NewSource(format Format, r io.Reader) (Source, error) {
	switch format {
	case FormatFrames, "":
		return NewDecoder(r), nil
	case FormatPigo:
		return NewPigoDecoder(r), nil
	}
	return nil, errors.WithHint(
		errors.Newf("unsupported input format %q", string(format)),
		"use one of: frames, pigo",
	)
}

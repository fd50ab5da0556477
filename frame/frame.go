// Package frame implements the line delimited JSON format used to feed
// face detector output into the gesture classifier and to emit the
// recognized gestures.
package frame

import (
	"bufio"
	"bytes"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	gesture "github.com/esimov/gesture/core"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxLineSize is the longest frame line accepted by the decoder.
const maxLineSize = 1 << 20

// Frame holds the detector output for one camera frame.
type Frame struct {
	Seq       uint64                 `json:"seq"`
	Timestamp time.Time              `json:"timestamp,omitempty"`
	Faces     []gesture.FaceFeatures `json:"faces"`
	// Error is set when the detector failed to process the frame.
	Error string `json:"error,omitempty"`
}

// Skip reports whether the frame carries nothing to classify.
func (f *Frame) Skip() bool {
	return f.Error != "" || len(f.Faces) == 0
}

// Decoder reads frames from a line delimited JSON stream.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
	seq     uint64
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Decoder{scanner: sc}
}

// Decode reads the next frame into f. Blank lines are ignored. Frames
// without a sequence number continue from the previous frame's one.
// It returns io.EOF once the stream is exhausted.
func (d *Decoder) Decode(f *Frame) error {
	for d.scanner.Scan() {
		d.line++
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		*f = Frame{}
		if err := json.Unmarshal(line, f); err != nil {
			return errors.Wrapf(err, "line %d: malformed frame", d.line)
		}
		if f.Seq == 0 {
			f.Seq = d.seq + 1
		}
		d.seq = f.Seq
		return nil
	}
	if err := d.scanner.Err(); err != nil {
		return errors.Wrapf(err, "line %d: reading frames", d.line+1)
	}
	return io.EOF
}

// Line returns the number of lines consumed so far.
func (d *Decoder) Line() int {
	return d.line
}

// Encoder writes gesture events as line delimited JSON.
type Encoder struct {
	enc *jsoniter.Encoder
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

// Encode writes a single event followed by a newline.
func (e *Encoder) Encode(ev gesture.Event) error {
	return errors.Wrap(e.enc.Encode(ev), "encoding gesture event")
}

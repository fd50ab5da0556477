package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	gesture "github.com/esimov/gesture/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frames = `{"seq":1,"faces":[{"head_euler_angle_z":0,"left_eye_open_probability":0.5,"right_eye_open_probability":0.5,"smiling_probability":0}]}
{"seq":2,"faces":[{"head_euler_angle_z":25,"left_eye_open_probability":0.5,"right_eye_open_probability":0.5,"smiling_probability":0}]}
{"seq":3,"faces":[{"head_euler_angle_z":26,"left_eye_open_probability":0.5,"right_eye_open_probability":0.5,"smiling_probability":0}]}
{"seq":4,"faces":[]}
{"seq":5,"faces":[{"head_euler_angle_z":0,"left_eye_open_probability":0.5,"right_eye_open_probability":0.5,"smiling_probability":0}]}
{"seq":6,"faces":[{"head_euler_angle_z":0,"left_eye_open_probability":0.05,"right_eye_open_probability":0.05,"smiling_probability":0.9}]}
`

func writeFrames(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "frames.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunClassify_WritesEvents(t *testing.T) {
	in := writeFrames(t, frames)
	out := filepath.Join(t.TempDir(), "events.jsonl")
	plot := filepath.Join(t.TempDir(), "timeline.png")

	var msgs bytes.Buffer
	opts := &classifyOptions{source: in, destination: out, format: "frames", plot: plot}
	require.NoError(t, runClassify(opts, gesture.DefaultThresholds(), gesture.FirstFace, &msgs))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"gesture":"nod_left"`)
	assert.Contains(t, lines[0], `"seq":2`)
	assert.Contains(t, lines[1], `"gesture":"smile"`)

	assert.Contains(t, msgs.String(), "Nod Left Detected")
	assert.Contains(t, msgs.String(), "Smile Detected")
	assert.Contains(t, msgs.String(), "2")

	_, err = os.Stat(plot)
	assert.NoError(t, err)
}

func TestRunClassify_MalformedInput(t *testing.T) {
	in := writeFrames(t, frames+"{broken\n")

	var msgs bytes.Buffer
	opts := &classifyOptions{source: in, format: "frames", quiet: true}
	err := runClassify(opts, gesture.DefaultThresholds(), gesture.FirstFace, &msgs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 7")
}

func TestRunClassify_RejectsBinaryInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascade")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0xfe, 0xff}, 0o644))

	var msgs bytes.Buffer
	opts := &classifyOptions{source: path, format: "frames"}
	assert.Error(t, runClassify(opts, gesture.DefaultThresholds(), gesture.FirstFace, &msgs))
}

func TestRootCmd_ThresholdFlags(t *testing.T) {
	in := writeFrames(t, frames)
	out := filepath.Join(t.TempDir(), "events.jsonl")

	root := newRootCmd()
	root.SetArgs([]string{"classify", "--in", in, "--out", out, "--left-nod", "30", "-q"})
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	require.NoError(t, root.Execute())

	// With a 30 degree threshold the nod is not detected anymore.
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"gesture":"smile"`)
}

func TestRootCmd_Version(t *testing.T) {
	Version = "test"
	root := newRootCmd()
	root.SetArgs([]string{"version"})

	var stdout bytes.Buffer
	root.SetOut(&stdout)
	require.NoError(t, root.Execute())
	assert.Equal(t, "gesture test\n", stdout.String())
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestCloseOutput(t *testing.T) {
	errDisk := errors.New("no space left on device")
	failing := closerFunc(func() error { return errDisk })

	var err error
	closeOutput(failing, "events.jsonl", &err)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDisk))
	assert.Contains(t, err.Error(), "events.jsonl")

	// An earlier error is kept.
	errDecode := errors.New("malformed frame")
	err = errDecode
	closeOutput(failing, "events.jsonl", &err)
	assert.Equal(t, errDecode, err)

	err = nil
	closeOutput(io.NopCloser(nil), "events.jsonl", &err)
	assert.NoError(t, err)
}

package gesture

import (
	"github.com/cockroachdb/errors"
)

// Kind enumerates the recognized facial gestures.
type Kind uint8

const (
	DoubleEyeBlink Kind = iota + 1
	Smile
	NodLeft
	NodRight
	LeftEyeBlink
	RightEyeBlink
)

var kindNames = map[Kind]string{
	DoubleEyeBlink: "double_eye_blink",
	Smile:          "smile",
	NodLeft:        "nod_left",
	NodRight:       "nod_right",
	LeftEyeBlink:   "left_eye_blink",
	RightEyeBlink:  "right_eye_blink",
}

var kindMessages = map[Kind]string{
	DoubleEyeBlink: "Double Eye Blink Detected",
	Smile:          "Smile Detected",
	NodLeft:        "Nod Left Detected",
	NodRight:       "Nod Right Detected",
	LeftEyeBlink:   "Left Eye Blink Detected",
	RightEyeBlink:  "Right Eye Blink Detected",
}

// Kinds returns every gesture kind in declaration order.
func Kinds() []Kind {
	return []Kind{DoubleEyeBlink, Smile, NodLeft, NodRight, LeftEyeBlink, RightEyeBlink}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Message returns a human readable notification for the gesture.
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return "Unknown Gesture"
}

// Valid reports whether k is one of the declared gesture kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, errors.Newf("unknown gesture kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind returns the gesture kind with the given name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, errors.Newf("unknown gesture kind %q", name)
}

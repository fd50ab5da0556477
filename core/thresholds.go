package gesture

import (
	"math"

	"github.com/cockroachdb/errors"
)

// ErrInvalidThreshold is returned by Validate for NaN or infinite values.
var ErrInvalidThreshold = errors.New("invalid threshold")

// Validate checks that every threshold is a finite number.
// The classifier itself never validates; this is meant for
// values coming from configuration files or command line flags.
func (t Thresholds) Validate() error {
	fields := []struct {
		name string
		val  float64
	}{
		{"left_nod", t.LeftNod},
		{"right_nod", t.RightNod},
		{"smile", t.Smile},
		{"eye_open_max", t.EyeOpenMax},
		{"eye_open_min", t.EyeOpenMin},
	}
	for _, f := range fields {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return errors.WithHintf(
				errors.Wrapf(ErrInvalidThreshold, "%s: %v", f.name, f.val),
				"%s must be a finite number", f.name,
			)
		}
	}
	return nil
}

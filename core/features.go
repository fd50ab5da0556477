package gesture

// FaceFeatures holds the facial measurements the face detector
// reports for a single face in a single frame.
type FaceFeatures struct {
	// HeadEulerAngleZ is the head rotation around the axis pointing out of
	// the image, in degrees. Counter-clockwise rotation is positive.
	HeadEulerAngleZ         float64 `json:"head_euler_angle_z"`
	LeftEyeOpenProbability  float64 `json:"left_eye_open_probability"`
	RightEyeOpenProbability float64 `json:"right_eye_open_probability"`
	SmilingProbability      float64 `json:"smiling_probability"`
	// TrackingID identifies the face across frames. It is empty
	// when the detector does not track faces.
	TrackingID string `json:"tracking_id,omitempty"`
}

// Thresholds defines the decision boundaries used by the classifier.
type Thresholds struct {
	LeftNod    float64 `json:"left_nod" mapstructure:"left_nod"`
	RightNod   float64 `json:"right_nod" mapstructure:"right_nod"`
	Smile      float64 `json:"smile" mapstructure:"smile"`
	EyeOpenMax float64 `json:"eye_open_max" mapstructure:"eye_open_max"`
	EyeOpenMin float64 `json:"eye_open_min" mapstructure:"eye_open_min"`
}

const (
	DefaultLeftNod    = 20.0
	DefaultRightNod   = -4.0
	DefaultSmile      = 0.8
	DefaultEyeOpenMax = 0.95
	DefaultEyeOpenMin = 0.1
)

// DefaultThresholds returns the thresholds the classifier was tuned with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LeftNod:    DefaultLeftNod,
		RightNod:   DefaultRightNod,
		Smile:      DefaultSmile,
		EyeOpenMax: DefaultEyeOpenMax,
		EyeOpenMin: DefaultEyeOpenMin,
	}
}

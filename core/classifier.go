package gesture

// DebounceState carries the one bit of history the classifier needs
// between frames of the same face.
type DebounceState struct {
	// Resting is true when the face holds no gesture pose. A gesture
	// can only be emitted while the face is resting.
	Resting bool
}

// NewDebounceState returns the state of a freshly tracked face.
func NewDebounceState() DebounceState {
	return DebounceState{Resting: true}
}

// Match returns the highest priority pose held by the face, ignoring
// any debounce history. The checks are evaluated in a fixed order and
// the first one satisfied wins; all comparisons are strict.
func Match(f FaceFeatures, t Thresholds) (Kind, bool) {
	left, right := f.LeftEyeOpenProbability, f.RightEyeOpenProbability

	switch {
	case f.HeadEulerAngleZ > t.LeftNod:
		return NodLeft, true
	case f.HeadEulerAngleZ < t.RightNod:
		return NodRight, true
	case left > t.EyeOpenMax && right < t.EyeOpenMin:
		return RightEyeBlink, true
	case right > t.EyeOpenMax && left < t.EyeOpenMin:
		return LeftEyeBlink, true
	case f.SmilingProbability > t.Smile:
		return Smile, true
	case left < t.EyeOpenMin && right < t.EyeOpenMin:
		return DoubleEyeBlink, true
	}
	return 0, false
}

// Classify maps the face features of one frame to at most one gesture.
// A gesture is reported only when the face was resting before; while
// the pose is held nothing more is reported. A frame matching no pose
// puts the face back to rest.
func Classify(f FaceFeatures, t Thresholds, s *DebounceState) (Kind, bool) {
	kind, ok := Match(f, t)
	if !ok {
		s.Resting = true
		return 0, false
	}
	if !s.Resting {
		return 0, false
	}
	s.Resting = false
	return kind, true
}

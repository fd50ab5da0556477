package gesture_test

import (
	"math"
	"testing"

	gesture "github.com/esimov/gesture/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// neutral is a face holding no pose under the default thresholds.
var neutral = gesture.FaceFeatures{
	HeadEulerAngleZ:         0,
	LeftEyeOpenProbability:  0.5,
	RightEyeOpenProbability: 0.5,
	SmilingProbability:      0.1,
}

func TestMatch_PriorityOrder(t *testing.T) {
	th := gesture.DefaultThresholds()

	tests := []struct {
		name string
		face gesture.FaceFeatures
		want gesture.Kind
		ok   bool
	}{
		{"neutral", neutral, 0, false},
		{"nod left", gesture.FaceFeatures{HeadEulerAngleZ: 25, LeftEyeOpenProbability: 0.5, RightEyeOpenProbability: 0.5}, gesture.NodLeft, true},
		{"nod right", gesture.FaceFeatures{HeadEulerAngleZ: -10, LeftEyeOpenProbability: 0.5, RightEyeOpenProbability: 0.5}, gesture.NodRight, true},
		{"right eye blink", gesture.FaceFeatures{LeftEyeOpenProbability: 0.97, RightEyeOpenProbability: 0.02}, gesture.RightEyeBlink, true},
		{"left eye blink", gesture.FaceFeatures{LeftEyeOpenProbability: 0.02, RightEyeOpenProbability: 0.97}, gesture.LeftEyeBlink, true},
		{"smile", gesture.FaceFeatures{LeftEyeOpenProbability: 0.5, RightEyeOpenProbability: 0.5, SmilingProbability: 0.9}, gesture.Smile, true},
		{"double eye blink", gesture.FaceFeatures{LeftEyeOpenProbability: 0.05, RightEyeOpenProbability: 0.05}, gesture.DoubleEyeBlink, true},
		// Smile is checked before the double blink.
		{"smile wins over double blink", gesture.FaceFeatures{LeftEyeOpenProbability: 0.05, RightEyeOpenProbability: 0.05, SmilingProbability: 0.9}, gesture.Smile, true},
		// Head rotation is checked before everything else.
		{"nod left wins over smile", gesture.FaceFeatures{HeadEulerAngleZ: 30, SmilingProbability: 0.99}, gesture.NodLeft, true},
		{"nod right wins over blink", gesture.FaceFeatures{HeadEulerAngleZ: -30, LeftEyeOpenProbability: 0.99, RightEyeOpenProbability: 0.01}, gesture.NodRight, true},
		// A single eye blink is checked before the smile.
		{"right eye blink wins over smile", gesture.FaceFeatures{LeftEyeOpenProbability: 0.99, RightEyeOpenProbability: 0.01, SmilingProbability: 0.99}, gesture.RightEyeBlink, true},
		{"left eye blink wins over smile", gesture.FaceFeatures{LeftEyeOpenProbability: 0.01, RightEyeOpenProbability: 0.99, SmilingProbability: 0.99}, gesture.LeftEyeBlink, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := gesture.Match(tt.face, th)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestMatch_BoundariesDoNotTrigger(t *testing.T) {
	th := gesture.DefaultThresholds()

	faces := []gesture.FaceFeatures{
		{HeadEulerAngleZ: 20, LeftEyeOpenProbability: 0.5, RightEyeOpenProbability: 0.5},
		{HeadEulerAngleZ: -4, LeftEyeOpenProbability: 0.5, RightEyeOpenProbability: 0.5},
		{LeftEyeOpenProbability: 0.5, RightEyeOpenProbability: 0.5, SmilingProbability: 0.8},
		{LeftEyeOpenProbability: 0.95, RightEyeOpenProbability: 0.05},
		{LeftEyeOpenProbability: 0.97, RightEyeOpenProbability: 0.1},
		{LeftEyeOpenProbability: 0.1, RightEyeOpenProbability: 0.1},
	}
	for _, f := range faces {
		_, ok := gesture.Match(f, th)
		assert.False(t, ok, "features %+v should not trigger", f)
	}
}

func TestMatch_NaNFallsThrough(t *testing.T) {
	f := gesture.FaceFeatures{
		HeadEulerAngleZ:         math.NaN(),
		LeftEyeOpenProbability:  math.NaN(),
		RightEyeOpenProbability: math.NaN(),
		SmilingProbability:      math.NaN(),
	}
	_, ok := gesture.Match(f, gesture.DefaultThresholds())
	assert.False(t, ok)
}

func TestClassify_NodLeftDebounce(t *testing.T) {
	th := gesture.Thresholds{LeftNod: 20, RightNod: -4, Smile: 0.8, EyeOpenMax: 0.95, EyeOpenMin: 0.1}
	face := gesture.FaceFeatures{HeadEulerAngleZ: 25, LeftEyeOpenProbability: 0.5, RightEyeOpenProbability: 0.5}
	state := gesture.NewDebounceState()

	kind, ok := gesture.Classify(face, th, &state)
	require.True(t, ok)
	assert.Equal(t, gesture.NodLeft, kind)
	assert.False(t, state.Resting)

	// The pose is still held: nothing is emitted.
	_, ok = gesture.Classify(face, th, &state)
	assert.False(t, ok)
	assert.False(t, state.Resting)
}

func TestClassify_HeldPoseChangeIsSuppressed(t *testing.T) {
	th := gesture.DefaultThresholds()
	state := gesture.NewDebounceState()

	_, ok := gesture.Classify(gesture.FaceFeatures{HeadEulerAngleZ: 25}, th, &state)
	require.True(t, ok)

	// Switching straight into another pose does not fire either.
	_, ok = gesture.Classify(gesture.FaceFeatures{LeftEyeOpenProbability: 0.5, RightEyeOpenProbability: 0.5, SmilingProbability: 0.9}, th, &state)
	assert.False(t, ok)

	_, ok = gesture.Classify(neutral, th, &state)
	assert.False(t, ok)
	assert.True(t, state.Resting)

	kind, ok := gesture.Classify(gesture.FaceFeatures{LeftEyeOpenProbability: 0.5, RightEyeOpenProbability: 0.5, SmilingProbability: 0.9}, th, &state)
	require.True(t, ok)
	assert.Equal(t, gesture.Smile, kind)
}

func TestClassify_NoMatchResetsResting(t *testing.T) {
	th := gesture.DefaultThresholds()

	for _, prior := range []bool{true, false} {
		state := gesture.DebounceState{Resting: prior}
		_, ok := gesture.Classify(neutral, th, &state)
		assert.False(t, ok)
		assert.True(t, state.Resting, "prior resting=%v", prior)
	}
}

func TestClassify_RightEyeBlinkDefaults(t *testing.T) {
	state := gesture.NewDebounceState()
	face := gesture.FaceFeatures{HeadEulerAngleZ: 0, LeftEyeOpenProbability: 0.97, RightEyeOpenProbability: 0.02}

	kind, ok := gesture.Classify(face, gesture.DefaultThresholds(), &state)
	require.True(t, ok)
	assert.Equal(t, gesture.RightEyeBlink, kind)
}

func TestClassify_AtMostOneGesturePerCall(t *testing.T) {
	th := gesture.DefaultThresholds()
	values := []float64{-50, -4, 0, 0.01, 0.1, 0.5, 0.8, 0.95, 0.99, 20, 50}

	for _, angle := range values {
		for _, left := range values {
			for _, right := range values {
				state := gesture.NewDebounceState()
				f := gesture.FaceFeatures{
					HeadEulerAngleZ:         angle,
					LeftEyeOpenProbability:  left,
					RightEyeOpenProbability: right,
					SmilingProbability:      right,
				}
				kind, ok := gesture.Classify(f, th, &state)
				if ok {
					assert.True(t, kind.Valid())
					assert.False(t, state.Resting)
				} else {
					assert.True(t, state.Resting)
				}
			}
		}
	}
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, gesture.DefaultThresholds().Validate())

	th := gesture.DefaultThresholds()
	th.Smile = math.NaN()
	err := th.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, gesture.ErrInvalidThreshold)

	th = gesture.DefaultThresholds()
	th.LeftNod = math.Inf(1)
	assert.Error(t, th.Validate())
}

func BenchmarkClassify(b *testing.B) {
	th := gesture.DefaultThresholds()
	state := gesture.NewDebounceState()
	faces := []gesture.FaceFeatures{
		neutral,
		{HeadEulerAngleZ: 25},
		{LeftEyeOpenProbability: 0.05, RightEyeOpenProbability: 0.05},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gesture.Classify(faces[i%len(faces)], th, &state)
	}
}

package gesture_test

import (
	"encoding/json"
	"testing"

	gesture "github.com/esimov/gesture/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_NamesAndMessages(t *testing.T) {
	assert.Equal(t, "nod_left", gesture.NodLeft.String())
	assert.Equal(t, "Nod Left Detected", gesture.NodLeft.Message())
	assert.Equal(t, "Double Eye Blink Detected", gesture.DoubleEyeBlink.Message())
	assert.Equal(t, "unknown", gesture.Kind(0).String())
	assert.False(t, gesture.Kind(0).Valid())
	assert.Len(t, gesture.Kinds(), 6)
}

func TestKind_ParseEveryKind(t *testing.T) {
	for _, k := range gesture.Kinds() {
		parsed, err := gesture.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := gesture.ParseKind("wink")
	assert.Error(t, err)
}

func TestKind_EventJSON(t *testing.T) {
	data, err := json.Marshal(gesture.Event{Seq: 3, Kind: gesture.RightEyeBlink})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"gesture":"right_eye_blink"`)

	_, err = json.Marshal(gesture.Event{Kind: gesture.Kind(42)})
	assert.Error(t, err)
}

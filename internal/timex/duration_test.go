package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	var v struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"15s","b":2000000000}`), &v))
	require.Equal(t, 15*time.Second, v.A.Duration)
	require.Equal(t, 2*time.Second, v.B.Duration)
}

func TestDuration_UnmarshalJSON_Rejects(t *testing.T) {
	var d Duration
	require.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	require.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	require.Equal(t, `"1m30s"`, string(b))
}

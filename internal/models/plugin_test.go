package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntSettingAcceptsDecodedNumbers(t *testing.T) {
	cfg := AssignmentPluginConfig{Settings: map[string]interface{}{
		"maxfiles": json.Number("3"),
		"maxbytes": json.Number("2.5e3"),
		"float":    float64(4),
		"broken":   json.Number("many"),
		"text":     "5",
	}}

	require.Equal(t, 3, cfg.IntSetting("maxfiles", 20))
	require.Equal(t, 2500, cfg.IntSetting("maxbytes", 0))
	require.Equal(t, 4, cfg.IntSetting("float", 0))
	require.Equal(t, 20, cfg.IntSetting("broken", 20))
	require.Equal(t, 20, cfg.IntSetting("text", 20))
	require.Equal(t, 1, AssignmentPluginConfig{}.IntSetting("maxfiles", 1))
}

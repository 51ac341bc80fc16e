package weather_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/chronicle/internal/game/weather"
)

func load(t *testing.T, logger *zap.Logger) *weather.Table {
	t.Helper()
	tbl, err := weather.Load(filepath.Join("testdata", "weather.yaml"), logger)
	require.NoError(t, err)
	return tbl
}

func TestStep_ShiftsOnePosition(t *testing.T) {
	tbl := load(t, zap.NewNop())
	assert.Equal(t, "overcast", tbl.Step("forest", "cloudy", 1, ""))
	assert.Equal(t, "clear", tbl.Step("forest", "cloudy", -1, ""))
	assert.Equal(t, "cloudy", tbl.Step("forest", "cloudy", 0, ""))
	assert.Equal(t, "overcast", tbl.Step("forest", "cloudy", 5, ""), "shift is one step at most")
}

func TestStep_ClampsAtEnds(t *testing.T) {
	tbl := load(t, zap.NewNop())
	assert.Equal(t, "storm", tbl.Step("plains", "storm", 1, ""))
	assert.Equal(t, "clear", tbl.Step("plains", "clear", -1, ""))
}

func TestStep_BiomeSpecificList(t *testing.T) {
	tbl := load(t, zap.NewNop())
	assert.Equal(t, "dusty", tbl.Step("desert", "breezy", 1, ""))
	assert.Equal(t, "still", tbl.Step("DESERT", "rain", 1, ""), "state not in list restarts at the first")
}

func TestStep_SetJumpsDirectly(t *testing.T) {
	tbl := load(t, zap.NewNop())
	assert.Equal(t, "storm", tbl.Step("forest", "clear", -1, "storm"))
}

func TestStep_UnknownSetIsLoggedNoop(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tbl := load(t, zap.New(core))
	assert.Equal(t, "clear", tbl.Step("forest", "clear", 0, "blizzard"))
	assert.Equal(t, 1, logs.FilterMessage("ignoring unknown weather state").Len())
}

func TestStep_NoDefaultList(t *testing.T) {
	tbl, err := weather.NewTable(map[string][]string{"swamp": {"fog"}}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "sunny", tbl.Step("desert", "sunny", 1, ""))
	assert.Equal(t, "fog", tbl.Step("swamp", "", 0, ""))
}

func TestNewTable_Rejects(t *testing.T) {
	_, err := weather.NewTable(map[string][]string{"x": {}}, zap.NewNop())
	assert.Error(t, err)
	_, err = weather.NewTable(map[string][]string{"x": {"a", "a"}}, zap.NewNop())
	assert.Error(t, err)
	_, err = weather.Load(filepath.Join("testdata", "missing.yaml"), zap.NewNop())
	assert.Error(t, err)
}

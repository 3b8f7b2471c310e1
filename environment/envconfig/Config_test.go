package envconfig

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NishantPrabhu/RL-Experiments/environment/catch"
	"github.com/NishantPrabhu/RL-Experiments/timestep"
)

func TestCreateEnvBuildsStackedCatch(t *testing.T) {
	config := Config{EnvName: Catch, ClipRewards: true}

	e, err := config.CreateEnv(4, 12)
	require.NoError(t, err)

	want := timestep.NewStack(4, catch.ScreenSize, catch.ScreenSize)
	require.Equal(t, want, e.ObservationStack())

	obs, err := e.Reset()
	require.NoError(t, err)
	require.Len(t, obs, want.Len())
}

func TestCreateEnvRejectsUnknownEnvironment(t *testing.T) {
	config := Config{EnvName: "pong"}

	_, err := config.CreateEnv(4, 12)
	require.Error(t, err)
}

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontierBot/internal/config"
	"frontierBot/internal/logging"
)

func TestBuildRequest(t *testing.T) {
	cfg = config.NewDefaultConfig()
	log = logging.Nop()

	req, err := buildRequest(runCmd, []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), req.Start)
	assert.Equal(t, time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), req.End)
	assert.Equal(t, 10000, req.Samples)
	assert.Equal(t, 0.0175, req.RiskFreeRate)
	require.NotNil(t, req.Progress)
	req.Progress(50, 100)

	require.NoError(t, runCmd.Flags().Set("samples", "500"))
	require.NoError(t, runCmd.Flags().Set("risk-free", "0"))
	require.NoError(t, runCmd.Flags().Set("start", "2015-01-01"))
	t.Cleanup(func() { startDate, samples, riskFree = "", 0, 0 })

	req, err = buildRequest(runCmd, []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, 500, req.Samples)
	assert.Zero(t, req.RiskFreeRate)
	assert.Equal(t, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), req.Start)
}

func TestBuildRequest_BadRange(t *testing.T) {
	cfg = config.NewDefaultConfig()
	log = logging.Nop()
	cfg.Simulation.EndDate = cfg.Simulation.StartDate

	_, err := buildRequest(runCmd, []string{"AAPL", "MSFT"})
	assert.Error(t, err)
}

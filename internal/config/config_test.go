package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/drawpoker/internal/policy"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultFile)
	src := `
agent_name = "jam"

paths {
  table = "/data/hands.json"
  bins  = "/data/bins.json"
}

learner {
  players        = 3
  workers        = 8
  seed           = 1234
  iterations     = 5000
  progress_every = "2s"
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "jam", cfg.AgentName)
	assert.Equal(t, "/data/hands.json", cfg.Paths.Table)
	assert.Equal(t, "/data/bins.json", cfg.Paths.Bins)
	assert.Equal(t, "stats_dump", cfg.Paths.Stats)
	assert.Equal(t, 3, cfg.Learner.Players)
	assert.Equal(t, 8, cfg.Learner.Workers)
	assert.EqualValues(t, 1234, cfg.Learner.Seed)
	assert.Equal(t, 5000, cfg.Learner.Iterations)
	assert.Equal(t, 2*time.Second, cfg.Learner.ProgressEvery)
	assert.Equal(t, policy.DefaultConfig(), cfg.Policy)
}

func TestParsePolicyOverrides(t *testing.T) {
	t.Parallel()
	src := `
policy {
  open_threshold         = 0.3
  force_all_in_threshold = 0.99
  keep_antes             = 2

  curve "fold" {
    shape = "exponential"
    a     = 0
    b     = 1
    c     = -4
  }

  curve "open_check" {
    d = -0.25
  }
}
`
	cfg, err := Parse([]byte(src), "inline.hcl")
	require.NoError(t, err)

	def := policy.DefaultConfig()
	assert.Equal(t, 0.3, cfg.Policy.OpenThreshold)
	assert.Equal(t, 0.99, cfg.Policy.ForceAllInThreshold)
	assert.Equal(t, def.ForceFoldThreshold, cfg.Policy.ForceFoldThreshold)
	assert.Equal(t, 2.0, cfg.Policy.KeepAntes)

	fold := cfg.Policy.CallRaise.Fold
	assert.Equal(t, policy.Exponential, fold.Shape)
	assert.Equal(t, 0.0, fold.A)
	assert.Equal(t, 1.0, fold.B)
	assert.Equal(t, -4.0, fold.C)
	assert.Equal(t, def.CallRaise.Fold.D, fold.D)
	assert.Equal(t, def.CallRaise.Fold.E, fold.E)

	check := cfg.Policy.Open.Check
	assert.Equal(t, policy.Logistic, check.Shape)
	assert.Equal(t, -0.25, check.D)
	assert.Equal(t, def.Open.Check.C, check.C)

	assert.Equal(t, def.CallRaise.Call, cfg.Policy.CallRaise.Call)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `learner {`},
		{"unknown attribute", `colour = "red"`},
		{"wrong type", `learner { players = "two" }`},
		{"bad duration", `learner { progress_every = "soon" }`},
		{"invalid players", `learner { players = 9 }`},
		{"unknown curve", `policy {
  curve "bluff" { a = 1 }
}`},
		{"duplicate curve", `policy {
  curve "call" { a = 1 }
  curve "call" { a = 2 }
}`},
		{"bad shape", `policy {
  curve "call" { shape = "cubic" }
}`},
		{"threshold out of range", `policy { open_threshold = 2 }`},
		{"empty agent name", `agent_name = ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}

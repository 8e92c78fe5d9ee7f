package main

import (
	"bytes"
	"context"
	"go/format"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/drawpoker/internal/bins"
	"github.com/lox/drawpoker/internal/config"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("drawpoker"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestParseDecideCallRaise(t *testing.T) {
	cli, ctx := parse(t, "decide", "call-raise", "AH", "KH", "QH", "JH", "TH", "--maximum-bet", "50", "-o", "3")
	assert.Contains(t, ctx.Command(), "decide call-raise")
	assert.Equal(t, []string{"AH", "KH", "QH", "JH", "TH"}, cli.Decide.CallRaise.Cards)
	assert.Equal(t, 50, cli.Decide.CallRaise.MaximumBet)
	assert.Equal(t, 3, cli.Decide.CallRaise.Opponents)
	assert.Equal(t, 1000, cli.Decide.CallRaise.Chips)
	assert.Nil(t, cli.Decide.CallRaise.Seed)
}

func TestParseLearnOverrides(t *testing.T) {
	cli, ctx := parse(t, "--stats-file", "/tmp/dump", "learn", "-n", "500", "--players", "3")
	assert.Equal(t, "learn", ctx.Command())
	assert.Equal(t, "/tmp/dump", cli.StatsFile)
	require.NotNil(t, cli.Learn.Iterations)
	assert.Equal(t, 500, *cli.Learn.Iterations)
	require.NotNil(t, cli.Learn.Players)
	assert.Equal(t, 3, *cli.Learn.Players)
	assert.Nil(t, cli.Learn.Workers)
}

func TestRankStrategies(t *testing.T) {
	t.Parallel()
	stats := []bins.Stat{
		{Hits: 10, Weighted: 1.0, Unweighted: 0.5},
		{Hits: 10, Weighted: 1.2, Unweighted: 1.0},
		{Hits: 10, Weighted: 0.9, Unweighted: 0.9},
	}
	assert.Equal(t, []int{0, 1, 2}, rankStrategies(stats, false))
	assert.Equal(t, []int{1, 2, 0}, rankStrategies(stats, true))
}

func TestMissingTableHintNamesRealFlag(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Paths.Table = filepath.Join(t.TempDir(), "hands.json")
	e := &env{cfg: cfg, logger: log.NewWithOptions(io.Discard, log.Options{})}

	_, err := e.table(context.Background(), false)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "--build-table")

	cli, _ := parse(t, "--build-table", "bins", "list")
	assert.True(t, cli.BuildTable)
}

func TestSourcesAreFormatted(t *testing.T) {
	t.Parallel()
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, name := range files {
		src, err := os.ReadFile(name)
		require.NoError(t, err)
		formatted, err := format.Source(src)
		require.NoError(t, err, name)
		assert.True(t, bytes.Equal(src, formatted), "%s is not gofmt formatted", name)
	}
}

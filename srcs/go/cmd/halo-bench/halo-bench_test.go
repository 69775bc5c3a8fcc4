package main

import (
	"context"
	"testing"
	"time"

	"github.com/lsds/halo/srcs/go/halo/grid"
	"github.com/lsds/halo/srcs/go/halo/problem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseFlags(t *testing.T) {
	b, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, 4, b.np)
	assert.Equal(t, 4096, b.Rows)
	assert.Equal(t, problem.KernelFivePoint, b.Kernel)
	assert.Equal(t, grid.Balanced.String(), b.Policy)

	b, err = parseFlags([]string{"-kernel", problem.KernelDiffusion, "-alpha", "0.2", "-np", "2", "-rows", "8", "-cols", "4"})
	require.NoError(t, err)
	assert.Equal(t, problem.KernelDiffusion, b.Kernel)
	assert.Equal(t, 0.2, b.Alpha)
	assert.Equal(t, 2, b.np)

	_, err = parseFlags([]string{"-kernel", "nine-point"})
	assert.Error(t, err)
}

func Test_run(t *testing.T) {
	b, err := parseFlags([]string{"-np", "2", "-rows", "8", "-cols", "8", "-steps", "4", "-warmup", "1", "-workers", "1"})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	took, err := b.run(ctx)
	require.NoError(t, err)
	assert.Positive(t, took)
}

package launch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lsds/halo/srcs/go/proc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Local(t *testing.T) {
	dir := t.TempDir()
	ps := []proc.Proc{
		{Name: "ok-0", Prog: "echo", Args: []string{"total", "300000"}, LogDir: dir},
		{Name: "ok-1", Prog: "true", LogDir: dir},
	}
	require.NoError(t, Local(context.Background(), ps, false))
	bs, err := os.ReadFile(filepath.Join(dir, "ok-0.stdout.log"))
	require.NoError(t, err)
	assert.Equal(t, "total 300000\n", string(bs))
}

func Test_Local_failure(t *testing.T) {
	dir := t.TempDir()
	ps := []proc.Proc{
		{Name: "bad", Prog: "false", LogDir: dir},
		{Name: "slow", Prog: "sleep", Args: []string{"30"}, LogDir: dir},
	}
	err := Local(context.Background(), ps, false)
	var fe *FailedError
	if assert.True(t, errors.As(err, &fe)) {
		assert.GreaterOrEqual(t, fe.Failed, 1)
		assert.Equal(t, 2, fe.Total)
	}
}

func Test_sinks(t *testing.T) {
	p := proc.Proc{Name: "a/b", LogDir: "logs"}
	assert.Len(t, sinks(0, p, true), 2)
	assert.Len(t, sinks(0, proc.Proc{Name: "c"}, false), 0)
}

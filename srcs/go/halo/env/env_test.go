package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseConfigFromEnv(t *testing.T) {
	t.Setenv(SelfSpecEnvKey, "127.0.0.1:10001")
	t.Setenv(ParentIDEnvKey, "127.0.0.1:38080")
	t.Setenv(PeerListEnvKey, "127.0.0.1:10000,127.0.0.1:10001")
	t.Setenv(JobTokenEnvKey, "42")
	c, err := ParseConfigFromEnv()
	require.NoError(t, err)
	assert.False(t, c.Single)
	assert.Equal(t, 1, c.Rank())
	assert.Equal(t, uint32(42), c.Token)
	assert.Equal(t, "127.0.0.1:38080", c.Parent.String())
}

func envOf(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func Test_parse_errors(t *testing.T) {
	base := map[string]string{
		SelfSpecEnvKey: "127.0.0.1:10005",
		ParentIDEnvKey: "127.0.0.1:38080",
		PeerListEnvKey: "127.0.0.1:10000,127.0.0.1:10001",
	}
	_, err := parse(envOf(base))
	assert.ErrorContains(t, err, "not in")

	base[SelfSpecEnvKey] = "127.0.0.1:10000"
	base[JobTokenEnvKey] = "-1"
	_, err = parse(envOf(base))
	assert.ErrorContains(t, err, JobTokenEnvKey)

	delete(base, JobTokenEnvKey)
	delete(base, ParentIDEnvKey)
	_, err = parse(envOf(base))
	assert.ErrorContains(t, err, ParentIDEnvKey+" not set")
}

func Test_single(t *testing.T) {
	c, err := parse(envOf(nil))
	require.NoError(t, err)
	assert.True(t, c.Single)
	assert.Equal(t, "127.0.0.1:10000", c.Self.String())
	assert.Equal(t, 0, c.Rank())
}

func Test_SingleMachineEnv(t *testing.T) {
	c, err := SingleMachineEnv(1, 3)
	require.NoError(t, err)
	assert.Len(t, c.InitPeers, 3)
	assert.Equal(t, 1, c.Rank())
}

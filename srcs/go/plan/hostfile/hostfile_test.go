package hostfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse(t *testing.T) {
	text := `
	# ...
	127.0.0.1 slots=4 # ...
	# ...
   	10.0.0.2 slots=8 public_addr=node-2 # ...
	`
	hl, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, hl, 2)
	assert.Equal(t, 4, hl[0].Slots)
	assert.Equal(t, "127.0.0.1", hl[0].PublicAddr)
	assert.Equal(t, 8, hl[1].Slots)
	assert.Equal(t, "node-2", hl[1].PublicAddr)
}

func Test_Parse_invalid(t *testing.T) {
	_, err := Parse("127.0.0.1 cores=4")
	assert.Error(t, err)
}

func Test_ParseFile(t *testing.T) {
	_, err := ParseFile("/nonexistent/hostfile")
	assert.Error(t, err)
	_, err = Parse("not-an-ip slots=1")
	assert.Error(t, err)
}

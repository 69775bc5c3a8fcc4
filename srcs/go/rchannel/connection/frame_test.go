package connection

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lsds/halo/srcs/go/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_hello(t *testing.T) {
	h := hello{Type: ConnHalo, Src: plan.PeerID{IPv4: 0x7f080808, Port: 9999}}
	b := &bytes.Buffer{}
	require.NoError(t, h.writeTo(b))
	assert.Equal(t, helloSize, b.Len())
	var got hello
	require.NoError(t, got.readFrom(b))
	assert.Equal(t, h, got)
}

func Test_ConnType(t *testing.T) {
	assert.Equal(t, "Collective", ConnCollective.String())
	assert.Equal(t, "ConnType(9)", ConnType(9).String())
}

func Test_frame(t *testing.T) {
	b := &bytes.Buffer{}
	payload := strings.Repeat(`01234567`, 128*1024*16)
	m := Message{Length: uint32(len(payload)), Data: []byte(payload)}
	require.NoError(t, writeFrame(b, "halo:0", 3, m))
	name, got, err := readFrame(b)
	require.NoError(t, err)
	assert.Equal(t, "halo:0", name)
	assert.Equal(t, uint32(3), got.Flags)
	assert.Equal(t, payload, string(got.Data))
	PutBuf(got.Data)
}

func Test_readFrameInto(t *testing.T) {
	b := &bytes.Buffer{}
	require.NoError(t, writeFrame(b, "halo:0", NoFlag, Message{Length: 4, Data: []byte("abcd")}))
	short := Message{Length: 3, Data: make([]byte, 3)}
	assert.ErrorIs(t, readFrameInto(b, "halo:0", &short), errUnexpectedLength)

	b.Reset()
	require.NoError(t, writeFrame(b, "halo:0", NoFlag, Message{Length: 4, Data: []byte("abcd")}))
	m := Message{Length: 4, Data: make([]byte, 4)}
	assert.ErrorIs(t, readFrameInto(bytes.NewReader(b.Bytes()), "halo:1", &m), errUnexpectedName)
	require.NoError(t, readFrameInto(b, "halo:0", &m))
	assert.Equal(t, "abcd", string(m.Data))
}

func Test_GetBuf(t *testing.T) {
	b := GetBuf(1000)
	assert.Len(t, b, 1000)
	assert.Equal(t, 1024, cap(b))
	PutBuf(b)
	assert.Len(t, GetBuf(1024), 1024)
	assert.Len(t, GetBuf(8), 8)
	assert.Equal(t, 0, sizeClass(minPooled))
}

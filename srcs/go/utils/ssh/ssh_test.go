package ssh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_resolve(t *testing.T) {
	r := Target{User: "alice", Host: "10.0.0.2"}.resolve()
	assert.Equal(t, "alice@10.0.0.2:22", r.String())

	r = Target{User: "bob", Host: "10.0.0.3:2222"}.resolve()
	assert.Equal(t, "10.0.0.3:2222", r.Host)

	r = Target{Host: "10.0.0.4"}.resolve()
	assert.NotEmpty(t, r.User)
}

package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_apply(t *testing.T) {
	got := Envs{"X": "2"}.apply([]string{`X=1`, `Y=Z=2`, `broken`})
	assert.Equal(t, []string{"X=2", "Y=Z=2"}, got)
}

func Test_Script(t *testing.T) {
	p := Proc{
		Prog: "halo-stencil",
		Args: []string{"-rows", "8"},
		Envs: Envs{"HALO_SELF_SPEC": "10.0.0.1:10000", "A": "1"},
	}
	assert.Equal(t, `env A="1" HALO_SELF_SPEC="10.0.0.1:10000" halo-stencil "-rows" "8"`, p.Script())
	p.Dir = "/opt/halo"
	assert.Equal(t, `cd "/opt/halo" && env A="1" HALO_SELF_SPEC="10.0.0.1:10000" halo-stencil "-rows" "8"`, p.Script())
}

func Test_Cmd(t *testing.T) {
	t.Setenv("HALO_TEST_INHERITED", "yes")
	cmd := Proc{Prog: "true", Envs: Envs{"HALO_TEST_SET": "1"}, Dir: "/tmp"}.Cmd()
	assert.Contains(t, cmd.Env, "HALO_TEST_INHERITED=yes")
	assert.Contains(t, cmd.Env, "HALO_TEST_SET=1")
	assert.Equal(t, "/tmp", cmd.Dir)
}

func Test_Merge(t *testing.T) {
	g := Merge(Envs{"A": "1", "B": "2"}, Envs{"B": "3"})
	assert.Equal(t, Envs{"A": "1", "B": "3"}, g)
	g.AddIfMissing("A", "9")
	g.AddIfMissing("C", "4")
	assert.Equal(t, "1", g["A"])
	assert.Equal(t, "4", g["C"])
	assert.Equal(t, Envs{"C": "1"}, Merge(nil, Envs{"C": "1"}))
}

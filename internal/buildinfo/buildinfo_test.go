package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortPrefersVersion(t *testing.T) {
	v, c := Version, Commit
	t.Cleanup(func() { Version, Commit = v, c })

	Version, Commit = "v1.2.3", "abc"
	assert.Equal(t, "v1.2.3", Short())

	Version = "dev"
	assert.Equal(t, "abc", Short())
	assert.Contains(t, String(), "kbshell abc")
}

package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence(t *testing.T) {
	p := NewPersistence("/tmp/test")
	assert.Equal(t, "/tmp/test", p.root)

	p = NewPersistence("file:///tmp/test")
	assert.Equal(t, "/tmp/test", p.root)
}

func TestPersistence_Close(t *testing.T) {
	p := NewPersistence("./test-data")
	assert.NoError(t, p.Close(t.Context()))
}

func TestPersistence_HealthCheck(t *testing.T) {
	p := NewPersistence(t.TempDir())
	require.NoError(t, p.HealthCheck(t.Context()))

	p = NewPersistence("/does/not/exist/talentflow")
	assert.Error(t, p.HealthCheck(t.Context()))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, validateID("graph-1"))
	assert.Error(t, validateID(""))
	assert.Error(t, validateID("../etc/passwd"))
	assert.Error(t, validateID("a/b"))
	assert.Error(t, validateID(`a\b`))
}

package persistence_test

import (
	"errors"
	"testing"

	"github.com/dukex/talentflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("not found survives wrapping", func(t *testing.T) {
		err := persistence.NewGraphError("LoadGraph", "graph-123", persistence.ErrGraphNotFound)

		assert.True(t, persistence.IsGraphNotFound(err))
		assert.Contains(t, err.Error(), "LoadGraph")
		assert.Contains(t, err.Error(), "graph-123")
		assert.False(t, persistence.IsConflict(err))
	})

	t.Run("conflict error matches sentinel", func(t *testing.T) {
		var err error = persistence.NewGraphError("SaveGraph", "graph-1",
			&persistence.ConflictError{GraphID: "graph-1", Expected: 2, Actual: 3})

		assert.True(t, persistence.IsConflict(err))

		var conflict *persistence.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, int64(2), conflict.Expected)
		assert.Equal(t, int64(3), conflict.Actual)
		assert.Contains(t, err.Error(), "expected version 2, stored version is 3")
	})
}

package persistence_test

import (
	"testing"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/persistence"
	"github.com/dukex/talentflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMatchesModel(t *testing.T) {
	t.Parallel()

	leadGraph := testutil.NewGraph(testutil.WithNodes(testutil.ModelTrigger("t", models.NodeTypeModelCreated, "lead")))
	hookGraph := testutil.NewGraph(testutil.WithNodes(testutil.WebhookTrigger("t", "/ats", nil)))
	emptyGraph := testutil.NewGraph()

	assert.True(t, persistence.MatchesModel(leadGraph, "lead"))
	assert.True(t, persistence.MatchesModel(leadGraph, ""))
	assert.False(t, persistence.MatchesModel(leadGraph, "company"))
	assert.False(t, persistence.MatchesModel(hookGraph, "lead"))
	assert.True(t, persistence.MatchesModel(hookGraph, ""))
	assert.False(t, persistence.MatchesModel(emptyGraph, "lead"))
}

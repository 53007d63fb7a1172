package roles

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefs() []Definition {
	return []Definition{
		{ID: "project_manager", Title: "Project Manager", AssistantID: "asst-pm", Criteria: []string{"Planning"}},
		{ID: "team_lead", Title: "Team Lead"},
		{ID: "sales_manager", Title: "Sales Manager", AssistantID: " asst-sales "},
	}
}

func TestListHidesUnconfiguredRoles(t *testing.T) {
	r, err := NewRegistry(testDefs())
	require.NoError(t, err)

	got := r.List()
	require.Len(t, got, 2)
	assert.Equal(t, "project_manager", got[0].ID)
	assert.Equal(t, "sales_manager", got[1].ID)
	assert.True(t, r.Configured())
}

func TestResolveErrors(t *testing.T) {
	r, err := NewRegistry(testDefs())
	require.NoError(t, err)

	_, err = r.Resolve("nope")
	assert.True(t, errors.Is(err, ErrUnknownRole))

	_, err = r.Resolve("team_lead")
	assert.True(t, errors.Is(err, ErrRoleUnavailable))

	d, err := r.Resolve("sales_manager")
	require.NoError(t, err)
	assert.Equal(t, "asst-sales", d.AssistantID)
}

func TestResolveReturnsCopyOfCriteria(t *testing.T) {
	r, err := NewRegistry(testDefs())
	require.NoError(t, err)

	d, err := r.Resolve("project_manager")
	require.NoError(t, err)
	d.Criteria[0] = "mutated"

	again, err := r.Resolve("project_manager")
	require.NoError(t, err)
	assert.Equal(t, "Planning", again.Criteria[0])
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]Definition{{ID: "a"}, {ID: "a"}})
	assert.Error(t, err)

	_, err = NewRegistry([]Definition{{ID: " "}})
	assert.Error(t, err)
}

func TestTitleFallsBackToKey(t *testing.T) {
	r, err := NewRegistry(testDefs())
	require.NoError(t, err)
	assert.Equal(t, "Team Lead", r.Title("team_lead"))
	assert.Equal(t, "designer", r.Title("designer"))
}

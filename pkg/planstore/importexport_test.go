package planstore_test

import (
	"testing"

	"github.com/agentkit/plankernel/pkg/planstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportJSONAcceptsWellFormedPlan(t *testing.T) {
	doc := `{
		"id": "plan_abc", "title": "Ship it", "goal": "Ship it", "mode": "full",
		"version": 1, "steps": [{"id": "s1", "title": "write code", "status": "pending"}]
	}`
	p, err := planstore.ImportJSON([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "plan_abc", p.ID)
	assert.Len(t, p.Steps, 1)
}

func TestImportJSONRejectsMissingRequiredFields(t *testing.T) {
	_, err := planstore.ImportJSON([]byte(`{"title": "no id or steps"}`))
	require.Error(t, err)
}

func TestImportJSONRejectsUnknownStatus(t *testing.T) {
	doc := `{
		"id": "plan_abc", "title": "t", "goal": "g", "version": 1,
		"steps": [{"id": "s1", "title": "x", "status": "not_a_status"}]
	}`
	_, err := planstore.ImportJSON([]byte(doc))
	require.Error(t, err)
}

func TestExportJSONRoundTripsThroughImport(t *testing.T) {
	s := planstore.NewStore()
	p, err := s.CreatePlan("goal", "title", "", planstore.ModeFull)
	require.NoError(t, err)
	p, _, err = s.Add(p.ID, p.Version, "first step", planstore.AddFields{}, "")
	require.NoError(t, err)

	data, err := planstore.ExportJSON(p)
	require.NoError(t, err)

	reimported, err := planstore.ImportJSON(data)
	require.NoError(t, err)
	assert.Equal(t, p.ID, reimported.ID)
	assert.Equal(t, p.Steps[0].ID, reimported.Steps[0].ID)
}

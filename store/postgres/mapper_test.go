package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"teamdesk/models"
)

func TestMapProjectDefaults(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := mapProject(projectRow{ID: "p1", TeamID: "t1", Name: "Roadmap", CreatedAt: created})

	require.Equal(t, models.Project{
		ID:        "p1",
		TeamID:    "t1",
		Name:      "Roadmap",
		Status:    models.ProjectPlanned,
		CreatedAt: created,
	}, p)
}

func TestMapViewDefaultsFilters(t *testing.T) {
	v := mapView(viewRow{ID: "v1", WorkspaceID: "w1", Name: "Mine"})
	require.JSONEq(t, `{}`, string(v.Filters))
	require.Nil(t, v.TeamID)

	filters := `{"assignee":"me"}`
	v = mapView(viewRow{ID: "v1", WorkspaceID: "w1", TeamID: ptr("t1"), Filters: &filters})
	require.JSONEq(t, filters, string(v.Filters))
	require.Equal(t, "t1", *v.TeamID)
}

func TestMapIssueAndStatusUpdateDefaults(t *testing.T) {
	i := mapIssue(issueRow{ID: "i1", Description: ptr("steps")})
	require.Equal(t, models.IssueBacklog, i.Status)
	require.Equal(t, "steps", i.Description)

	empty := ""
	u := mapStatusUpdate(statusUpdateRow{ID: "u1", Health: &empty})
	require.Equal(t, models.HealthOnTrack, u.Health)
}

func TestMapAllKeepsOrder(t *testing.T) {
	rows := []roleRow{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	roles := mapAll(rows, mapRole)
	require.Equal(t, []string{"a", "b", "c"}, []string{roles[0].ID, roles[1].ID, roles[2].ID})

	require.NotNil(t, mapAll([]roleRow(nil), mapRole))
}

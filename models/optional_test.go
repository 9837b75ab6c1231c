package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssuePatchDistinguishesNullFromAbsent(t *testing.T) {
	var patch IssuePatch
	require.NoError(t, json.Unmarshal([]byte(`{"assigneeId":null,"title":"New"}`), &patch))
	require.True(t, patch.AssigneeID.Set)
	require.Nil(t, patch.AssigneeID.Value)
	require.False(t, patch.ProjectID.Set)

	assignee, project := "u1", "p1"
	issue := Issue{AssigneeID: &assignee, ProjectID: &project}
	patch.Apply(&issue)
	require.Equal(t, "New", issue.Title)
	require.Nil(t, issue.AssigneeID)
	require.Equal(t, "p1", *issue.ProjectID)
}

func TestOptionalDecodesValues(t *testing.T) {
	var patch ProjectPatch
	require.NoError(t, json.Unmarshal([]byte(`{"leadId":"u2","targetDate":"2025-03-01T00:00:00Z"}`), &patch))
	require.True(t, patch.LeadID.Set)
	require.Equal(t, "u2", *patch.LeadID.Value)
	require.Equal(t, 2025, patch.TargetDate.Value.Year())
	require.False(t, patch.StartDate.Set)

	require.Error(t, json.Unmarshal([]byte(`{"targetDate":"soon"}`), &patch))

	raw, err := json.Marshal(Null[string]())
	require.NoError(t, err)
	require.Equal(t, "null", string(raw))
	raw, err = json.Marshal(Some("u3"))
	require.NoError(t, err)
	require.Equal(t, `"u3"`, string(raw))
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhub/compliance-management-api/internal/dashboard/model"
	"github.com/complyhub/compliance-management-api/internal/schema"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSchemaValidate_ReportsEmptyCheckbox(t *testing.T) {
	path := writeFile(t, "form.json", `{"title":"T","fields":[{"id":"f1","type":"checkbox","label":"Pick","options":[]}]}`)

	out, err := run(t, "schema", "validate", path)

	require.Error(t, err)
	assert.Contains(t, out, "fields[0]")
}

func TestSchemaValidate_ValidChecklist(t *testing.T) {
	path := writeFile(t, "checklist.json", `{"title":"C","items":[{"id":"i1","type":"yesno","name":"Backups tested?"}]}`)

	out, err := run(t, "schema", "validate", "--kind", "checklist", path)

	require.NoError(t, err)
	assert.Contains(t, out, ": ok")
}

func TestSchemaNormalize_LegacyChecklist(t *testing.T) {
	path := writeFile(t, "legacy.json", `{"title":"C","items":[{"id":"i1","type":"yesno","name":"A"},{"id":"i2","type":"document","name":"B"}]}`)

	out, err := run(t, "schema", "normalize", path)

	require.NoError(t, err)
	var s schema.ChecklistSchema
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	require.Len(t, s.Sections, 1)
	assert.Equal(t, "General", s.Sections[0].Name)
	require.Len(t, s.Sections[0].Items, 2)
	assert.Equal(t, "i1", s.Sections[0].Items[0].ID)
	assert.Equal(t, "i2", s.Sections[0].Items[1].ID)
}

func TestSchemaNewForm(t *testing.T) {
	out, err := run(t, "schema", "new-form", "--title", "Access review",
		"--field", "radio:Is MFA enforced?*:Yes,No", "--field", "email:Owner")

	require.NoError(t, err)
	var s schema.FormSchema
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "Access review", s.Title)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, schema.FieldTypeRadio, s.Fields[0].Type)
	assert.True(t, s.Fields[0].Required)
	assert.Equal(t, []string{"Yes", "No"}, s.Fields[0].Options)
	assert.Equal(t, "Owner", s.Fields[1].Label)
}

func TestSchemaNewForm_BadFieldSpec(t *testing.T) {
	_, err := run(t, "schema", "new-form", "--title", "T", "--field", "slider:Level")
	assert.Error(t, err)
}

func TestDashboardSummary(t *testing.T) {
	path := writeFile(t, "data.json", `{
	  "audits": [
	    {"id":"a1","compliance_id":"c-1","status":"completed","result":"pass","percentage":90,"created_at":"2026-05-01T00:00:00Z"},
	    {"id":"a2","compliance_id":"c-1","status":"completed","result":"failed","percentage":40,"created_at":"2026-05-01T00:00:00Z"},
	    {"id":"a3","compliance_id":"c-1","status":"completed","result":"pass","percentage":70,"created_at":"2026-05-01T00:00:00Z"}
	  ],
	  "frameworks": [{"id":"c-1","name":"ISO"}]
	}`)

	out, err := run(t, "dashboard", "summary", "--at", "2026-05-02T00:00:00Z", path)

	require.NoError(t, err)
	var summary model.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 66.67, summary.AverageScore)
	assert.Equal(t, 66.67, summary.ComplianceRate)
	require.Len(t, summary.Frameworks, 1)
	assert.Equal(t, 100.0, summary.Frameworks[0].CompletionRate)
}

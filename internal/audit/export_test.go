package audit

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/complyhub/compliance-management-api/internal/audit/model"
	"github.com/complyhub/compliance-management-api/internal/system/constants"
)

func exportSample() []model.Audit {
	return []model.Audit{
		{ID: "a-1", FormTitle: "<script>alert(1)</script>", FrameworkName: "ISO 27001", Status: "completed",
			Result: strPtr("pass"), Percentage: floatPtr(90), CreatedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestRender_HTMLEscapes(t *testing.T) {
	export, err := render(exportSample(), FormatHTML, fixedNow)
	require.NoError(t, err)

	body := string(export.Body)
	assert.Equal(t, constants.ContentTypeHTML, export.ContentType)
	assert.Contains(t, body, "<h1>Audit Report</h1>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.False(t, strings.Contains(body, "<script>alert"))
}

func TestRender_XLSX(t *testing.T) {
	export, err := render(exportSample(), FormatXLSX, fixedNow)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(export.Body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "ISO 27001", rows[1][2])
	assert.Equal(t, "90.00", rows[1][6])
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := render(nil, "pdf", fixedNow)
	assert.Error(t, err)
}

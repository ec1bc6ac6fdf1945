package audit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/complyhub/compliance-management-api/internal/audit/model"
	"github.com/complyhub/compliance-management-api/internal/system/constants"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatHTML = "html"
	FormatXLSX = "xlsx"
)

// Export is a rendered audit report.
type Export struct {
	FileName    string
	ContentType string
	Body        []byte
}

var exportHeader = []string{
	"Audit ID", "Form", "Framework", "User", "Status", "Result", "Score (%)",
	"Verification", "Corrective Action", "Created At",
}

const xlsxSheet = "Audits"

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Audit Report</title>
<style>
body { font-family: Arial, sans-serif; margin: 24px; }
table { border-collapse: collapse; width: 100%; font-size: 12px; }
th, td { border: 1px solid #ccc; padding: 6px; text-align: left; }
th { background: #f2f2f2; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>Audit Report</h1>
<p>Generated {{.GeneratedAt}} &middot; {{len .Rows}} audits</p>
<table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

// render produces the report in format. Unknown formats return an error.
func render(audits []model.Audit, format string, now time.Time) (*Export, error) {
	rows := make([][]string, 0, len(audits))
	for _, a := range audits {
		rows = append(rows, exportRow(a))
	}
	stamp := now.Format("20060102-150405")

	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(exportHeader); err != nil {
			return nil, err
		}
		if err := w.WriteAll(rows); err != nil {
			return nil, err
		}
		return &Export{FileName: "audits-" + stamp + ".csv", ContentType: constants.ContentTypeCSV, Body: buf.Bytes()}, nil

	case FormatHTML:
		var buf bytes.Buffer
		err := reportTemplate.Execute(&buf, struct {
			GeneratedAt string
			Header      []string
			Rows        [][]string
		}{now.Format(time.RFC1123), exportHeader, rows})
		if err != nil {
			return nil, err
		}
		return &Export{FileName: "audits-" + stamp + ".html", ContentType: constants.ContentTypeHTML, Body: buf.Bytes()}, nil

	case FormatXLSX:
		body, err := renderXLSX(rows)
		if err != nil {
			return nil, err
		}
		return &Export{FileName: "audits-" + stamp + ".xlsx", ContentType: constants.ContentTypeXLSX, Body: body}, nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

func renderXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportHeader))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", lastCol+"1", style); err != nil {
		return nil, err
	}

	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportRow(a model.Audit) []string {
	score := ""
	if a.Percentage != nil {
		score = strconv.FormatFloat(*a.Percentage, 'f', 2, 64)
	}
	return []string{
		a.ID,
		a.FormTitle,
		a.FrameworkName,
		a.UserEmail,
		a.Status,
		deref(a.Result),
		score,
		deref(a.VerificationStatus),
		deref(a.CorrectiveAction),
		a.CreatedAt.Format(time.RFC3339),
	}
}

// Package report renders pre-aggregated KPI report payloads to CSV or HTML and
// dispatches them through a pluggable email transport.
package report

import (
	"html/template"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stadiumfit/scorecard/pkg/entity"
)

type actionRow struct {
	ActionID string
	Count    int
}

type userRow struct {
	UserID  string
	Entries int
	Points  int
}

func sortedActionRows(breakdown map[string]int) []actionRow {
	rows := make([]actionRow, 0, len(breakdown))
	for id, count := range breakdown {
		rows = append(rows, actionRow{ActionID: id, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].ActionID < rows[j].ActionID
	})
	return rows
}

func sortedUserRows(breakdown map[string]entity.UserReportStats) []userRow {
	rows := make([]userRow, 0, len(breakdown))
	for id, stats := range breakdown {
		rows = append(rows, userRow{UserID: id, Entries: stats.Entries, Points: stats.Points})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].UserID < rows[j].UserID
	})
	return rows
}

// RenderCSV produces the line-oriented report text: header, summary, action
// breakdown (count desc), user performance (points desc), detailed entries.
func RenderCSV(data *entity.ReportData, generatedAt time.Time) string {
	var lines []string

	lines = append(lines, "KPI Performance Report")
	lines = append(lines, "Generated: "+generatedAt.Format(time.RFC3339))
	lines = append(lines, "Date Range: "+data.DateRange)
	lines = append(lines, "")

	lines = append(lines, "SUMMARY")
	lines = append(lines, "Total Actions,"+strconv.Itoa(data.TotalEntries))
	lines = append(lines, "Total Points,"+strconv.Itoa(data.TotalPoints))
	lines = append(lines, "Active Users,"+strconv.Itoa(len(data.UserBreakdown)))
	lines = append(lines, "")

	lines = append(lines, "ACTION BREAKDOWN")
	lines = append(lines, "Action ID,Count")
	for _, row := range sortedActionRows(data.ActionBreakdown) {
		lines = append(lines, row.ActionID+","+strconv.Itoa(row.Count))
	}
	lines = append(lines, "")

	lines = append(lines, "USER PERFORMANCE")
	lines = append(lines, "User ID,Actions,Points")
	for _, row := range sortedUserRows(data.UserBreakdown) {
		lines = append(lines, row.UserID+","+strconv.Itoa(row.Entries)+","+strconv.Itoa(row.Points))
	}
	lines = append(lines, "")

	lines = append(lines, "DETAILED ENTRIES")
	lines = append(lines, "Date,User ID,Action ID,Notes")
	for _, entry := range data.FilteredEntries {
		// Commas in notes become semicolons so the line stays parseable
		notes := strings.ReplaceAll(entry.Notes, ",", ";")
		lines = append(lines, entry.Date+","+entry.UserID+","+entry.ActionID+",\""+notes+"\"")
	}

	return strings.Join(lines, "\n")
}

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>KPI Performance Report</title></head>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h1>KPI Performance Report</h1>
  <p>Generated: {{.Generated}}<br>Date Range: {{.Data.DateRange}}</p>
  <h2>Summary</h2>
  <table>
    <tr><td>Total Actions</td><td align="right">{{.Data.TotalEntries}}</td></tr>
    <tr><td>Total Points</td><td align="right">{{.Data.TotalPoints}}</td></tr>
    <tr><td>Active Users</td><td align="right">{{.ActiveUsers}}</td></tr>
  </table>
  <h2>Action Breakdown</h2>
  <table border="0" cellpadding="8">
    <tr><th align="left">Action</th><th align="right">Count</th></tr>
    {{range .ActionRows}}<tr><td>{{.ActionID}}</td><td align="right">{{.Count}}</td></tr>
    {{end}}
  </table>
  <h2>User Performance</h2>
  <table border="0" cellpadding="8">
    <tr><th align="left">User</th><th align="right">Actions</th><th align="right">Points</th></tr>
    {{range .UserRows}}<tr><td>{{.UserID}}</td><td align="right">{{.Entries}}</td><td align="right">{{.Points}}</td></tr>
    {{end}}
  </table>
  <h2>Detailed Entries</h2>
  <table border="0" cellpadding="8">
    <tr><th align="left">Date</th><th align="left">User</th><th align="left">Action</th><th align="left">Notes</th></tr>
    {{range .Data.FilteredEntries}}<tr><td>{{.Date}}</td><td>{{.UserID}}</td><td>{{.ActionID}}</td><td>{{.Notes}}</td></tr>
    {{end}}
  </table>
</body>
</html>`))

// RenderHTML produces the tabular HTML body used for the pdf format.
func RenderHTML(data *entity.ReportData, generatedAt time.Time) (string, error) {
	var sb strings.Builder
	err := htmlReport.Execute(&sb, struct {
		Generated   string
		Data        *entity.ReportData
		ActiveUsers int
		ActionRows  []actionRow
		UserRows    []userRow
	}{
		Generated:   generatedAt.Format(time.RFC3339),
		Data:        data,
		ActiveUsers: len(data.UserBreakdown),
		ActionRows:  sortedActionRows(data.ActionBreakdown),
		UserRows:    sortedUserRows(data.UserBreakdown),
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

package report

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/jonesrussell/tenderscan/internal/domain"
)

const digestTemplate = `<html>
<head>
<style>
  body { font-family: Arial, sans-serif; }
  h1 { color: #2c3e50; }
  h2 { color: #34495e; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
  th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
  th { background-color: #3498db; color: white; }
  tr:nth-child(even) { background-color: #f2f2f2; }
  .high { color: #e74c3c; font-weight: bold; }
  .medium { color: #f39c12; font-weight: bold; }
</style>
</head>
<body>
<h1>Daily Procurement Intelligence Report</h1>
<p>Generated: {{.GeneratedAt.Format "2006-01-02 15:04"}}</p>

<h2>Summary</h2>
<ul>
  <li>New Tenders Today: {{len .NewToday}}</li>
  <li>Closing Soon (Next 3 Days): {{len .ClosingSoon}}</li>
  <li>High Priority Opportunities: {{len .HighPriority}}</li>
</ul>

<h2>New Tenders Posted Today</h2>
{{template "table" .NewToday}}

<h2>Tenders Closing Soon</h2>
{{template "table" .ClosingSoon}}

<h2>High Priority Opportunities</h2>
{{template "table" .HighPriority}}

<p><em>This is an automated report from the procurement scanner.</em></p>
</body>
</html>

{{define "table"}}
{{if not .}}<p>No tenders in this category.</p>{{else}}
<table>
<tr>
  <th>Tender ID</th><th>Title</th><th>Organization</th><th>Portal</th>
  <th>Value</th><th>Closing Date</th><th>Priority</th><th>Matching Courses</th>
</tr>
{{range .}}
<tr>
  <td>{{.TenderID}}</td>
  <td><a href="{{.URL}}">{{.Title}}</a></td>
  <td>{{.Organization}}</td>
  <td>{{.Portal}}</td>
  <td>{{money .Value}}</td>
  <td>{{closing .ClosingDate}}</td>
  <td class="{{.Priority}}">{{upper .Priority}}</td>
  <td>{{courses .MatchingCourses}}</td>
</tr>
{{end}}
</table>
{{end}}
{{end}}`

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"money": formatMoney,
	"closing": func(t *time.Time) string {
		if t == nil {
			return "N/A"
		}
		return t.Format("2006-01-02")
	},
	"upper": func(p domain.Priority) string {
		return strings.ToUpper(string(p))
	},
	"courses": func(list domain.StringList) string {
		if len(list) > 2 {
			list = list[:2]
		}
		return strings.Join(list, ", ")
	},
}).Parse(digestTemplate))

// formatMoney renders a dollar amount with thousands separators and no
// cents, the way the digest tables show values.
func formatMoney(v float64) string {
	whole := strconv.FormatFloat(v, 'f', 0, 64)

	neg := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := "$" + b.String()
	if neg {
		out = "-" + out
	}
	return out
}

func renderHTML(d *Digest) ([]byte, error) {
	var buf bytes.Buffer
	if err := digestTmpl.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

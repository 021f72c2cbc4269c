package export

import (
	"bytes"
	"html/template"

	"github.com/turtacn/competiscope/pkg/errors"
)

// htmlTmpl is a self-contained, print-friendly document.  Subject colors
// come from the comparison palette so the export matches the dashboard.
const htmlTmpl = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Competitive Comparison Export</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; color: #1f2937; margin: 40px; }
  h1 { font-size: 22px; margin-bottom: 4px; }
  .meta { color: #6b7280; font-size: 13px; margin-bottom: 28px; }
  h2 { font-size: 16px; margin: 28px 0 8px; border-bottom: 2px solid #e5e7eb; padding-bottom: 4px; }
  table { border-collapse: collapse; width: 100%; font-size: 13px; }
  th { text-align: left; background: #f9fafb; }
  th, td { border: 1px solid #e5e7eb; padding: 6px 10px; }
  td.num { text-align: right; font-variant-numeric: tabular-nums; }
  .swatch { display: inline-block; width: 10px; height: 10px; border-radius: 2px; margin-right: 6px; }
  @media print { body { margin: 12mm; } h2 { break-after: avoid; } table { break-inside: avoid; } }
</style>
</head>
<body>
<h1>Competitive Comparison Export</h1>
<p class="meta">
  Period: {{.Period}} &middot;
  Range: {{.DateFrom.Format "2006-01-02"}} to {{.DateTo.Format "2006-01-02"}} &middot;
  Generated: {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}
</p>

<h2>Company Overview</h2>
<table>
  <tr><th>Subject</th><th>Impact Score</th><th>Trend Delta</th></tr>
  {{range .Rows}}<tr>
    <td><span class="swatch" style="background:{{.Subject.Color}}"></span>{{.Subject.Label}}</td>
    <td class="num">{{printf "%.2f" .Metrics.ImpactScore}}</td>
    <td class="num">{{printf "%.2f" .Metrics.TrendDelta}}</td>
  </tr>{{end}}
</table>

<h2>Business Metrics</h2>
<table>
  <tr><th>Subject</th><th>Pricing Changes</th><th>Funding Events</th></tr>
  {{range .Rows}}<tr>
    <td><span class="swatch" style="background:{{.Subject.Color}}"></span>{{.Subject.Label}}</td>
    <td class="num">{{.Metrics.PricingChanges}}</td>
    <td class="num">{{.Metrics.FundingEvents}}</td>
  </tr>{{end}}
</table>

<h2>Innovation Metrics</h2>
<table>
  <tr><th>Subject</th><th>Innovation Velocity</th><th>Feature Updates</th></tr>
  {{range .Rows}}<tr>
    <td><span class="swatch" style="background:{{.Subject.Color}}"></span>{{.Subject.Label}}</td>
    <td class="num">{{printf "%.2f" .Metrics.InnovationVelocity}}</td>
    <td class="num">{{.Metrics.FeatureUpdates}}</td>
  </tr>{{end}}
</table>

<h2>News Sentiment</h2>
<table>
  <tr><th>Subject</th><th>Positive</th><th>Negative</th><th>Neutral</th><th>Average Sentiment</th></tr>
  {{range .Rows}}<tr>
    <td><span class="swatch" style="background:{{.Subject.Color}}"></span>{{.Subject.Label}}</td>
    <td class="num">{{.Metrics.NewsPositive}}</td>
    <td class="num">{{.Metrics.NewsNegative}}</td>
    <td class="num">{{.Metrics.NewsNeutral}}</td>
    <td class="num">{{printf "%.2f" .Metrics.NewsAverageSentiment}}</td>
  </tr>{{end}}
</table>

<h2>News Volume Comparison</h2>
<table>
  <tr><th>Subject</th><th>Total News</th></tr>
  {{range .Rows}}<tr>
    <td><span class="swatch" style="background:{{.Subject.Color}}"></span>{{.Subject.Label}}</td>
    <td class="num">{{.Metrics.NewsTotal}}</td>
  </tr>{{end}}
</table>

{{if .NotificationSettings}}
<h2>Notification Settings</h2>
<table>
  <tr><th>Digest Enabled</th><th>Frequency</th><th>Channels</th></tr>
  <tr>
    <td>{{.NotificationSettings.DigestEnabled}}</td>
    <td>{{.NotificationSettings.DigestFrequency}}</td>
    <td>{{range $i, $c := .NotificationSettings.Channels}}{{if $i}}, {{end}}{{$c}}{{end}}</td>
  </tr>
</table>
{{end}}
</body>
</html>
`

var htmlTemplate = template.Must(template.New("export").Parse(htmlTmpl))

// RenderHTML renders the payload as a standalone HTML report.
func RenderHTML(p *Payload) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, p); err != nil {
		return nil, errors.Wrap(err, errors.CodeExportRenderFailed, "failed to render HTML export")
	}
	return buf.Bytes(), nil
}

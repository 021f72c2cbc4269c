package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/turtacn/competiscope/pkg/errors"
)

// csvSection is one titled table in the CSV document.
type csvSection struct {
	title  string
	header []string
	row    func(r SubjectRow) []string
}

// csvSections fixes the document layout: the overview first, then one
// section per metric category, then the news-volume comparison.  Every
// section lists one row per subject, in comparison order, so columns across
// sections stay aligned.
var csvSections = []csvSection{
	{
		title:  "Company Overview",
		header: []string{"Subject", "Impact Score", "Trend Delta"},
		row: func(r SubjectRow) []string {
			return []string{
				r.Subject.Label,
				f2(r.Metrics.ImpactScore),
				f2(r.Metrics.TrendDelta),
			}
		},
	},
	{
		title:  "Business Metrics",
		header: []string{"Subject", "Pricing Changes", "Funding Events"},
		row: func(r SubjectRow) []string {
			return []string{
				r.Subject.Label,
				strconv.Itoa(r.Metrics.PricingChanges),
				strconv.Itoa(r.Metrics.FundingEvents),
			}
		},
	},
	{
		title:  "Innovation Metrics",
		header: []string{"Subject", "Innovation Velocity", "Feature Updates"},
		row: func(r SubjectRow) []string {
			return []string{
				r.Subject.Label,
				f2(r.Metrics.InnovationVelocity),
				strconv.Itoa(r.Metrics.FeatureUpdates),
			}
		},
	},
	{
		title:  "News Sentiment",
		header: []string{"Subject", "Positive", "Negative", "Neutral", "Average Sentiment"},
		row: func(r SubjectRow) []string {
			return []string{
				r.Subject.Label,
				strconv.Itoa(r.Metrics.NewsPositive),
				strconv.Itoa(r.Metrics.NewsNegative),
				strconv.Itoa(r.Metrics.NewsNeutral),
				f2(r.Metrics.NewsAverageSentiment),
			}
		},
	},
	{
		title:  "News Volume Comparison",
		header: []string{"Subject", "Total News"},
		row: func(r SubjectRow) []string {
			return []string{
				r.Subject.Label,
				strconv.Itoa(r.Metrics.NewsTotal),
			}
		},
	},
}

// RenderCSV renders the payload as a multi-section CSV document.
func RenderCSV(p *Payload) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"Competitive Comparison Export"},
		{"Period", string(p.Period)},
		{"Range", p.DateFrom.Format("2006-01-02"), p.DateTo.Format("2006-01-02")},
		{"Generated At", p.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
	}
	for _, section := range csvSections {
		records = append(records, []string{}, []string{section.title}, section.header)
		for _, r := range p.Rows {
			records = append(records, section.row(r))
		}
	}

	if err := w.WriteAll(records); err != nil {
		return nil, errors.Wrap(err, errors.CodeExportRenderFailed, "failed to render CSV export")
	}
	return buf.Bytes(), nil
}

func f2(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

type TableConfig struct {
	NameWidth     int
	TypeWidth     int
	VendorWidth   int
	ValueWidth    int
	GrowthWidth   int
	CategoryWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:     32,
		TypeWidth:     16,
		VendorWidth:   20,
		ValueWidth:    14,
		GrowthWidth:   10,
		CategoryWidth: 14,
	}
}

// Reporter renders analysis results as fixed-width text tables.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

// truncate shortens value to width runes so multi-byte names are never split.
func truncate(value string, width int) string {
	if utf8.RuneCountInString(value) <= width {
		return value
	}
	runes := []rune(value)
	if width <= 1 {
		return string(runes[:max(width, 0)])
	}
	return string(runes[:width-1]) + "~"
}

func (c *Reporter) funcs() template.FuncMap {
	cfg := c.config
	return template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"percent": func(d decimal.Decimal) string {
			return d.StringFixed(2) + "%"
		},
		"formatRow": func(name, entityType, vendor, current, previous, growth, category string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %*s | %*s | %*s | %-*s |",
				cfg.NameWidth, truncate(name, cfg.NameWidth),
				cfg.TypeWidth, truncate(entityType, cfg.TypeWidth),
				cfg.VendorWidth, truncate(vendor, cfg.VendorWidth),
				cfg.ValueWidth, current,
				cfg.ValueWidth, previous,
				cfg.GrowthWidth, growth,
				cfg.CategoryWidth, category)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+%s+%s+",
				strings.Repeat("-", cfg.NameWidth+2),
				strings.Repeat("-", cfg.TypeWidth+2),
				strings.Repeat("-", cfg.VendorWidth+2),
				strings.Repeat("-", cfg.ValueWidth+2),
				strings.Repeat("-", cfg.ValueWidth+2),
				strings.Repeat("-", cfg.GrowthWidth+2),
				strings.Repeat("-", cfg.CategoryWidth+2))
		},
	}
}

const analysisTemplate = `
Year-over-Year Analysis: {{.Summary.CurrentYear}} vs {{.Summary.PreviousYear}} ({{.Summary.Metric}})

Entities: {{.Summary.TotalEntities}}{{if ne .Metadata.TotalCount (len .Comparisons)}} (showing {{len .Comparisons}}){{end}}
Total {{.Summary.CurrentYear}}: {{money .Summary.TotalCurrentValue}}
Total {{.Summary.PreviousYear}}: {{money .Summary.TotalPreviousValue}}
Overall Growth: {{percent .Summary.OverallGrowthRate}}
Average Growth: {{percent .Summary.AverageGrowthRate}} (median {{percent .Summary.MedianGrowthRate}}, std dev {{money .Summary.GrowthRateStdDev}})

{{separator}}
{{formatRow "Entity" "Type" "Vendor" "Current" "Previous" "Growth" "Category"}}
{{separator}}
{{range .Comparisons}}{{formatRow .EntityName .EntityType .Vendor (money .CurrentValue) (money .PreviousValue) (percent .GrowthRate) (printf "%s" .GrowthCategory)}}
{{end}}{{separator}}
{{if .Summary.Categories}}
=== Growth Categories ===
{{range .Summary.Categories}}{{printf "%-14s" .Category}} {{printf "%4d" .Count}} entities  {{.Percentage.StringFixed 1}}%  avg {{percent .AverageGrowthRate}}
{{end}}{{end}}{{if .MonthlyTrend}}
=== Monthly Trend ===
{{range .MonthlyTrend}}{{printf "%-10s" .Label}} {{money .CurrentValue}} vs {{money .PreviousValue}} ({{percent .GrowthRate}})
{{end}}{{end}}
Generated {{.Metadata.GeneratedAt.Format "2006-01-02 15:04:05"}} from {{.Metadata.DataSource}}{{if .Metadata.CacheHit}} (cached){{end}}
`

const filterOptionsTemplate = `
Filter Options
Years: {{.EarliestYear}} - {{.LatestYear}}

=== Entity Types ===
{{range .EntityTypes}}- {{.}}
{{else}}(none)
{{end}}
=== Vendors ===
{{range .Vendors}}- {{.}}
{{else}}(none)
{{end}}
=== Growth Categories ===
{{range .GrowthCategories}}- {{.}}
{{end}}`

func (c *Reporter) Handle(resp *domain.AnalysisResponse) error {
	t, err := template.New("analysis").Funcs(c.funcs()).Parse(analysisTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, resp)
}

func (c *Reporter) HandleFilterOptions(opts *domain.FilterOptions) error {
	t, err := template.New("filter-options").Parse(filterOptionsTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, opts)
}

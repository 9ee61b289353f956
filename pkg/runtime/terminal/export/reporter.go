package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/adapters"
	"github.com/de-tools/cloud-atlas/pkg/models/api"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use text or json)", s)
	}
}

type TableConfig struct {
	NameWidth  int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  40,
		ValueWidth: 16,
	}
}

// Reporter renders dashboard results to the terminal, either as tables or
// as the JSON documents served by the web API.
type Reporter struct {
	writer io.Writer
	format Format
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		format: FormatText,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) SetFormat(f Format) {
	c.format = f
}

type row struct {
	Name  string
	Value string
}

type table struct {
	Title  string
	Footer string
	Rows   []row
}

const tableTemplate = `
{{.Title}}

{{separator}}
{{formatRow "Name" "Value"}}
{{separator}}
{{range .Rows}}{{formatRow .Name .Value}}
{{end}}{{separator}}
{{if .Footer}}{{.Footer}}
{{end}}`

func (c *Reporter) renderTable(t table) error {
	funcMap := template.FuncMap{
		"formatRow": func(name, value string) string {
			return fmt.Sprintf("| %-*s | %*s |",
				c.config.NameWidth, truncate(name, c.config.NameWidth),
				c.config.ValueWidth, value)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2))
		},
	}

	tmpl, err := template.New("table").Funcs(funcMap).Parse(tableTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl.Execute(c.writer, t)
}

func (c *Reporter) writeJSON(v any) error {
	enc := json.NewEncoder(c.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Failure prints a soft provider failure.
func (c *Reporter) Failure(provider string, status domain.Status, kind domain.ErrorKind, message string) error {
	if c.format == FormatJSON {
		return c.writeJSON(api.ErrorResponse{Error: message, Status: string(status), Kind: string(kind)})
	}
	_, err := fmt.Fprintf(c.writer, "%s: %s (%s)\n", provider, message, kind)
	return err
}

func (c *Reporter) Providers(providers []domain.ProviderInfo) error {
	if c.format == FormatJSON {
		return c.writeJSON(adapters.MapDomainProvidersToAPI(providers))
	}
	t := table{Title: "Configured providers"}
	for _, p := range providers {
		state := "ready"
		if !p.Configured {
			state = "unknown"
		}
		t.Rows = append(t.Rows, row{Name: p.DisplayName, Value: state})
	}
	return c.renderTable(t)
}

func (c *Reporter) CostLines(provider string, items []domain.CostLineItem) error {
	if c.format == FormatJSON {
		return c.writeJSON(adapters.MapDomainCostLineItemsToAPI(items))
	}
	currency := domain.DefaultCurrency
	t := table{Title: fmt.Sprintf("%s month-to-date costs", strings.ToUpper(provider))}
	for _, item := range items {
		currency = item.Currency
		t.Rows = append(t.Rows, row{
			Name:  item.Project + " / " + item.Service,
			Value: fmt.Sprintf("%.2f %s", item.Cost, item.Currency),
		})
	}
	t.Footer = fmt.Sprintf("Total: %.2f %s", domain.TotalCost(items), currency)
	return c.renderTable(t)
}

func (c *Reporter) DailyCosts(provider string, days []domain.DailyCost) error {
	if c.format == FormatJSON {
		return c.writeJSON(adapters.MapDomainDailyCostsToAPI(days))
	}
	t := table{Title: fmt.Sprintf("%s daily costs", strings.ToUpper(provider))}
	for _, d := range days {
		t.Rows = append(t.Rows, row{Name: d.Date, Value: fmt.Sprintf("%.2f", d.Cost)})
	}
	return c.renderTable(t)
}

func (c *Reporter) LiveMetrics(provider string, live domain.LiveMetrics) error {
	if c.format == FormatJSON {
		return c.writeJSON(adapters.MapDomainLiveMetricsToAPI(live))
	}
	t := table{
		Title:  fmt.Sprintf("%s live metrics (last 5 minutes)", strings.ToUpper(provider)),
		Footer: "Updated at " + live.UpdatedAt.UTC().Format(time.RFC3339),
		Rows: []row{
			{Name: "CPU %", Value: fmt.Sprintf("%.1f", live.CPUPercent)},
			{Name: "Instances monitored", Value: fmt.Sprintf("%d", live.InstancesMonitored)},
		},
	}
	if live.Traffic != nil {
		t.Rows = append(t.Rows,
			row{Name: "Traffic in (Mbps)", Value: fmt.Sprintf("%.2f", live.Traffic.MbpsIn)},
			row{Name: "Traffic out (Mbps)", Value: fmt.Sprintf("%.2f", live.Traffic.MbpsOut)})
	}
	if live.Disk != nil {
		t.Rows = append(t.Rows,
			row{Name: "Disk read (MB/s)", Value: fmt.Sprintf("%.2f", live.Disk.ReadMBs)},
			row{Name: "Disk write (MB/s)", Value: fmt.Sprintf("%.2f", live.Disk.WriteMBs)})
	}
	if live.Errors5m != nil {
		t.Rows = append(t.Rows, row{Name: "Errors (5m)", Value: fmt.Sprintf("%d", *live.Errors5m)})
	}
	return c.renderTable(t)
}

func (c *Reporter) Timeline(provider string, metric domain.MetricType, timeline domain.Timeline) error {
	if c.format == FormatJSON {
		return c.writeJSON(adapters.MapDomainTimelineToAPI(timeline))
	}
	t := table{Title: fmt.Sprintf("%s %s timeseries", strings.ToUpper(provider), metric)}
	for i, ts := range timeline.Timestamps {
		values := make([]string, 0, len(timeline.Channels))
		for _, ch := range timeline.Channels {
			values = append(values, fmt.Sprintf("%s=%g", ch.Name, ch.Values[i]))
		}
		t.Rows = append(t.Rows, row{Name: ts.UTC().Format(time.RFC3339), Value: strings.Join(values, " ")})
	}
	if timeline.Empty() {
		t.Footer = "No samples in range."
	}
	return c.renderTable(t)
}

func (c *Reporter) Summary(reports []domain.ProviderReport) error {
	if c.format == FormatJSON {
		return c.writeJSON(adapters.MapDomainReportsToAPI(reports))
	}
	t := table{Title: "Month-to-date cost summary"}
	for _, r := range reports {
		value := fmt.Sprintf("%.2f", r.MTDCost)
		if r.Status != domain.StatusActive {
			value = "error"
			t.Footer += fmt.Sprintf("%s: %s\n", r.Provider, r.Error)
		}
		t.Rows = append(t.Rows, row{Name: r.Provider, Value: value})
	}
	return c.renderTable(t)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}

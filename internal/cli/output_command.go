package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"timesheet/internal/errors"
)

// OutputCommand handles the output command
type OutputCommand struct {
	app *App
}

// NewOutputCommand creates a new output command handler
func NewOutputCommand(app *App) *OutputCommand {
	return &OutputCommand{app: app}
}

type exportRow struct {
	Key      string  `yaml:"key"`
	Label    string  `yaml:"label"`
	In       string  `yaml:"in"`
	Out      string  `yaml:"out"`
	Hours    float64 `yaml:"hours"`
	Rate     float64 `yaml:"rate"`
	Earnings float64 `yaml:"earnings"`
}

// Execute exports confirmed log entries in the requested format
func (c *OutputCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 || !strings.HasPrefix(args[0], "format=") {
		return errors.NewInvalidInputError("command", "output", "usage: ts output format=csv|yaml")
	}

	rows := c.rows()
	switch format := strings.TrimPrefix(args[0], "format="); format {
	case "csv":
		return c.outputCSV(rows)
	case "yaml":
		return c.outputYAML(rows)
	default:
		return errors.NewInvalidInputError("format", format, "unsupported format")
	}
}

func (c *OutputCommand) rows() []exportRow {
	rate := c.app.tracker.DefaultRate()
	var rows []exportRow
	for _, e := range c.app.tracker.Logs() {
		if e.Pending {
			continue
		}
		rows = append(rows, exportRow{
			Key:      e.Key,
			Label:    e.Label,
			In:       e.StartedAt.UTC().Format(time.RFC3339),
			Out:      e.EndedAt.UTC().Format(time.RFC3339),
			Hours:    e.Duration().Hours(),
			Rate:     e.EffectiveRate(rate),
			Earnings: e.Earnings(rate),
		})
	}
	return rows
}

func (c *OutputCommand) outputCSV(rows []exportRow) error {
	writer := csv.NewWriter(c.app.out)

	header := []string{"Key", "Start Time", "End Time", "Duration (hours)", "Rate", "Earnings", "Label"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range rows {
		row := []string{
			r.Key,
			r.In,
			r.Out,
			fmt.Sprintf("%.2f", r.Hours),
			strconv.FormatFloat(r.Rate, 'f', 2, 64),
			strconv.FormatFloat(r.Earnings, 'f', 2, 64),
			r.Label,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (c *OutputCommand) outputYAML(rows []exportRow) error {
	enc := yaml.NewEncoder(c.app.out)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]exportRow{"logs": rows}); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return enc.Close()
}

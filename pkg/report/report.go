// Package report renders a migration summary for humans and machines.
package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/catmigrate/pkg/migrate"
)

// Format selects the output encoding.
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// DefaultPathWidth bounds the file column of the table format.
const DefaultPathWidth = 48

// Formats lists every supported format in display order.
func Formats() []Format {
	return []Format{FormatText, FormatTable, FormatJSON, FormatYAML, FormatTOML}
}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatText, nil
	}
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Options controls rendering.
type Options struct {
	Format Format
	// PathWidth caps the file column in table output; 0 uses DefaultPathWidth.
	PathWidth int
}

//go:embed templates/summary.hbs
var summaryTemplate string

var summaryTpl = raymond.MustParse(summaryTemplate)

// Render writes s to w in the requested format.
func Render(w io.Writer, s *migrate.Summary, opts Options) error {
	switch opts.Format {
	case FormatText, "":
		if err := writeDiffs(w, s); err != nil {
			return err
		}
		return renderText(w, s)
	case FormatTable:
		if err := writeDiffs(w, s); err != nil {
			return err
		}
		return renderTable(w, s, opts.PathWidth)
	case FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(s); err != nil {
			return fmt.Errorf("failed to marshal TOML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

func writeDiffs(w io.Writer, s *migrate.Summary) error {
	for _, f := range s.Files {
		if f.Diff == "" {
			continue
		}
		if _, err := io.WriteString(w, f.Diff); err != nil {
			return err
		}
	}
	return nil
}

func renderText(w io.Writer, s *migrate.Summary) error {
	kinds := make([]map[string]interface{}, 0, len(s.Kinds))
	for _, kc := range s.Kinds {
		kinds = append(kinds, map[string]interface{}{"label": kc.Label, "count": kc.Count})
	}
	data := map[string]interface{}{
		"dryRun":    s.DryRun,
		"total":     s.Total,
		"kinds":     kinds,
		"migrated":  s.Migrated,
		"unchanged": s.Unchanged,
		"skipped":   s.Skipped,
		"files":     len(s.Files),
		"bytes":     humanize.Bytes(uint64(s.BytesScanned)), // #nosec G115 - sizes are never negative
	}

	out, err := summaryTpl.Exec(data)
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func renderTable(w io.Writer, s *migrate.Summary, pathWidth int) error {
	if pathWidth <= 0 {
		pathWidth = DefaultPathWidth
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.AppendHeader(table.Row{"File", "Group", "Kind", "Import", "Literal", "Status"})

	for _, f := range s.Files {
		tbl.AppendRow(table.Row{
			truncateLeft(displayPath(s.Root, f.Path), pathWidth),
			f.Group,
			string(f.Kind),
			f.Import.String(),
			f.Literal.String(),
			string(f.Status),
		})
	}

	verb := "updated"
	if s.DryRun {
		verb = "to update"
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d %s", s.Total, verb)})

	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

func displayPath(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

// truncateLeft keeps the tail of s within width display cells.
func truncateLeft(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	const ellipsis = "…"
	budget := width - runewidth.StringWidth(ellipsis)

	runes := []rune(s)
	used, i := 0, len(runes)
	for i > 0 {
		rw := runewidth.RuneWidth(runes[i-1])
		if used+rw > budget {
			break
		}
		used += rw
		i--
	}
	return ellipsis + string(runes[i:])
}

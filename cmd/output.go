package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

var outputFormats = []string{"table", "csv", "json", "yaml"}

// table is the flat rendering of a result set used by the table and csv formats.
type table struct {
	header []string
	rows   [][]string
}

func validateFormat(format string) error {
	for _, f := range outputFormats {
		if format == f {
			return nil
		}
	}
	return eris.Errorf("--format must be one of %s (got %q)", strings.Join(outputFormats, ", "), format)
}

// writeOutput renders records to path, or stdout when path is empty.
func writeOutput(path, format string, records any, tbl table) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create output file %s", path)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}
	return render(w, format, records, tbl)
}

func render(w io.Writer, format string, records any, tbl table) error {
	switch format {
	case "table":
		return writeTable(w, tbl)
	case "csv":
		return writeCSV(w, tbl)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(records), "write json")
	case "yaml":
		return writeYAML(w, records)
	default:
		return validateFormat(format)
	}
}

func writeTable(out io.Writer, tbl table) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(tbl.header, "\t"))
	dashes := make([]string, len(tbl.header))
	for i, h := range tbl.header {
		dashes[i] = strings.Repeat("-", len(h))
	}
	_, _ = fmt.Fprintln(w, strings.Join(dashes, "\t"))
	for _, row := range tbl.rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return eris.Wrap(w.Flush(), "write table")
}

func writeCSV(out io.Writer, tbl table) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(tbl.header); err != nil {
		return eris.Wrap(err, "write CSV header")
	}
	if err := cw.WriteAll(tbl.rows); err != nil {
		return eris.Wrap(err, "write CSV rows")
	}
	return nil
}

// writeYAML emits records with the same keys and field order as the JSON
// output by round-tripping through a yaml.Node.
func writeYAML(out io.Writer, records any) error {
	b, err := json.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "marshal yaml")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return eris.Wrap(err, "marshal yaml")
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return eris.Wrap(err, "write yaml")
	}
	return eris.Wrap(enc.Close(), "write yaml")
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func num(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// miles renders an optional distance; nil means no candidate existed.
func miles(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Package export writes simulation series as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/kinetics"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
	}
}

// FormatFromPath picks the format from the file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatCSV
}

// WriteCSV writes a header row and one row per sample. Values use the
// shortest representation that round-trips; non-finite values print as
// NaN, +Inf or -Inf.
func WriteCSV(w io.Writer, s engine.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Columns); err != nil {
		return err
	}
	record := make([]string, len(s.Columns))
	for _, row := range s.Rows {
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record[:len(row)]); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Document is the JSON export of one run.
type Document struct {
	Integrator string              `json:"integrator"`
	Params     kinetics.Parameters `json:"params"`
	Columns    []string            `json:"columns"`
	Rows       [][]*float64        `json:"rows"`
}

// NewDocument converts s for JSON. Non-finite values become null since JSON
// has no representation for them.
func NewDocument(integrator string, p kinetics.Parameters, s engine.Series) Document {
	rows := make([][]*float64, len(s.Rows))
	for i, row := range s.Rows {
		out := make([]*float64, len(row))
		for j := range row {
			if v := row[j]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				out[j] = &v
			}
		}
		rows[i] = out
	}
	return Document{
		Integrator: integrator,
		Params:     p,
		Columns:    s.Columns,
		Rows:       rows,
	}
}

func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Write exports sim in format f.
func Write(w io.Writer, f Format, sim *engine.Simulation, includePrecursor bool) error {
	series := sim.Export(includePrecursor)
	switch f {
	case FormatJSON:
		return WriteJSON(w, NewDocument(sim.Integrator(), sim.Params(), series))
	default:
		return WriteCSV(w, series)
	}
}

// WriteFile creates path and exports sim into it, choosing the format from
// the extension.
func WriteFile(path string, sim *engine.Simulation, includePrecursor bool) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, FormatFromPath(path), sim, includePrecursor); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

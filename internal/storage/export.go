package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/heft/internal/sim"
)

type ExportData struct {
	Run     RunMetadata        `json:"run"`
	Columns []string           `json:"columns"`
	Rows    [][]float64        `json:"rows"`
	Metrics map[string]float64 `json:"metrics"`
}

// Columns picks named numeric columns out of rows. Unknown names are
// reported as an error before any row is read.
func Columns(rows []sim.LogEntry, names []string) ([][]float64, error) {
	if len(rows) > 0 {
		for _, n := range names {
			if _, ok := rows[0].Column(n); !ok {
				return nil, &UnknownColumnError{Name: n}
			}
		}
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		vals := make([]float64, len(names))
		for j, n := range names {
			vals[j], _ = r.Column(n)
		}
		out[i] = vals
	}
	return out, nil
}

// ExportJSON writes the selected columns of a stored run.
func ExportJSON(w io.Writer, meta RunMetadata, rows []sim.LogEntry, names []string) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	values, err := Columns(rows, names)
	if err != nil {
		return err
	}
	data := ExportData{
		Run:     meta,
		Columns: names,
		Rows:    values,
		Metrics: meta.Metrics,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string {
	return "storage: unknown column " + e.Name
}

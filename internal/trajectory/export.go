package trajectory

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Header returns the CSV columns: time, then x, y, vx, vy per particle.
func (tr *Trajectory) Header() []string {
	header := []string{"time"}
	for _, id := range tr.ids {
		header = append(header, id+".x", id+".y", id+".vx", id+".vy")
	}
	return header
}

// WriteCSV writes one row per recorded state.
func (tr *Trajectory) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tr.Header()); err != nil {
		return err
	}

	row := make([]string, 0, 1+4*len(tr.ids))
	for i, s := range tr.states {
		row = append(row[:0], formatFloat(tr.times[i]))
		for _, id := range tr.ids {
			q, v := s.Qs[id], s.QDots[id]
			row = append(row, formatFloat(q.X), formatFloat(q.Y), formatFloat(v.X), formatFloat(v.Y))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV rebuilds a trajectory written by WriteCSV.
func ReadCSV(r io.Reader) (*Trajectory, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("trajectory csv: no states")
	}

	header := records[0]
	if len(header) < 5 || header[0] != "time" || (len(header)-1)%4 != 0 {
		return nil, fmt.Errorf("trajectory csv: malformed header %v", header)
	}
	var ids []string
	for c := 1; c < len(header); c += 4 {
		id, ok := strings.CutSuffix(header[c], ".x")
		if !ok {
			return nil, fmt.Errorf("trajectory csv: column %d is %q, want <id>.x", c, header[c])
		}
		ids = append(ids, id)
	}

	var tr *Trajectory
	for line, rec := range records[1:] {
		vals := make([]float64, len(rec))
		for i, field := range rec {
			if vals[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("trajectory csv: line %d: %w", line+2, err)
			}
		}

		qs := make(dynamo.Coords, len(ids))
		qdots := make(dynamo.Coords, len(ids))
		for k, id := range ids {
			c := 1 + 4*k
			qs[id] = r2.Vec{X: vals[c], Y: vals[c+1]}
			qdots[id] = r2.Vec{X: vals[c+2], Y: vals[c+3]}
		}
		s := dynamo.State{Qs: qs, QDots: qdots}

		if tr == nil {
			tr = New(s)
			tr.times[0] = vals[0]
			continue
		}
		if err := tr.Append(s, vals[0]); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

// Summary describes a finished run for JSON export.
type Summary struct {
	Scenario   string             `json:"scenario"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Particles  []string           `json:"particles"`
	Metrics    map[string]float64 `json:"metrics"`
}

// WriteJSON writes the summary followed by the final positions.
func (tr *Trajectory) WriteJSON(w io.Writer, sum Summary) error {
	sum.Steps = tr.Len() - 1
	sum.Particles = tr.ids

	final := make(map[string][2]float64, len(tr.ids))
	for id, q := range tr.Last().Qs {
		final[id] = [2]float64{q.X, q.Y}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Summary
		Final map[string][2]float64 `json:"final"`
	}{sum, final})
}

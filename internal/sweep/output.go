package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVWriter wraps csv.Writer with methods for sweep output.
type CSVWriter struct {
	Summary *csv.Writer
	Raw     *csv.Writer
}

// NewCSVWriter creates a new CSVWriter. raw may be nil to skip per-run rows.
func NewCSVWriter(summary, raw io.Writer) *CSVWriter {
	c := &CSVWriter{Summary: csv.NewWriter(summary)}
	if raw != nil {
		c.Raw = csv.NewWriter(raw)
	}
	return c
}

var (
	summaryHeader = []string{
		"evasion_weight", "runs", "hits", "qualified", "hit_rate", "qualified_rate",
		"ticks_mean", "ticks_stddev", "angle_mean", "angle_stddev",
	}
	rawHeader = []string{
		"evasion_weight", "seed", "run_id", "state", "ticks",
		"collision_x", "collision_y", "angle_deg", "verdict", "corrections", "fallbacks",
	}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// WriteHeaders writes the header row to each configured writer.
func (c *CSVWriter) WriteHeaders() error {
	if err := c.Summary.Write(summaryHeader); err != nil {
		return err
	}
	if c.Raw != nil {
		return c.Raw.Write(rawHeader)
	}
	return nil
}

// WriteSample writes one per-run row. It is a no-op without a raw writer.
func (c *CSVWriter) WriteSample(s Sample) error {
	if c.Raw == nil {
		return nil
	}
	res := s.Result
	row := []string{
		formatFloat(s.Weight),
		strconv.FormatInt(s.Seed, 10),
		res.RunID.String(),
		string(res.State),
		strconv.Itoa(res.Ticks),
		"", "", "",
		string(s.Verdict),
		strconv.Itoa(res.Corrections),
		strconv.Itoa(res.Fallbacks),
	}
	if col := res.Collision; col != nil {
		row[5] = formatFloat(col.Point.X)
		row[6] = formatFloat(col.Point.Y)
		row[7] = formatFloat(col.AngleDeg)
	}
	return c.Raw.Write(row)
}

// WriteSummary writes one aggregate row.
func (c *CSVWriter) WriteSummary(s Summary) error {
	return c.Summary.Write([]string{
		formatFloat(s.Weight),
		strconv.Itoa(s.Runs),
		strconv.Itoa(s.Hits),
		strconv.Itoa(s.Qualified),
		formatFloat(s.HitRate),
		formatFloat(s.QualifiedRate),
		formatFloat(s.TicksMean),
		formatFloat(s.TicksStddev),
		formatFloat(s.AngleMean),
		formatFloat(s.AngleStddev),
	})
}

// Flush flushes both writers and reports the first error.
func (c *CSVWriter) Flush() error {
	c.Summary.Flush()
	if err := c.Summary.Error(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}
	if c.Raw != nil {
		c.Raw.Flush()
		if err := c.Raw.Error(); err != nil {
			return fmt.Errorf("flush raw: %w", err)
		}
	}
	return nil
}

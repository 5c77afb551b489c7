package galaxy

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// BuffersExport is the JSON-serializable representation of generated buffers.
type BuffersExport struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Tier        TierExport `json:"tier"`
	Count       int        `json:"count"`
	BulgeCount  int        `json:"bulge_count"`
	ArmCount    int        `json:"arm_count"`
	Bounds      Bounds     `json:"bounds"`
	Positions   []float32  `json:"positions,omitempty"`
	Colors      []float32  `json:"colors,omitempty"`
	Sizes       []float32  `json:"sizes,omitempty"`
}

// TierExport is a JSON-friendly tier.
type TierExport struct {
	Distance      float64 `json:"distance"`
	ParticleCount int     `json:"particle_count"`
	BaseSize      float64 `json:"base_size"`
	Near          bool    `json:"near"`
}

// ExportBuffers converts buffers to an exportable format. When withData is
// false only the header and bounds are included.
func ExportBuffers(b *Buffers, generatedAt time.Time, withData bool) *BuffersExport {
	if b == nil {
		return &BuffersExport{GeneratedAt: generatedAt}
	}

	export := &BuffersExport{
		GeneratedAt: generatedAt,
		Tier: TierExport{
			Distance:      b.Tier.Distance,
			ParticleCount: b.Tier.ParticleCount,
			BaseSize:      b.Tier.BaseSize,
			Near:          b.Tier.Near(),
		},
		Count:      b.Count,
		BulgeCount: b.BulgeCount,
		ArmCount:   b.ArmCount(),
		Bounds:     b.Bounds(),
	}

	if withData {
		export.Positions = b.Positions
		export.Colors = b.Colors
		export.Sizes = b.Sizes
	}

	return export
}

// WriteJSON writes the export as JSON to the given writer.
func (e *BuffersExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// SummaryRow is one region of the galaxy in the summary table.
type SummaryRow struct {
	Region    string
	Count     int
	MaxRadius float64
	MeanSize  float64
	MeanColor [3]float64
}

// GenerateSummaryRows splits buffers into bulge and arm rows.
func GenerateSummaryRows(b *Buffers) []SummaryRow {
	if b == nil || b.Count == 0 {
		return nil
	}
	return []SummaryRow{
		summarize("bulge", b, 0, b.BulgeCount),
		summarize("arms", b, b.BulgeCount, b.Count),
	}
}

func summarize(region string, b *Buffers, from, to int) SummaryRow {
	row := SummaryRow{Region: region, Count: to - from}
	if row.Count == 0 {
		return row
	}

	var sizeSum float64
	var colorSum [3]float64
	for i := from; i < to; i++ {
		x, y, z := b.Position(i)
		r := math.Sqrt(float64(x)*float64(x) + float64(y)*float64(y) + float64(z)*float64(z))
		if r > row.MaxRadius {
			row.MaxRadius = r
		}
		sizeSum += float64(b.Sizes[i])
		cr, cg, cb := b.Color(i)
		colorSum[0] += float64(cr)
		colorSum[1] += float64(cg)
		colorSum[2] += float64(cb)
	}

	n := float64(row.Count)
	row.MeanSize = sizeSum / n
	row.MeanColor = [3]float64{colorSum[0] / n, colorSum[1] / n, colorSum[2] / n}
	return row
}

// WriteSummaryTable writes a text table describing b.
func WriteSummaryTable(w io.Writer, b *Buffers, distance float64, generatedAt time.Time) {
	fmt.Fprintf(w, "Galaxy @ %s\n", generatedAt.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 64))

	if b == nil || b.Count == 0 {
		fmt.Fprintln(w, "No buffers generated")
		return
	}

	fmt.Fprintf(w, "Camera distance %.2f → tier ≤%.0f (%d particles, base size %.3f, near=%t)\n",
		distance, b.Tier.Distance, b.Tier.ParticleCount, b.Tier.BaseSize, b.Tier.Near())
	fmt.Fprintln(w, strings.Repeat("─", 64))

	fmt.Fprintf(w, "%-8s %10s %10s %10s %-20s\n", "Region", "Count", "MaxR", "MeanSize", "MeanColor")
	fmt.Fprintln(w, strings.Repeat("─", 64))

	for _, r := range GenerateSummaryRows(b) {
		fmt.Fprintf(w, "%-8s %10d %10.3f %10.4f %.2f/%.2f/%.2f\n",
			r.Region, r.Count, r.MaxRadius, r.MeanSize,
			r.MeanColor[0], r.MeanColor[1], r.MeanColor[2])
	}

	bounds := b.Bounds()
	fmt.Fprintf(w, "\nBounds: x[%.2f, %.2f] y[%.2f, %.2f] z[%.2f, %.2f]\n",
		bounds.Min[0], bounds.Max[0], bounds.Min[1], bounds.Max[1], bounds.Min[2], bounds.Max[2])
	fmt.Fprintf(w, "Total: %d particles\n", b.Count)
}

package telemetry

import (
	"log/slog"
	"time"

	"github.com/Normaly0/galaxy-gen/galaxy"
)

// GenerationRecord describes one completed (or discarded) generation pass.
type GenerationRecord struct {
	ID              string  `csv:"id"`
	Seq             uint64  `csv:"seq"`
	Mode            string  `csv:"mode"`
	Count           int     `csv:"count"`
	Branches        int     `csv:"branches"`
	Radius          float64 `csv:"radius"`
	Spin            float64 `csv:"spin"`
	Randomness      float64 `csv:"randomness"`
	RandomnessPower float64 `csv:"randomness_power"`
	InsideColor     string  `csv:"inside_color"`
	OutsideColor    string  `csv:"outside_color"`
	Async           bool    `csv:"async"`
	Discarded       bool    `csv:"discarded"` // superseded or cancelled before install
	GenerateMS      float64 `csv:"generate_ms"`
	UploadMS        float64 `csv:"upload_ms"`
	Bytes           int     `csv:"bytes"`
	MeanRadius      float64 `csv:"mean_radius"`
	P90Radius       float64 `csv:"p90_radius"`
	MeanJitter      float64 `csv:"mean_jitter"`
}

// NewGenerationRecord fills the parameter columns of a record.
func NewGenerationRecord(id string, seq uint64, mode galaxy.Mode, p galaxy.Parameters) GenerationRecord {
	return GenerationRecord{
		ID:              id,
		Seq:             seq,
		Mode:            mode.String(),
		Count:           p.Count,
		Branches:        p.Branches,
		Radius:          p.Radius,
		Spin:            p.Spin,
		Randomness:      p.Randomness,
		RandomnessPower: p.RandomnessPower,
		InsideColor:     p.InsideColor,
		OutsideColor:    p.OutsideColor,
	}
}

// SetStats copies field statistics into the record.
func (r *GenerationRecord) SetStats(s galaxy.Stats) {
	r.MeanRadius = s.MeanRadius
	r.P90Radius = s.P90Radius
	r.MeanJitter = s.MeanJitter
}

// SetTimings records generation and upload durations.
func (r *GenerationRecord) SetTimings(generate, upload time.Duration) {
	r.GenerateMS = float64(generate.Microseconds()) / 1000
	r.UploadMS = float64(upload.Microseconds()) / 1000
}

// LogValue implements slog.LogValuer for structured logging.
func (r GenerationRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", r.ID),
		slog.Uint64("seq", r.Seq),
		slog.String("mode", r.Mode),
		slog.Int("count", r.Count),
		slog.Int("branches", r.Branches),
		slog.Bool("async", r.Async),
		slog.Bool("discarded", r.Discarded),
		slog.Float64("generate_ms", r.GenerateMS),
		slog.Float64("upload_ms", r.UploadMS),
		slog.Int("bytes", r.Bytes),
	)
}

// GenerationLog keeps the most recent generation records.
type GenerationLog struct {
	records []GenerationRecord
	size    int
	next    int
	count   int
	total   int
}

// NewGenerationLog creates a log holding up to size records.
func NewGenerationLog(size int) *GenerationLog {
	if size < 1 {
		size = 16
	}
	return &GenerationLog{
		records: make([]GenerationRecord, size),
		size:    size,
	}
}

// Add appends a record, evicting the oldest when full.
func (l *GenerationLog) Add(r GenerationRecord) {
	l.records[l.next] = r
	l.next = (l.next + 1) % l.size
	if l.count < l.size {
		l.count++
	}
	l.total++
}

// Last returns the newest record.
func (l *GenerationLog) Last() (GenerationRecord, bool) {
	if l.count == 0 {
		return GenerationRecord{}, false
	}
	return l.records[(l.next-1+l.size)%l.size], true
}

// Recent returns the retained records, oldest first.
func (l *GenerationLog) Recent() []GenerationRecord {
	out := make([]GenerationRecord, 0, l.count)
	start := (l.next - l.count + l.size) % l.size
	for i := 0; i < l.count; i++ {
		out = append(out, l.records[(start+i)%l.size])
	}
	return out
}

// Total returns the number of records ever added.
func (l *GenerationLog) Total() int {
	return l.total
}

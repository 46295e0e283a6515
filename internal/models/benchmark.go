package models

import "time"

type Benchmark struct {
	ID         int    `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Language   string `db:"language" json:"language"`
	Repository string `db:"repository" json:"repository,omitempty"`
	SourceCode string `db:"source_code" json:"source_code,omitempty"`
}

// BenchmarkResult is one timing series: OutValues[i] was measured at InKeys[i].
type BenchmarkResult struct {
	ID   int       `db:"id" json:"id"`
	Date time.Time `db:"date" json:"date"`

	// InName is the independent variable (e.g. n), OutName the measured one.
	InName    string     `db:"in_name" json:"in_name"`
	OutName   string     `db:"out_name" json:"out_name"`
	InKeys    StringList `db:"in_keys" json:"in_keys"`
	OutValues FloatList  `db:"out_values" json:"out_values"`

	CompileMs       *float64  `db:"compile_ms" json:"compile_ms,omitempty"`
	CompileCommand  string    `db:"compile_command" json:"compile_command,omitempty"`
	RunCommand      string    `db:"run_command" json:"run_command,omitempty"`
	MachineID       string    `db:"machine_id" json:"machine_id"`
	MachineName     string    `db:"machine_name" json:"machine_name"`
	BenchmarkID     int       `db:"benchmark_id" json:"benchmark_id"`
	BenchmarkName   string    `db:"benchmark_name" json:"benchmark_name"`
	FixedParameters string    `db:"fixed_parameters" json:"fixed_parameters"`
	Mean            float64   `db:"mean" json:"mean"`
	Owner           string    `db:"owner" json:"owner"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Points pairs each input key with its measured value.
func (r BenchmarkResult) Points() []Point {
	n := min(len(r.InKeys), len(r.OutValues))
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		points[i] = Point{Key: r.InKeys[i], Value: r.OutValues[i]}
	}
	return points
}

type Point struct {
	Key   string
	Value float64
}

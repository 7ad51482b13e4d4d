package build

import "time"

// BuildResult captures the outcome of executing a plan.
type BuildResult struct {
	App         string
	OutDir      string
	Files       []OutputFile
	Assets      int // files copied by asset rules
	Warnings    []string
	Budgets     []BudgetViolation
	BudgetCount int // budgets checked
	Duration    time.Duration
}

// TotalBytes sums the size of every emitted file.
func (r *BuildResult) TotalBytes() int64 {
	var n int64
	for _, f := range r.Files {
		n += f.Bytes
	}
	return n
}

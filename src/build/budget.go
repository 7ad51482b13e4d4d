package build

import (
	"fmt"
	"path/filepath"
	"strings"

	units "github.com/docker/go-units"

	"github.com/sofmeright/packwright/src/config"
)

// OutputFile is one file a build engine wrote.
type OutputFile struct {
	Path    string // relative to the output directory
	Bytes   int64
	Entry   string // entry name when the file is an entry point's output
	Initial bool   // loaded at startup (eager entry point)
}

// IsScript reports whether the file is JavaScript.
func (f OutputFile) IsScript() bool {
	ext := strings.ToLower(filepath.Ext(f.Path))
	return ext == ".js" || ext == ".mjs"
}

// BudgetLevel grades a measured size against a budget.
type BudgetLevel string

const (
	BudgetWarning BudgetLevel = "warning"
	BudgetError   BudgetLevel = "error"
)

// BudgetViolation is a measured size that exceeded a budget threshold.
type BudgetViolation struct {
	Index  int // position of Budget in the app's budget list
	Budget config.Budget
	Label  string
	Size   int64
	Limit  int64
	Level  BudgetLevel
}

func (v BudgetViolation) String() string {
	return fmt.Sprintf("budget %s: %s is %s, exceeding maximum %s of %s",
		v.Budget.Type, v.Label, units.BytesSize(float64(v.Size)), v.Level, units.BytesSize(float64(v.Limit)))
}

// measure is one size a budget applies to.
type measure struct {
	label string
	size  int64
}

// CheckBudgets measures the output files against every budget and returns
// the thresholds exceeded, in budget order. Error-level thresholds win over
// warning-level ones for the same measurement.
func CheckBudgets(budgets []config.Budget, files []OutputFile) ([]BudgetViolation, error) {
	var out []BudgetViolation
	for i, b := range budgets {
		warn, err := parseLimit(b.MaximumWarning)
		if err != nil {
			return nil, err
		}
		maxErr, err := parseLimit(b.MaximumError)
		if err != nil {
			return nil, err
		}
		for _, m := range measuresFor(b, files) {
			switch {
			case maxErr > 0 && m.size > maxErr:
				out = append(out, BudgetViolation{Index: i, Budget: b, Label: m.label, Size: m.size, Limit: maxErr, Level: BudgetError})
			case warn > 0 && m.size > warn:
				out = append(out, BudgetViolation{Index: i, Budget: b, Label: m.label, Size: m.size, Limit: warn, Level: BudgetWarning})
			}
		}
	}
	return out, nil
}

// BudgetErr returns an error when any violation is error-level.
func BudgetErr(violations []BudgetViolation) error {
	var msgs []string
	for _, v := range violations {
		if v.Level == BudgetError {
			msgs = append(msgs, v.String())
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func parseLimit(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return config.ParseSize(s)
}

func measuresFor(b config.Budget, files []OutputFile) []measure {
	sum := func(label string, keep func(OutputFile) bool) []measure {
		var total int64
		for _, f := range files {
			if keep(f) {
				total += f.Bytes
			}
		}
		return []measure{{label: label, size: total}}
	}
	each := func(keep func(OutputFile) bool) []measure {
		var ms []measure
		for _, f := range files {
			if keep(f) {
				ms = append(ms, measure{label: f.Path, size: f.Bytes})
			}
		}
		return ms
	}

	switch b.Type {
	case "initial":
		return sum("initial", func(f OutputFile) bool { return f.Initial })
	case "all":
		return sum("all", func(OutputFile) bool { return true })
	case "allScript":
		return sum("all scripts", OutputFile.IsScript)
	case "any":
		return each(func(OutputFile) bool { return true })
	case "anyScript":
		return each(OutputFile.IsScript)
	case "bundle":
		return sum("bundle "+b.Name, func(f OutputFile) bool { return f.Entry == b.Name })
	}
	return nil
}

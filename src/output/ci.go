package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sofmeright/packwright/src/build"
)

// IsCI reports whether the process runs under a CI system.
func IsCI() bool { return os.Getenv("CI") == "true" }

// IsGitLabCI reports whether the process runs in a GitLab job.
func IsGitLabCI() bool { return os.Getenv("GITLAB_CI") == "true" }

// SectionStart opens a GitLab log section. Outside GitLab it writes nothing.
func SectionStart(w io.Writer, id, name string) { gitlabMarker(w, "section_start", id, "", name) }

// SectionStartCollapsed opens a GitLab log section folded by default.
func SectionStartCollapsed(w io.Writer, id, name string) {
	gitlabMarker(w, "section_start", id, "[collapsed=true]", name)
}

// SectionEnd closes the GitLab log section id.
func SectionEnd(w io.Writer, id string) { gitlabMarker(w, "section_end", id, "", "") }

func gitlabMarker(w io.Writer, kind, id, opts, name string) {
	if !IsGitLabCI() {
		return
	}
	fmt.Fprintf(w, "\033[0K%s:%d:%s%s\r\033[0K%s\n", kind, time.Now().Unix(), id, opts, name)
}

// junitReport is the JUnit XML document CI systems ingest.
type junitReport struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Name     string       `xml:"name,attr"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Time     string       `xml:"time,attr"`
	Suites   []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Time     string      `xml:"time,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// WriteBudgetJUnit writes one suite per app with a test case per budget.
// Error-level violations are failures; warnings are not.
func WriteBudgetJUnit(dir string, results []*build.BuildResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	root := junitReport{Name: "packwright-budgets"}
	var total time.Duration

	for _, r := range results {
		app := r.App
		if app == "" {
			app = "default"
		}
		suite := junitSuite{
			Name: "packwright/budgets/" + app,
			Time: fmt.Sprintf("%.3f", r.Duration.Seconds()),
		}
		total += r.Duration

		failed := make(map[int][]string)
		for _, v := range r.Budgets {
			if v.Level == build.BudgetError {
				failed[v.Index] = append(failed[v.Index], v.String())
			}
		}

		for i := 0; i < r.BudgetCount; i++ {
			tc := junitCase{
				Name:      fmt.Sprintf("budget[%d]", i),
				Classname: "packwright.budgets." + app,
				Time:      "0.000",
			}
			if msgs := failed[i]; len(msgs) > 0 {
				tc.Failure = &junitFailure{
					Message: fmt.Sprintf("%d budget violation(s)", len(msgs)),
					Type:    string(build.BudgetError),
					Body:    strings.Join(msgs, "\n"),
				}
				suite.Failures++
				root.Failures++
			}
			suite.Cases = append(suite.Cases, tc)
			suite.Tests++
			root.Tests++
		}
		root.Suites = append(root.Suites, suite)
	}
	root.Time = fmt.Sprintf("%.3f", total.Seconds())

	path := filepath.Join(dir, "budgets.xml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	_, err = f.WriteString("\n")
	return err
}

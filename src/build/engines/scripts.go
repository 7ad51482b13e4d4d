package engines

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/sofmeright/packwright/src/build"
)

// writeGlobalScripts concatenates each global script bundle in source order
// and writes it to the output directory. Eager bundles carry a content hash
// when script hashing is on; lazy bundles keep a fixed name so they can be
// loaded by name at runtime.
func writeGlobalScripts(plan *build.BuildPlan) ([]build.OutputFile, error) {
	var files []build.OutputFile
	for _, s := range plan.Scripts {
		var buf bytes.Buffer
		for i, p := range s.Paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, &build.MissingDependencyError{Kind: "script", Name: p, Detail: err.Error()}
			}
			if i > 0 {
				buf.WriteString("\n;")
			}
			buf.Write(data)
		}

		name := ScriptFileName(s, plan.Hashing, buf.Bytes())
		dst := filepath.Join(plan.Options.OutputPath, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
		}
		if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		files = append(files, build.OutputFile{
			Path:    name,
			Bytes:   int64(buf.Len()),
			Entry:   s.Entry,
			Initial: !s.Lazy,
		})
	}
	return files, nil
}

// ScriptFileName names a concatenated global script bundle.
func ScriptFileName(s build.AggregatedEntry, hashing build.HashFormat, contents []byte) string {
	if s.Lazy || !hashing.Script {
		return s.Entry + ".js"
	}
	return fmt.Sprintf("%s.%016x.js", s.Entry, xxhash.Sum64(contents))
}

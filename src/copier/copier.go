// Package copier copies files selected by sanitized asset rules into the
// output directory.
package copier

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/sofmeright/packwright/src/build"
)

// Ignored matches files never copied, relative to a rule's input.
var Ignored = []string{
	"**/.gitkeep",
	"**/.DS_Store",
	"**/Thumbs.db",
}

// Copier copies asset files with bounded concurrency.
type Copier struct {
	Workers int // 0 means 2 per CPU

	Copied atomic.Int64
}

// Copy expands each rule and copies every match. Rules are expected to have
// passed build.AssetChecker; destinations are checked again before writing.
func (c *Copier) Copy(ctx context.Context, rules []build.SanitizedAssetRule) error {
	var jobs []job
	for _, r := range rules {
		js, err := expand(r)
		if err != nil {
			return err
		}
		jobs = append(jobs, js...)
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	sem := semaphore.NewWeighted(int64(workers))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, j := range jobs {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			defer sem.Release(1)
			if err := copyFile(j.src, j.dst); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			c.Copied.Add(1)
			log.Debug().Str("src", j.src).Str("dst", j.dst).Msg("copied asset")
		}(j)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d asset copy errors (first: %w)", len(errs), errs[0])
	}
	return nil
}

type job struct {
	src, dst string
}

// expand lists the files one rule copies.
func expand(r build.SanitizedAssetRule) ([]job, error) {
	// A rule naming a single file copies it into the output directory.
	if r.Glob == "" {
		fi, err := os.Stat(r.Input)
		if err != nil {
			return nil, fmt.Errorf("asset input %s: %w", r.Input, err)
		}
		if fi.IsDir() {
			return nil, nil
		}
		dst := filepath.Join(r.Output, filepath.Base(r.Input))
		return []job{{src: r.Input, dst: dst}}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(r.Input), r.Glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding %s in %s: %w", r.Glob, r.Input, err)
	}

	jobs := make([]job, 0, len(matches))
	for _, m := range matches {
		if ignored(m) {
			continue
		}
		dst := filepath.Join(r.Output, filepath.FromSlash(m))
		if !build.Contains(r.Output, dst) {
			return nil, &build.PathSafetyError{Path: dst, Boundary: build.BoundaryOutputDir}
		}
		jobs = append(jobs, job{src: filepath.Join(r.Input, filepath.FromSlash(m)), dst: dst})
	}
	return jobs, nil
}

func ignored(rel string) bool {
	for _, pattern := range Ignored {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

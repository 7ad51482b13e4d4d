// Package gitver derives a version string for a project from its git
// history. The build stamps it into bundles and the CLI banner shows it.
package gitver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// VersionInfo holds resolved version metadata from git.
type VersionInfo struct {
	Version      string // full version: "1.2.3", "1.2.3-alpha.1", "0.0.0-dev+abc1234"
	Base         string // semver base without prerelease: "1.2.3"
	Prerelease   string // "alpha.1", "rc.1", or "" for stable
	Tag          string // nearest tag, "" when none
	SHA          string // short HEAD hash
	Branch       string // "" on a detached HEAD
	IsRelease    bool   // HEAD is exactly at a tag
	IsPrerelease bool
}

// semverRe captures major.minor.patch and optional -prerelease suffix.
var semverRe = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(?:-(.+))?$`)

const shortSHALen = 7

// DetectVersion resolves version info from the repository containing rootDir.
func DetectVersion(rootDir string) (*VersionInfo, error) {
	repo, err := git.PlainOpenWithOptions(rootDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}

	v := &VersionInfo{SHA: head.Hash().String()[:shortSHALen]}
	if head.Name().IsBranch() {
		v.Branch = head.Name().Short()
	}

	tags, err := tagsByCommit(repo)
	if err != nil {
		return nil, err
	}

	// Nearest tag on HEAD's first-parent chain; tags reachable only
	// through merged branches do not count.
	c, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading HEAD commit: %w", err)
	}
	for first := true; ; first = false {
		if t, ok := tags[c.Hash]; ok {
			v.Tag = t
			v.IsRelease = first
			break
		}
		if c.NumParents() == 0 {
			break
		}
		if c, err = c.Parent(0); err != nil {
			return nil, fmt.Errorf("walking history: %w", err)
		}
	}

	if v.Tag == "" {
		v.Base = "0.0.0"
		v.Version = fmt.Sprintf("0.0.0-dev+%s", v.SHA)
		return v, nil
	}

	if m := semverRe.FindStringSubmatch(v.Tag); m != nil {
		v.Base = fmt.Sprintf("%s.%s.%s", m[1], m[2], m[3])
		v.Version = v.Base
		if m[4] != "" {
			v.Prerelease = m[4]
			v.IsPrerelease = true
			v.Version = v.Base + "-" + v.Prerelease
		}
	} else {
		// Non-semver tag, used raw
		v.Base = strings.TrimPrefix(v.Tag, "v")
		v.Version = v.Base
	}

	if !v.IsRelease {
		v.Version = fmt.Sprintf("%s-dev+%s", v.Version, v.SHA)
	}
	return v, nil
}

// tagsByCommit maps each tagged commit to one of its tag names. Annotated
// tags are peeled to their commit.
func tagsByCommit(repo *git.Repository) (map[plumbing.Hash]string, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	out := make(map[plumbing.Hash]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if tag, err := repo.TagObject(hash); err == nil {
			c, err := tag.Commit()
			if err != nil {
				return nil // tag of a non-commit object
			}
			hash = c.Hash
		}
		name := ref.Name().Short()
		if prev, ok := out[hash]; !ok || name > prev {
			out[hash] = name
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return out, nil
}

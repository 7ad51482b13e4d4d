package gitver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	n    int
}

func newRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return &testRepo{t: t, dir: dir, repo: repo}
}

// commit records a change. Without parents the commit goes on top of HEAD.
func (r *testRepo) commit(parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	r.n++
	name := filepath.Join(r.dir, "file.txt")
	require.NoError(r.t, os.WriteFile(name, []byte(time.Now().String()+string(rune('a'+r.n))), 0o644))
	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)
	_, err = wt.Add("file.txt")
	require.NoError(r.t, err)
	h, err := wt.Commit("change", &git.CommitOptions{
		Author:  &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Unix(int64(1700000000+r.n), 0)},
		Parents: parents,
	})
	require.NoError(r.t, err)
	return h
}

func (r *testRepo) tag(name string, h plumbing.Hash) {
	r.t.Helper()
	_, err := r.repo.CreateTag(name, h, nil)
	require.NoError(r.t, err)
}

func TestDetectVersionUntagged(t *testing.T) {
	r := newRepo(t)
	h := r.commit()

	v, err := DetectVersion(r.dir)
	require.NoError(t, err)
	require.Equal(t, h.String()[:7], v.SHA)
	require.Equal(t, "0.0.0", v.Base)
	require.Equal(t, "0.0.0-dev+"+v.SHA, v.Version)
	require.Equal(t, "master", v.Branch)
	require.False(t, v.IsRelease)
}

func TestDetectVersionAtTag(t *testing.T) {
	r := newRepo(t)
	r.tag("v1.2.3", r.commit())

	v, err := DetectVersion(r.dir)
	require.NoError(t, err)
	require.Equal(t, "1.2.3", v.Version)
	require.Equal(t, "v1.2.3", v.Tag)
	require.True(t, v.IsRelease)
	require.False(t, v.IsPrerelease)
}

func TestDetectVersionAfterPrereleaseTag(t *testing.T) {
	r := newRepo(t)
	r.tag("v2.0.0-rc.1", r.commit())
	r.commit()

	nested := filepath.Join(r.dir, "src", "app")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	v, err := DetectVersion(nested)
	require.NoError(t, err)
	require.Equal(t, "2.0.0", v.Base)
	require.Equal(t, "rc.1", v.Prerelease)
	require.True(t, v.IsPrerelease)
	require.False(t, v.IsRelease)
	require.Equal(t, "2.0.0-rc.1-dev+"+v.SHA, v.Version)
}

func TestDetectVersionIgnoresTagsOnMergedBranch(t *testing.T) {
	r := newRepo(t)
	base := r.commit()
	side := r.commit()
	r.tag("v1.0.0", side)
	// Merge whose first parent skips the tagged commit.
	merge := r.commit(base, side)

	v, err := DetectVersion(r.dir)
	require.NoError(t, err)
	require.Equal(t, merge.String()[:7], v.SHA)
	require.Empty(t, v.Tag)
	require.Equal(t, "0.0.0-dev+"+v.SHA, v.Version)
}

func TestDetectVersionNotARepo(t *testing.T) {
	_, err := DetectVersion(t.TempDir())
	require.Error(t, err)
}

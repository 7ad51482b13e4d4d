package build

import (
	"path/filepath"
	"regexp"

	"github.com/sofmeright/packwright/src/config"
)

// Default entry names for global scripts and styles that name no bundle.
const (
	DefaultScriptsEntry = "scripts"
	DefaultStylesEntry  = "styles"
)

// GlobalAssetEntry is one global script or style feeding a named bundle.
type GlobalAssetEntry struct {
	Entry string
	Path  string
	Lazy  bool
}

// AggregatedEntry is a bundle assembled from one or more global sources.
// Paths keep arrival order; Lazy holds only if every source was lazy.
type AggregatedEntry struct {
	Entry string   `yaml:"entry"`
	Paths []string `yaml:"paths"`
	Lazy  bool     `yaml:"lazy"`
}

var entryExt = regexp.MustCompile(`\.(js|css|scss|sass|less|styl)$`)

// ParseExtraEntries turns declared scripts or styles into GlobalAssetEntry
// values. Input paths resolve under appRoot. The entry name is the declared
// output without its extension; a lazy entry without an output is named after
// its input; everything else feeds defaultEntry.
func ParseExtraEntries(entries []config.ExtraEntry, appRoot, defaultEntry string) []GlobalAssetEntry {
	out := make([]GlobalAssetEntry, 0, len(entries))
	for _, e := range entries {
		g := GlobalAssetEntry{
			Path: absUnder(appRoot, e.Input),
			Lazy: e.Lazy,
		}
		switch {
		case e.Output != "":
			g.Entry = entryExt.ReplaceAllString(e.Output, "")
		case e.Lazy:
			g.Entry = entryExt.ReplaceAllString(filepath.ToSlash(e.Input), "")
		default:
			g.Entry = defaultEntry
		}
		out = append(out, g)
	}
	return out
}

// Aggregate folds entries by name. Names appear in first-seen order and each
// bundle starts lazy, turning eager as soon as any source is eager.
func Aggregate(entries []GlobalAssetEntry) []AggregatedEntry {
	var out []AggregatedEntry
	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.Entry]
		if !ok {
			i = len(out)
			index[e.Entry] = i
			out = append(out, AggregatedEntry{Entry: e.Entry, Lazy: true})
		}
		acc := &out[i]
		acc.Paths = append(acc.Paths, e.Path)
		acc.Lazy = acc.Lazy && e.Lazy
	}
	return out
}

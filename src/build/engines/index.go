package engines

import (
	"fmt"
	"html"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sofmeright/packwright/src/build"
)

var baseHrefRe = regexp.MustCompile(`(?i)<base\s+href="[^"]*"\s*/?>`)

// writeIndex copies the app's index page into the output directory with the
// base href applied and tags for every initial stylesheet and script.
// Scripts load global bundles first, then entry points in plan order.
func writeIndex(plan *build.BuildPlan, files []build.OutputFile) error {
	if plan.Index == "" {
		return nil
	}
	data, err := os.ReadFile(plan.Index)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}
	page := string(data)

	if href := plan.Options.BaseHref; href != "" {
		tag := fmt.Sprintf(`<base href="%s">`, html.EscapeString(href))
		if baseHrefRe.MatchString(page) {
			page = baseHrefRe.ReplaceAllLiteralString(page, tag)
		} else {
			page = insertBefore(page, "</head>", tag)
		}
	}

	byEntry := make(map[string][]build.OutputFile)
	for _, f := range files {
		if f.Initial {
			byEntry[f.Entry] = append(byEntry[f.Entry], f)
		}
	}
	url := func(p string) string {
		return html.EscapeString(strings.TrimSuffix(plan.Options.DeployURL, "/") + "/" + p)
	}
	if plan.Options.DeployURL == "" {
		url = func(p string) string { return html.EscapeString(p) }
	}

	var links, scripts []string
	for _, s := range plan.Styles {
		for _, f := range byEntry[s.Entry] {
			if path.Ext(f.Path) == ".css" {
				links = append(links, fmt.Sprintf(`<link rel="stylesheet" href="%s">`, url(f.Path)))
			}
		}
	}
	for _, s := range plan.Scripts {
		for _, f := range byEntry[s.Entry] {
			scripts = append(scripts, fmt.Sprintf(`<script src="%s"></script>`, url(f.Path)))
		}
	}
	module := plan.Platform != "server"
	for _, e := range plan.Entries {
		for _, f := range byEntry[e.Name] {
			switch path.Ext(f.Path) {
			case ".css":
				links = append(links, fmt.Sprintf(`<link rel="stylesheet" href="%s">`, url(f.Path)))
			case ".js":
				scripts = append(scripts, fmt.Sprintf(`<script src="%s"%s></script>`, url(f.Path), cond(module, ` type="module"`, "")))
			}
		}
	}

	page = insertBefore(page, "</head>", strings.Join(links, ""))
	page = insertBefore(page, "</body>", strings.Join(scripts, ""))

	dst := filepath.Join(plan.Options.OutputPath, filepath.Base(plan.Index))
	if err := os.WriteFile(dst, []byte(page), 0o644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}

// insertBefore places s before the last occurrence of marker, or appends it.
func insertBefore(page, marker, s string) string {
	if s == "" {
		return page
	}
	i := strings.LastIndex(strings.ToLower(page), marker)
	if i < 0 {
		return page + s
	}
	return page[:i] + s + page[i:]
}

package output

import (
	"fmt"
	"io"
	"time"
)

// BannerInfo holds the identity fields shown in the banner.
type BannerInfo struct {
	Version string
	SHA     string
	Branch  string
	Date    string
}

// Banner prints a one-block identity header: name, version, commit and date.
func Banner(w io.Writer, info BannerInfo, color bool) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    %s", Colorize("packwright", ColorBold+ColorCyan, color))
	if info.Version != "" {
		fmt.Fprintf(w, " %s", Colorize(info.Version, ColorCyan, color))
	}
	fmt.Fprintln(w)

	var ident string
	switch {
	case info.SHA != "" && info.Branch != "":
		ident = info.SHA + " · " + info.Branch
	case info.SHA != "":
		ident = info.SHA
	}
	if ident != "" || info.Date != "" {
		line := ident
		if info.Date != "" {
			if line != "" {
				line += "  "
			}
			line += info.Date
		}
		fmt.Fprintf(w, "    %s\n", Dimmed(line, color))
	}
}

// NewBannerInfo stamps the banner with today's UTC date.
func NewBannerInfo(version, sha, branch string) BannerInfo {
	return BannerInfo{
		Version: version,
		SHA:     sha,
		Branch:  branch,
		Date:    time.Now().UTC().Format("2006-01-02"),
	}
}

package extract

import (
	"regexp"
	"strings"
)

// plan is the parsed execution plan behind a selector expression.
type plan struct {
	audioOnly bool
	// bitrate is the mp3 transcode target, e.g. "192k".
	bitrate string
	// maxHeight caps video resolution; 0 means best available.
	maxHeight int
}

var heightRe = regexp.MustCompile(`height<=(\d+)`)

// parseSelector interprets the resolver's selector grammar. Anything
// unrecognized degrades to the best-available video plan, mirroring
// the resolver's universal fallback.
func parseSelector(sel string) plan {
	if rest, ok := strings.CutPrefix(sel, "bestaudio:"); ok {
		p := plan{audioOnly: true, bitrate: rest}
		if p.bitrate == "" {
			p.bitrate = "192k"
		}
		return p
	}
	var p plan
	if m := heightRe.FindStringSubmatch(sel); m != nil {
		p.maxHeight = atoiSafe(m[1])
	}
	return p
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

package player

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

	looseVideoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)([^"&?/\s]{11})`),
		regexp.MustCompile(`youtu\.be/([^"&?/\s]{11})`),
	}
)

// ParseVideoID extracts the 11 character video id from the usual watch, short
// link, embed and shorts URL forms.
func ParseVideoID(raw string) (string, error) {
	id := videoIDFromURL(raw)
	if len(id) != 11 {
		id = ""
		for _, re := range looseVideoPatterns {
			if m := re.FindStringSubmatch(raw); m != nil {
				id = m[1]
				break
			}
		}
	}
	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVideoURL, raw)
	}
	return id, nil
}

func videoIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch host {
	case "youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		if len(parts) >= 2 {
			switch parts[0] {
			case "embed", "shorts", "v", "live":
				return parts[1]
			}
		}
	case "youtu.be":
		return parts[0]
	}
	return ""
}

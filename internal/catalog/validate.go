package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks and normalizes in. Name and URL are trimmed.
func (in *StreamInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.URL = strings.TrimSpace(in.URL)

	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidStream)
	}
	if in.URL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidStream)
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidStream, in.Kind)
	}
	u, err := url.Parse(in.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: url %q is not a valid absolute URL", ErrInvalidStream, in.URL)
	}
	return nil
}

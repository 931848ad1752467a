package catalog

// StreamID uniquely identifies a catalog entry. It never changes once assigned.
type StreamID string

// MediaKind selects the player technology used for a stream.
type MediaKind string

const (
	// KindHLS is a streaming-media source played by the HLS engine.
	KindHLS MediaKind = "hls"
	// KindYouTube is an embedded-video-service source.
	KindYouTube MediaKind = "youtube"
)

// Valid reports whether k is a known media kind.
func (k MediaKind) Valid() bool {
	return k == KindHLS || k == KindYouTube
}

// Stream is one selectable catalog entry.
// The JSON shape is the stored document format.
type Stream struct {
	ID       StreamID  `json:"id"`
	Name     string    `json:"name"`
	Kind     MediaKind `json:"type"`
	URL      string    `json:"url"`
	AutoLoad bool      `json:"isDefault"`
}

// StreamInput carries the user editable fields of a Stream.
type StreamInput struct {
	Name     string    `json:"name"`
	Kind     MediaKind `json:"type"`
	URL      string    `json:"url"`
	AutoLoad bool      `json:"isDefault"`
}

package wall

import (
	"videowall/internal/catalog"
	"videowall/internal/player"
)

// InstanceID identifies one mounted tile. It is generated per mount and never
// reused.
type InstanceID string

// Mount describes the structure a tile needs on the surface: a wrapper, the
// inner mount point the player renders into, a label and a remove control.
type Mount struct {
	InstanceID InstanceID        `json:"instance_id"`
	WrapperID  string            `json:"wrapper_id"`
	MountID    string            `json:"mount_id"`
	StreamID   catalog.StreamID  `json:"stream_id"`
	Label      string            `json:"label"`
	Kind       catalog.MediaKind `json:"type"`
}

// Surface is the presentation a wall drives.
type Surface interface {
	MountTile(m Mount)
	// ShowTileError replaces the tile's player with an inline message.
	ShowTileError(wrapperID, message string)
	RemoveTile(wrapperID string)
	SetActive(wrapperID string, active bool)
	// SetGrid applies a column/row template; (0, 0) clears it.
	SetGrid(cols, rows int)
	// TileOrder returns wrapper ids in presentation order.
	TileOrder() []string
	// FullscreenElement reports the element currently presented fullscreen.
	FullscreenElement() (player.Handle, bool)
	RequestFullscreen(target player.Handle) error
	ExitFullscreen()
}

// Recorder receives wall metrics. Any method may be a no-op.
type Recorder interface {
	TileMounted(kind string)
	TileFailed(kind string)
	FocusChanged()
	GateDrained(n int)
}

type nopRecorder struct{}

func (nopRecorder) TileMounted(string) {}
func (nopRecorder) TileFailed(string)  {}
func (nopRecorder) FocusChanged()      {}
func (nopRecorder) GateDrained(int)    {}

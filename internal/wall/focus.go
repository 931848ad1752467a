package wall

import "log/slog"

// Focus enforces that at most one adapter is audible and that the active
// indicator sits on that tile, or on none.
type Focus struct {
	reg     *Registry
	surface Surface
	rec     Recorder
	log     *slog.Logger
	active  InstanceID
}

// NewFocus returns a controller over reg with no active tile.
func NewFocus(reg *Registry, surface Surface, rec Recorder, log *slog.Logger) *Focus {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Focus{reg: reg, surface: surface, rec: rec, log: log}
}

// Active returns the tile carrying the indicator.
func (f *Focus) Active() (InstanceID, bool) {
	return f.active, f.active != ""
}

func (f *Focus) setIndicator(id InstanceID) {
	if f.active == id {
		return
	}
	if prev, ok := f.reg.Get(f.active); ok {
		f.surface.SetActive(prev.WrapperID, false)
	}
	if next, ok := f.reg.Get(id); ok {
		f.surface.SetActive(next.WrapperID, true)
	}
	f.active = id
	f.rec.FocusChanged()
}

// ActivateExclusive unmutes id, mutes every other adapter and moves the
// indicator to id.
func (f *Focus) ActivateExclusive(id InstanceID) {
	target, ok := f.reg.Get(id)
	if !ok {
		return
	}
	f.reg.Each(func(e *Entry) {
		if e.ID != id && !e.Adapter.IsMuted() {
			e.Adapter.Mute()
		}
	})
	if target.Adapter.IsMuted() {
		target.Adapter.Unmute()
	}
	f.setIndicator(id)
}

// ToggleMuteInPlace mutes id if it is audible, clearing its indicator.
// Otherwise it makes id the exclusive audible tile.
func (f *Focus) ToggleMuteInPlace(id InstanceID) {
	e, ok := f.reg.Get(id)
	if !ok {
		return
	}
	if e.Adapter.IsMuted() {
		f.ActivateExclusive(id)
		return
	}
	e.Adapter.Mute()
	if f.active == id {
		f.setIndicator("")
	}
}

// ClearAllAudio mutes every adapter and removes the indicator.
func (f *Focus) ClearAllAudio() {
	f.reg.Each(func(e *Entry) {
		if !e.Adapter.IsMuted() {
			e.Adapter.Mute()
		}
	})
	f.setIndicator("")
}

// ownsFullscreen reports whether fullscreen is active and whether e's
// presentable element is the one shown.
func (f *Focus) ownsFullscreen(e *Entry) (fullscreen, owned bool) {
	h, fs := f.surface.FullscreenElement()
	if !fs {
		return false, false
	}
	return true, h == e.Adapter.FullscreenTarget()
}

// Click handles a single click on a tile.
func (f *Focus) Click(id InstanceID) {
	e, ok := f.reg.Get(id)
	if !ok {
		return
	}
	fs, owned := f.ownsFullscreen(e)
	switch {
	case fs && owned:
		f.ToggleMuteInPlace(id)
	case fs:
		f.log.Debug("click ignored, another tile is fullscreen", slog.String("instance_id", string(id)))
	case e.Adapter.IsMuted():
		f.ActivateExclusive(id)
	default:
		e.Adapter.Mute()
		if f.active == id {
			f.setIndicator("")
		}
	}
}

// DoubleClick focuses a tile and presents it fullscreen; on the tile that is
// already fullscreen it leaves fullscreen instead.
func (f *Focus) DoubleClick(id InstanceID) {
	e, ok := f.reg.Get(id)
	if !ok {
		return
	}
	fs, owned := f.ownsFullscreen(e)
	if fs {
		if owned {
			f.surface.ExitFullscreen()
		}
		return
	}

	f.ActivateExclusive(id)
	e.Adapter.Play()
	if !e.Adapter.SupportsFullscreen() {
		f.log.Info("fullscreen must be entered with the player's own control",
			slog.String("instance_id", string(id)))
		return
	}
	if err := f.surface.RequestFullscreen(e.Adapter.FullscreenTarget()); err != nil {
		f.log.Warn("fullscreen request failed",
			slog.String("instance_id", string(id)),
			slog.String("error", err.Error()))
	}
}

// FullscreenExited runs whenever the surface reports that nothing is
// fullscreen any more.
func (f *Focus) FullscreenExited() {
	f.ClearAllAudio()
}

// MuteChanged runs after id's mute state changed outside the wall, for
// example through the player's own controls or an autoplay policy. An
// unmuted tile takes the audio focus; a muted one loses the indicator.
func (f *Focus) MuteChanged(id InstanceID) {
	e, ok := f.reg.Get(id)
	if !ok {
		return
	}
	if !e.Adapter.IsMuted() {
		f.ActivateExclusive(id)
		return
	}
	if f.active == id {
		f.setIndicator("")
	}
}

// Forget drops the indicator from id before its entry leaves the registry.
func (f *Focus) Forget(id InstanceID) {
	if f.active == id {
		f.setIndicator("")
	}
}

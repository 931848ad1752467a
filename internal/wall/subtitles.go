package wall

// Subtitles holds the global subtitle flag and pushes it to adapters, which
// apply their own track policy.
type Subtitles struct {
	reg     *Registry
	enabled bool
}

// NewSubtitles returns a reconciler over reg.
func NewSubtitles(reg *Registry, enabled bool) *Subtitles {
	return &Subtitles{reg: reg, enabled: enabled}
}

// Enabled reports the global flag.
func (s *Subtitles) Enabled() bool { return s.enabled }

// SetEnabled changes the flag and reapplies it to every adapter.
func (s *Subtitles) SetEnabled(enabled bool) {
	if s.enabled == enabled {
		return
	}
	s.enabled = enabled
	s.ApplyAll()
}

// Apply pushes the flag to one adapter.
func (s *Subtitles) Apply(id InstanceID) {
	if e, ok := s.reg.Get(id); ok {
		e.Adapter.SetSubtitles(s.enabled)
	}
}

// ApplyAll pushes the flag to every adapter.
func (s *Subtitles) ApplyAll() {
	s.reg.Each(func(e *Entry) {
		e.Adapter.SetSubtitles(s.enabled)
	})
}

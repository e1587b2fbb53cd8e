package gesture

import "log/slog"

// TapZonePolicy navigates on clicks in the top band of the surface and
// ignores presses. It never pauses.
type TapZonePolicy struct {
	nav    Navigator
	logger *slog.Logger
}

// NewTapZonePolicy returns a tap-zone policy driving nav. A nil logger uses
// slog.Default().
func NewTapZonePolicy(nav Navigator, logger *slog.Logger) *TapZonePolicy {
	if logger == nil {
		logger = slog.Default()
	}
	return &TapZonePolicy{nav: nav, logger: logger}
}

// Handle implements Policy.
func (p *TapZonePolicy) Handle(ev Event) {
	switch ev.Kind {
	case Down:
		p.nav.Interact()
	case Click:
		p.nav.Interact()
		if !p.nav.NavigationEnabled() || !InNavBand(ev.Y, ev.Height) {
			return
		}
		tap(p.nav, ev, p.logger)
	case Up, Leave:
	}
}

// Reset implements Policy.
func (p *TapZonePolicy) Reset() {}

// InNavBand reports whether y lies in the top navigation band.
func InNavBand(y, height float64) bool {
	if height <= 0 {
		return false
	}
	return y < height*NavBand
}

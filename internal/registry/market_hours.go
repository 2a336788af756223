package registry

import "time"

// Open reports whether t falls inside the trading window. A nil or zero
// window is always open. The window wraps across the week boundary the way
// FX markets do (e.g. Sunday 21:00 UTC to Friday 21:00 UTC).
func (h *MarketHours) Open(t time.Time) bool {
	if h == nil {
		return true
	}
	if h.OpenWeekday == h.CloseWeekday && h.OpenHour == h.CloseHour {
		return true
	}

	u := t.UTC()
	now := int(u.Weekday())*24 + u.Hour()
	opens := h.OpenWeekday*24 + h.OpenHour
	closes := h.CloseWeekday*24 + h.CloseHour

	if opens <= closes {
		return now >= opens && now < closes
	}
	// window wraps past Saturday midnight
	return now >= opens || now < closes
}

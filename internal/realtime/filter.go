package realtime

import "slices"

// Filter selects the events a subscriber receives. An empty Tables set
// means every table. RecipientID and NotificationKinds only narrow
// notification events; other tables pass through.
type Filter struct {
	Tables            []string
	RecipientID       string
	NotificationKinds []Kind
}

func (f Filter) Match(ev ChangeEvent) bool {
	if len(f.Tables) > 0 && !slices.Contains(f.Tables, ev.Table) {
		return false
	}

	if ev.Table != TableNotifications {
		return true
	}

	if len(f.NotificationKinds) > 0 && !slices.Contains(f.NotificationKinds, ev.Kind) {
		return false
	}

	if f.RecipientID != "" && ev.RecipientID() != f.RecipientID {
		return false
	}

	return true
}

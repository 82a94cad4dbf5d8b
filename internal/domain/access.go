package domain

// IsLocked reports whether an item of itemTier is out of reach for a viewer of viewerTier.
// This is the only access decision in the system.
func IsLocked(viewerTier, itemTier Tier) bool {
	return itemTier.Rank() > viewerTier.Rank()
}

// Classify annotates each event with its lock state for viewerTier, preserving order
func Classify(viewerTier Tier, events []*Event) []EventView {
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		views = append(views, EventView{
			Event:  *e,
			Locked: IsLocked(viewerTier, e.Tier),
		})
	}
	return views
}

// FilterByTier keeps only the views whose event tier equals t
func FilterByTier(views []EventView, t Tier) []EventView {
	out := make([]EventView, 0, len(views))
	for _, v := range views {
		if v.Tier == t {
			out = append(out, v)
		}
	}
	return out
}

// ResolveFilter interprets a requested filter for a viewer. It returns the tier
// to filter by and true, or false meaning "All" when raw is empty, unknown, or
// above the viewer's rank.
func ResolveFilter(viewerTier Tier, raw string) (Tier, bool) {
	if raw == "" {
		return TierFree, false
	}
	t, err := ParseTier(raw)
	if err != nil || IsLocked(viewerTier, t) {
		return TierFree, false
	}
	return t, true
}

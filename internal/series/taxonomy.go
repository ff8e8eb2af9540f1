package series

import "strings"

// Categorical fields are validated against these sets before anything
// is written, so garbage values never reach the store.

func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuing", "ongoing":
		return "continuing"
	case "ended", "completed":
		return "ended"
	case "cancelled", "canceled":
		return "cancelled"
	case "hiatus", "on hiatus", "on_hiatus":
		return "hiatus"
	default:
		return ""
	}
}

func normalizeBooktype(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "print":
		return "print"
	case "oneshot", "one shot", "one-shot":
		return "oneshot"
	case "tpb", "trade paperback":
		return "tpb"
	case "gn", "graphic novel":
		return "gn"
	case "hc", "hardcover":
		return "hc"
	case "web":
		return "web"
	case "digital":
		return "digital"
	default:
		return ""
	}
}

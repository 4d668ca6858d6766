package notifier

import (
	"strings"

	"slotwatch/internal/availability"
)

// DefaultTitle is the push title for a slot alert.
const DefaultTitle = "Found dump slots"

// FormatMessage renders one "<date>: <slot>, <slot>" line per date,
// dates sorted ascending.
func FormatMessage(n availability.Normalized) string {
	var b strings.Builder
	for i, d := range n.Dates() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(d)
		b.WriteString(": ")
		b.WriteString(strings.Join(n[d], ", "))
	}
	return b.String()
}

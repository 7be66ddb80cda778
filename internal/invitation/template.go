// Package invitation holds the public invitation page logic: which layout to
// render, which sections appear, the cover/open state, RSVP and guestbook.
package invitation

// Template is a visual layout for the invitation page
type Template int

const (
	Modern Template = iota
	Classic
	Rustic
	Luxury
)

var templateIDs = [...]string{
	Modern:  "modern",
	Classic: "classic",
	Rustic:  "rustic",
	Luxury:  "luxury",
}

func (t Template) String() string {
	if t < Modern || t > Luxury {
		return templateIDs[Modern]
	}
	return templateIDs[t]
}

// ParseTemplate maps a stored identifier to a layout. Unknown values, including
// the empty string, fall back to Modern.
func ParseTemplate(id string) Template {
	switch id {
	case "classic":
		return Classic
	case "rustic":
		return Rustic
	case "luxury":
		return Luxury
	default:
		return Modern
	}
}

// Templates lists every layout in display order
func Templates() []Template {
	return []Template{Modern, Classic, Rustic, Luxury}
}

// TemplateIDs lists every stored identifier
func TemplateIDs() []string {
	out := make([]string, 0, len(templateIDs))
	for _, t := range Templates() {
		out = append(out, t.String())
	}
	return out
}

// Label is the human name shown in the settings form
func (t Template) Label() string {
	switch t {
	case Classic:
		return "Classic Elegant"
	case Rustic:
		return "Rustic Nature"
	case Luxury:
		return "Luxury Gold"
	default:
		return "Modern Fullscreen"
	}
}

// Page is the html/template name for the layout
func (t Template) Page() string {
	switch t {
	case Classic:
		return "invitation_classic.html"
	case Rustic:
		return "invitation_rustic.html"
	case Luxury:
		return "invitation_luxury.html"
	case Modern:
		return "invitation_modern.html"
	default:
		return "invitation_modern.html"
	}
}

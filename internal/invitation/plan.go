package invitation

import "weddingpress-web/internal/models"

// Section is one block of the opened invitation
type Section string

const (
	SectionCouple    Section = "couple"
	SectionEvents    Section = "events"
	SectionStory     Section = "story"
	SectionGallery   Section = "gallery"
	SectionGifts     Section = "gifts"
	SectionRSVP      Section = "rsvp"
	SectionGuestBook Section = "guestbook"
)

// Plan returns the sections to render, in order. RSVP is never gated.
func Plan(w models.Wedding) []Section {
	sections := []Section{SectionCouple}
	if w.ShowEvents {
		sections = append(sections, SectionEvents)
	}
	if w.ShowStory {
		sections = append(sections, SectionStory)
	}
	if w.ShowGallery {
		sections = append(sections, SectionGallery)
	}
	if w.ShowGifts && len(w.GiftAccounts) > 0 {
		sections = append(sections, SectionGifts)
	}
	sections = append(sections, SectionRSVP)
	if w.ShowGuestBook {
		sections = append(sections, SectionGuestBook)
	}
	return sections
}

// Has reports whether s is in the plan
func Has(plan []Section, s Section) bool {
	for _, p := range plan {
		if p == s {
			return true
		}
	}
	return false
}

package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"weddingpress-web/internal/forms"
	"weddingpress-web/internal/listing"
	"weddingpress-web/internal/models"
)

// Collection is a backend collection that lists, deletes and saves T
type Collection[T listing.Entity] interface {
	listing.Remote[T]
	forms.Writer[T]
}

// GuestCollection also knows the guest groups
type GuestCollection interface {
	Collection[models.Guest]
	Groups(ctx context.Context) ([]string, error)
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

// EventsResource configures the events page
func EventsResource(repo Collection[models.Event]) ResourceConfig[models.Event] {
	def := forms.EventDefinition(repo)
	return ResourceConfig[models.Event]{
		Name:     "events",
		Title:    "Events",
		Singular: "event",
		Remote:   repo,
		Match: func(e models.Event, q listing.Query) bool {
			return listing.ContainsFold(q.Search, e.Name, e.Address)
		},
		Columns: []Column[models.Event]{
			{Header: "Name", Value: func(e models.Event) string { return e.Name }},
			{Header: "Date", Value: func(e models.Event) string { return day(e.Date) }},
			{Header: "Time", Value: func(e models.Event) string { return e.StartTime + " - " + e.EndTime }},
			{Header: "Address", Value: func(e models.Event) string { return e.Address }},
		},
		Form: &def,
		Fields: []FieldSpec{
			{Name: "name", Label: "Event name", Type: "text"},
			{Name: "date", Label: "Date", Type: "date"},
			{Name: "start_time", Label: "Start time", Type: "time"},
			{Name: "end_time", Label: "End time", Type: "time"},
			{Name: "address", Label: "Address", Type: "textarea"},
			{Name: "maps_url", Label: "Google Maps link", Type: "url"},
		},
	}
}

// StoriesResource configures the love story page
func StoriesResource(repo Collection[models.Story]) ResourceConfig[models.Story] {
	def := forms.StoryDefinition(repo)
	return ResourceConfig[models.Story]{
		Name:     "stories",
		Title:    "Stories",
		Singular: "story",
		Remote:   repo,
		Match: func(st models.Story, q listing.Query) bool {
			return listing.ContainsFold(q.Search, st.Title, st.Description)
		},
		Columns: []Column[models.Story]{
			{Header: "Order", Value: func(s models.Story) string { return strconv.Itoa(s.Order) }},
			{Header: "Title", Value: func(s models.Story) string { return s.Title }},
			{Header: "Date", Value: func(s models.Story) string { return day(s.Date) }},
		},
		Form: &def,
		Fields: []FieldSpec{
			{Name: "title", Label: "Title", Type: "text"},
			{Name: "date", Label: "Date", Type: "date"},
			{Name: "description", Label: "Story", Type: "textarea"},
			{Name: "order", Label: "Order", Type: "number"},
		},
	}
}

// GalleryResource configures the gallery page; items are added, never edited
func GalleryResource(repo Collection[models.GalleryItem]) ResourceConfig[models.GalleryItem] {
	def := forms.GalleryDefinition(repo)
	return ResourceConfig[models.GalleryItem]{
		Name:     "gallery",
		Title:    "Gallery",
		Singular: "gallery item",
		Remote:   repo,
		Match: func(g models.GalleryItem, q listing.Query) bool {
			return listing.ContainsFold(q.Search, g.Caption)
		},
		Columns: []Column[models.GalleryItem]{
			{Header: "Type", Value: func(g models.GalleryItem) string { return string(g.FileType) }},
			{Header: "Caption", Value: func(g models.GalleryItem) string { return g.Caption }},
			{Header: "File", Value: func(g models.GalleryItem) string { return g.FileURL }},
		},
		Form: &def,
		Fields: []FieldSpec{
			{Name: "file_url", Label: "File", Type: "url", Upload: true},
			{Name: "file_type", Label: "Type", Type: "select", Options: []Option{
				{Value: string(models.FileTypeImage), Label: "Image"},
				{Value: string(models.FileTypeVideo), Label: "Video"},
			}},
			{Name: "caption", Label: "Caption", Type: "text"},
		},
	}
}

// GuestLink builds the public invitation URL of a guest
func GuestLink(publicURL, slug string) string {
	return strings.TrimRight(publicURL, "/") + "/u/" + slug
}

// GuestsResource configures the guest list: search, group filter, invitation
// links, import and bulk delete
func GuestsResource(repo GuestCollection, publicURL string) ResourceConfig[models.Guest] {
	def := forms.GuestDefinition(repo)
	return ResourceConfig[models.Guest]{
		Name:        "guests",
		Title:       "Guests",
		Singular:    "guest",
		Remote:      repo,
		FilterKey:   listing.FilterGroup,
		FilterLabel: "All groups",
		Filters:     repo.Groups,
		Columns: []Column[models.Guest]{
			{Header: "Name", Value: func(g models.Guest) string { return g.Name }},
			{Header: "Group", Value: func(g models.Guest) string { return g.Group }},
			{Header: "RSVP", Value: func(g models.Guest) string {
				if !g.IsRSVP {
					return "Waiting"
				}
				if g.TotalAttendance == 0 {
					return "Not attending"
				}
				return "Attending"
			}},
			{Header: "Attendance", Value: func(g models.Guest) string { return strconv.Itoa(g.TotalAttendance) }},
		},
		Form: &def,
		Fields: []FieldSpec{
			{Name: "name", Label: "Name", Type: "text"},
			{Name: "group", Label: "Group", Type: "text"},
		},
		Link:   func(g models.Guest) string { return GuestLink(publicURL, g.Slug) },
		Bulk:   true,
		Import: true,
		Match: func(g models.Guest, q listing.Query) bool {
			return listing.ContainsFold(q.Search, g.Name) && (q.Filter == "" || g.Group == q.Filter)
		},
	}
}

// GiftsResource configures the digital gift accounts page
func GiftsResource(repo Collection[models.GiftAccount]) ResourceConfig[models.GiftAccount] {
	def := forms.GiftAccountDefinition(repo)
	return ResourceConfig[models.GiftAccount]{
		Name:     "gifts",
		Title:    "Gift accounts",
		Singular: "gift account",
		Remote:   repo,
		Match: func(g models.GiftAccount, q listing.Query) bool {
			return listing.ContainsFold(q.Search, g.BankName, g.AccountName)
		},
		Columns: []Column[models.GiftAccount]{
			{Header: "Bank / e-wallet", Value: func(g models.GiftAccount) string { return g.BankName }},
			{Header: "Account number", Value: func(g models.GiftAccount) string { return g.AccountNumber }},
			{Header: "Account name", Value: func(g models.GiftAccount) string { return g.AccountName }},
		},
		Form: &def,
		Fields: []FieldSpec{
			{Name: "bank_name", Label: "Bank or e-wallet", Type: "text"},
			{Name: "account_number", Label: "Account number", Type: "text"},
			{Name: "account_name", Label: "Account holder", Type: "text"},
			{Name: "qr_code_url", Label: "QR code", Type: "url", Upload: true},
		},
	}
}

// GuestBookResource configures guestbook moderation
func GuestBookResource(repo listing.Remote[models.AdminGuestBookEntry]) ResourceConfig[models.AdminGuestBookEntry] {
	return ResourceConfig[models.AdminGuestBookEntry]{
		Name:        "guestbook",
		Title:       "Guestbook",
		Singular:    "message",
		Remote:      repo,
		FilterKey:   listing.FilterStatus,
		FilterLabel: "All statuses",
		Filters: func(context.Context) ([]string, error) {
			return []string{string(models.GuestBookPending), string(models.GuestBookApproved)}, nil
		},
		Columns: []Column[models.AdminGuestBookEntry]{
			{Header: "Guest", Value: func(e models.AdminGuestBookEntry) string { return e.GuestName }},
			{Header: "Message", Value: func(e models.AdminGuestBookEntry) string { return e.Message }},
			{Header: "Status", Value: func(e models.AdminGuestBookEntry) string { return string(e.Status) }},
			{Header: "Date", Value: func(e models.AdminGuestBookEntry) string { return day(e.CreatedAt) }},
		},
		Status:   func(e models.AdminGuestBookEntry) string { return string(e.Status) },
		Bulk:     true,
		Moderate: true,
		Match: func(e models.AdminGuestBookEntry, q listing.Query) bool {
			return listing.ContainsFold(q.Search, e.GuestName, e.Message) && (q.Filter == "" || string(e.Status) == q.Filter)
		},
	}
}

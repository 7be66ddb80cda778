package forms

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"weddingpress-web/internal/invitation"
	"weddingpress-web/internal/models"
	"weddingpress-web/internal/validation"
)

// Writer is a remote collection that can create and update T
type Writer[T any] interface {
	Create(ctx context.Context, body any) (*T, error)
	Update(ctx context.Context, id uint, body any) (*T, error)
}

// WeddingWriter saves the wedding settings
type WeddingWriter interface {
	Update(ctx context.Context, body any) error
}

// StatusWriter moderates guestbook entries
type StatusWriter interface {
	SetStatus(ctx context.Context, id uint, status models.GuestBookStatus) error
}

func write[T any](ctx context.Context, w Writer[T], mode Mode, id uint, body any) error {
	if mode == ModeEdit {
		_, err := w.Update(ctx, id, body)
		return err
	}
	_, err := w.Create(ctx, body)
	return err
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// EventInput is the body of POST /admin/event and PUT /admin/event/{id}
type EventInput struct {
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Address   string    `json:"address"`
	MapsURL   string    `json:"maps_url"`
}

// EventDefinition builds the event form
func EventDefinition(w Writer[models.Event]) Definition[models.Event] {
	return Definition[models.Event]{
		Name: "event",
		Schema: validation.Schema{
			{Name: "name", Rules: []validation.Rule{validation.Required().Msg("Event name is required")}},
			{Name: "date", Rules: []validation.Rule{validation.Required(), validation.Date()}},
			{Name: "start_time", Rules: []validation.Rule{validation.TimeOfDay()}},
			{Name: "end_time", Rules: []validation.Rule{validation.TimeOfDay()}},
			{Name: "address"},
			{Name: "maps_url", Rules: []validation.Rule{validation.URL().OrEmpty()}},
		},
		Defaults: func() validation.Values {
			return validation.Values{
				"name":       "",
				"date":       today(),
				"start_time": "08:00",
				"end_time":   "10:00",
				"address":    "",
				"maps_url":   "",
			}
		},
		FromEntity: func(e models.Event) validation.Values {
			return validation.Values{
				"name":       e.Name,
				"date":       validation.FormatDate(e.Date),
				"start_time": e.StartTime,
				"end_time":   e.EndTime,
				"address":    e.Address,
				"maps_url":   e.MapsURL,
			}
		},
		ID: func(e models.Event) uint { return e.ID },
		Submit: func(ctx context.Context, mode Mode, id uint, v validation.Values) error {
			date, err := validation.ParseDate(v["date"])
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			return write(ctx, w, mode, id, EventInput{
				Name:      v["name"],
				Date:      date,
				StartTime: v["start_time"],
				EndTime:   v["end_time"],
				Address:   v["address"],
				MapsURL:   v["maps_url"],
			})
		},
	}
}

// StoryInput is the body of the story endpoints
type StoryInput struct {
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
}

// StoryDefinition builds the story form
func StoryDefinition(w Writer[models.Story]) Definition[models.Story] {
	return Definition[models.Story]{
		Name: "story",
		Schema: validation.Schema{
			{Name: "title", Rules: []validation.Rule{validation.Required().Msg("Title is required")}},
			{Name: "date", Rules: []validation.Rule{validation.Required(), validation.Date()}},
			{Name: "description"},
			{Name: "order", Rules: []validation.Rule{validation.IntMin(0).Msg("Order must not be negative")}},
		},
		Defaults: func() validation.Values {
			return validation.Values{"title": "", "date": today(), "description": "", "order": "0"}
		},
		FromEntity: func(s models.Story) validation.Values {
			return validation.Values{
				"title":       s.Title,
				"date":        validation.FormatDate(s.Date),
				"description": s.Description,
				"order":       strconv.Itoa(s.Order),
			}
		},
		ID: func(s models.Story) uint { return s.ID },
		Submit: func(ctx context.Context, mode Mode, id uint, v validation.Values) error {
			date, err := validation.ParseDate(v["date"])
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			return write(ctx, w, mode, id, StoryInput{
				Title:       v["title"],
				Date:        date,
				Description: v["description"],
				Order:       atoi(v["order"]),
			})
		},
	}
}

// GalleryInput is the body of POST /admin/gallery
type GalleryInput struct {
	FileURL  string          `json:"file_url"`
	FileType models.FileType `json:"file_type"`
	Caption  string          `json:"caption"`
}

// GalleryDefinition builds the gallery form; gallery items cannot be edited
func GalleryDefinition(w Writer[models.GalleryItem]) Definition[models.GalleryItem] {
	return Definition[models.GalleryItem]{
		Name: "gallery item",
		Schema: validation.Schema{
			{Name: "file_url", Rules: []validation.Rule{validation.URL().Msg("File URL is required. Upload a file first.")}},
			{Name: "file_type", Rules: []validation.Rule{validation.OneOf(string(models.FileTypeImage), string(models.FileTypeVideo))}},
			{Name: "caption"},
		},
		Defaults: func() validation.Values {
			return validation.Values{"file_url": "", "file_type": string(models.FileTypeImage), "caption": ""}
		},
		FromEntity: func(g models.GalleryItem) validation.Values {
			return validation.Values{"file_url": g.FileURL, "file_type": string(g.FileType), "caption": g.Caption}
		},
		ID:         func(g models.GalleryItem) uint { return g.ID },
		CreateOnly: true,
		Submit: func(ctx context.Context, mode Mode, id uint, v validation.Values) error {
			return write(ctx, w, mode, id, GalleryInput{
				FileURL:  v["file_url"],
				FileType: models.FileType(v["file_type"]),
				Caption:  v["caption"],
			})
		},
	}
}

// GuestInput is the body of the guest endpoints
type GuestInput struct {
	Name  string `json:"name"`
	Group string `json:"group"`
}

// GuestDefinition builds the guest form
func GuestDefinition(w Writer[models.Guest]) Definition[models.Guest] {
	return Definition[models.Guest]{
		Name: "guest",
		Schema: validation.Schema{
			{Name: "name", Rules: []validation.Rule{validation.Required().Msg("Guest name is required")}},
			{Name: "group"},
		},
		Defaults: func() validation.Values {
			return validation.Values{"name": "", "group": ""}
		},
		FromEntity: func(g models.Guest) validation.Values {
			return validation.Values{"name": g.Name, "group": g.Group}
		},
		ID: func(g models.Guest) uint { return g.ID },
		Submit: func(ctx context.Context, mode Mode, id uint, v validation.Values) error {
			return write(ctx, w, mode, id, GuestInput{Name: v["name"], Group: v["group"]})
		},
	}
}

// GiftAccountInput is the body of the gift account endpoints
type GiftAccountInput struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	QRCodeURL     string `json:"qr_code_url"`
}

// GiftAccountDefinition builds the gift account form
func GiftAccountDefinition(w Writer[models.GiftAccount]) Definition[models.GiftAccount] {
	return Definition[models.GiftAccount]{
		Name: "gift account",
		Schema: validation.Schema{
			{Name: "bank_name", Rules: []validation.Rule{validation.MinLen(2).Msg("Bank or e-wallet name is required.")}},
			{Name: "account_number", Rules: []validation.Rule{validation.MinLen(3).Msg("Account number is required.")}},
			{Name: "account_name", Rules: []validation.Rule{validation.MinLen(2).Msg("Account holder name is required.")}},
			{Name: "qr_code_url"},
		},
		Defaults: func() validation.Values {
			return validation.Values{"bank_name": "", "account_number": "", "account_name": "", "qr_code_url": ""}
		},
		FromEntity: func(g models.GiftAccount) validation.Values {
			return validation.Values{
				"bank_name":      g.BankName,
				"account_number": g.AccountNumber,
				"account_name":   g.AccountName,
				"qr_code_url":    g.QRCodeURL,
			}
		},
		ID: func(g models.GiftAccount) uint { return g.ID },
		Submit: func(ctx context.Context, mode Mode, id uint, v validation.Values) error {
			return write(ctx, w, mode, id, GiftAccountInput{
				BankName:      v["bank_name"],
				AccountNumber: v["account_number"],
				AccountName:   v["account_name"],
				QRCodeURL:     v["qr_code_url"],
			})
		},
	}
}

// WeddingInput is the body of PUT /admin/wedding
type WeddingInput struct {
	WeddingTitle  string            `json:"wedding_title"`
	CoverImageURL string            `json:"cover_image_url"`
	MusicURL      string            `json:"music_url"`
	ThemeColor    string            `json:"theme_color"`
	Template      string            `json:"template"`
	ShowEvents    bool              `json:"show_events"`
	ShowStory     bool              `json:"show_story"`
	ShowGallery   bool              `json:"show_gallery"`
	ShowGifts     bool              `json:"show_gifts"`
	ShowGuestBook bool              `json:"show_guest_book"`
	GroomBride    models.GroomBride `json:"groom_bride"`
}

// WeddingFlags are the section visibility checkboxes
var WeddingFlags = []string{"show_events", "show_story", "show_gallery", "show_gifts", "show_guest_book"}

// WeddingDefinition builds the wedding settings form. It is always in edit mode.
func WeddingDefinition(w WeddingWriter) Definition[models.Wedding] {
	schema := validation.Schema{
		{Name: "wedding_title", Rules: []validation.Rule{validation.MinLen(1).Msg("Title must not be empty")}},
		{Name: "cover_image_url", Rules: []validation.Rule{validation.URL().OrEmpty()}},
		{Name: "music_url", Rules: []validation.Rule{validation.URL().OrEmpty()}},
		{Name: "theme_color", Rules: []validation.Rule{validation.HexColor().OrEmpty()}},
		{Name: "template", Rules: []validation.Rule{validation.OneOf(invitation.TemplateIDs()...)}},
		{Name: "groom_name"},
		{Name: "groom_photo_url", Rules: []validation.Rule{validation.URL().OrEmpty()}},
		{Name: "groom_bio"},
		{Name: "bride_name"},
		{Name: "bride_photo_url", Rules: []validation.Rule{validation.URL().OrEmpty()}},
		{Name: "bride_bio"},
	}
	for _, f := range WeddingFlags {
		schema = append(schema, validation.Field{Name: f})
	}

	return Definition[models.Wedding]{
		Name:   "wedding",
		Schema: schema,
		Defaults: func() validation.Values {
			v := validation.Values{
				"wedding_title":   "",
				"cover_image_url": "",
				"music_url":       "",
				"theme_color":     "#000000",
				"template":        invitation.Modern.String(),
			}
			for _, f := range WeddingFlags {
				v[f] = "true"
			}
			return v
		},
		FromEntity: func(wd models.Wedding) validation.Values {
			color := wd.ThemeColor
			if color == "" {
				color = "#000000"
			}
			return validation.Values{
				"wedding_title":   wd.WeddingTitle,
				"cover_image_url": wd.CoverImageURL,
				"music_url":       wd.MusicURL,
				"theme_color":     color,
				"template":        invitation.ParseTemplate(wd.Template).String(),
				"show_events":     validation.FormatBool(wd.ShowEvents),
				"show_story":      validation.FormatBool(wd.ShowStory),
				"show_gallery":    validation.FormatBool(wd.ShowGallery),
				"show_gifts":      validation.FormatBool(wd.ShowGifts),
				"show_guest_book": validation.FormatBool(wd.ShowGuestBook),
				"groom_name":      wd.GroomBride.GroomName,
				"groom_photo_url": wd.GroomBride.GroomPhotoURL,
				"groom_bio":       wd.GroomBride.GroomBio,
				"bride_name":      wd.GroomBride.BrideName,
				"bride_photo_url": wd.GroomBride.BridePhotoURL,
				"bride_bio":       wd.GroomBride.BrideBio,
			}
		},
		ID: func(wd models.Wedding) uint { return wd.ID },
		Submit: func(ctx context.Context, _ Mode, _ uint, v validation.Values) error {
			return w.Update(ctx, WeddingInput{
				WeddingTitle:  v["wedding_title"],
				CoverImageURL: v["cover_image_url"],
				MusicURL:      v["music_url"],
				ThemeColor:    v["theme_color"],
				Template:      v["template"],
				ShowEvents:    validation.Bool(v["show_events"]),
				ShowStory:     validation.Bool(v["show_story"]),
				ShowGallery:   validation.Bool(v["show_gallery"]),
				ShowGifts:     validation.Bool(v["show_gifts"]),
				ShowGuestBook: validation.Bool(v["show_guest_book"]),
				GroomBride: models.GroomBride{
					GroomName:     v["groom_name"],
					GroomPhotoURL: v["groom_photo_url"],
					GroomBio:      v["groom_bio"],
					BrideName:     v["bride_name"],
					BridePhotoURL: v["bride_photo_url"],
					BrideBio:      v["bride_bio"],
				},
			})
		},
	}
}

var errGuestBookCreate = errors.New("guestbook entries are written by guests")

// GuestBookStatusDefinition builds the moderation form
func GuestBookStatusDefinition(w StatusWriter) Definition[models.AdminGuestBookEntry] {
	return Definition[models.AdminGuestBookEntry]{
		Name: "guestbook entry",
		Schema: validation.Schema{
			{Name: "status", Rules: []validation.Rule{validation.OneOf(string(models.GuestBookPending), string(models.GuestBookApproved))}},
		},
		Defaults: func() validation.Values {
			return validation.Values{"status": string(models.GuestBookPending)}
		},
		FromEntity: func(e models.AdminGuestBookEntry) validation.Values {
			return validation.Values{"status": string(e.Status)}
		},
		ID: func(e models.AdminGuestBookEntry) uint { return e.ID },
		Submit: func(ctx context.Context, mode Mode, id uint, v validation.Values) error {
			if mode != ModeEdit {
				return errGuestBookCreate
			}
			return w.SetStatus(ctx, id, models.GuestBookStatus(v["status"]))
		},
	}
}

package invitation

import (
	"context"

	"weddingpress-web/internal/models"
	"weddingpress-web/internal/validation"
)

const (
	MinMessageLength = 5
	MaxMessageLength = 500
)

// GuestBookSchema validates a guest's message
var GuestBookSchema = validation.Schema{
	{Name: "message", Rules: []validation.Rule{
		validation.MinLen(MinMessageLength).Msg("Message must be at least 5 characters."),
		validation.MaxLen(MaxMessageLength).Msg("Message must be at most 500 characters."),
	}},
}

// GuestBookPoster submits a message at the backend
type GuestBookPoster interface {
	PostGuestBook(ctx context.Context, guestID uint, message string) error
}

// GuestBook is the guestbook section of one guest's page
type GuestBook struct {
	guestID   uint
	weddingID uint
	poster    GuestBookPoster

	// OnPosted runs after a successful submission so the list refreshes
	OnPosted func(ctx context.Context, weddingID uint)
}

// NewGuestBook creates the section for a guest
func NewGuestBook(guestID, weddingID uint, poster GuestBookPoster, onPosted func(ctx context.Context, weddingID uint)) *GuestBook {
	return &GuestBook{guestID: guestID, weddingID: weddingID, poster: poster, OnPosted: onPosted}
}

// Submit validates and posts a message. The message waits for approval before it is listed.
func (g *GuestBook) Submit(ctx context.Context, message string) (validation.Errors, error) {
	if errs := GuestBookSchema.Validate(validation.Values{"message": message}); len(errs) > 0 {
		return errs, nil
	}
	if err := g.poster.PostGuestBook(ctx, g.guestID, message); err != nil {
		return nil, err
	}
	if g.OnPosted != nil {
		g.OnPosted(ctx, g.weddingID)
	}
	return nil, nil
}

// Visible drops entries the backend marks as not approved.
// Entries without a status are trusted as already filtered.
func Visible(messages []models.PublicGuestBookMessage) []models.PublicGuestBookMessage {
	out := make([]models.PublicGuestBookMessage, 0, len(messages))
	for _, m := range messages {
		if m.Status == "" || m.Status == models.GuestBookApproved {
			out = append(out, m)
		}
	}
	return out
}

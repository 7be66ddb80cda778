package repository

import (
	"context"
	"fmt"
	"net/url"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/models"
)

// PublicRepository calls the unauthenticated invitation endpoints
type PublicRepository struct {
	client *apiclient.Client
}

// NewPublicRepository creates a public repository
func NewPublicRepository(client *apiclient.Client) *PublicRepository {
	return &PublicRepository{client: client}
}

// InvitationBySlug loads the guest and the full wedding for a slug
func (r *PublicRepository) InvitationBySlug(ctx context.Context, slug string) (*models.InvitationData, error) {
	var data models.InvitationData
	if err := r.client.Get(ctx, "/invitation/slug/"+url.PathEscape(slug), nil, &data); err != nil {
		return nil, fmt.Errorf("failed to get invitation %q: %w", slug, err)
	}
	return &data, nil
}

// PostRSVP records the guest's attendance; 0 means not attending
func (r *PublicRepository) PostRSVP(ctx context.Context, guestID uint, totalAttendance int) error {
	body := map[string]int{"total_attendance": totalAttendance}
	if err := r.client.Post(ctx, fmt.Sprintf("/rsvp/%d", guestID), body, nil); err != nil {
		return fmt.Errorf("failed to post rsvp for guest %d: %w", guestID, err)
	}
	return nil
}

// PostGuestBook submits a message; it stays pending until approved
func (r *PublicRepository) PostGuestBook(ctx context.Context, guestID uint, message string) error {
	body := map[string]string{"message": message}
	if err := r.client.Post(ctx, fmt.Sprintf("/guestbook/%d", guestID), body, nil); err != nil {
		return fmt.Errorf("failed to post guestbook for guest %d: %w", guestID, err)
	}
	return nil
}

// GuestBook lists the public messages of a wedding
func (r *PublicRepository) GuestBook(ctx context.Context, weddingID uint) ([]models.PublicGuestBookMessage, error) {
	var messages []models.PublicGuestBookMessage
	if err := r.client.Get(ctx, fmt.Sprintf("/guestbook/%d", weddingID), nil, &messages); err != nil {
		return nil, fmt.Errorf("failed to get guestbook for wedding %d: %w", weddingID, err)
	}
	return messages, nil
}

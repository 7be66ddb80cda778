package repository

import (
	"context"
	"fmt"
	"io"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/models"
)

// NewEventRepository returns the remote events collection
func NewEventRepository(client *apiclient.Client) *Resource[models.Event] {
	return NewResource[models.Event](client, "events", Paths{
		List:   "/admin/events",
		Create: "/admin/event",
		Item:   "/admin/event/%d",
		Update: true,
	})
}

// NewStoryRepository returns the remote stories collection
func NewStoryRepository(client *apiclient.Client) *Resource[models.Story] {
	return NewResource[models.Story](client, "stories", Paths{
		List:   "/admin/stories",
		Create: "/admin/story",
		Item:   "/admin/story/%d",
		Update: true,
	})
}

// NewGalleryRepository returns the remote gallery. The backend has no update endpoint.
func NewGalleryRepository(client *apiclient.Client) *Resource[models.GalleryItem] {
	return NewResource[models.GalleryItem](client, "gallery", Paths{
		List:   "/admin/gallery",
		Create: "/admin/gallery",
		Item:   "/admin/gallery/%d",
	})
}

// NewGiftAccountRepository returns the remote gift accounts collection
func NewGiftAccountRepository(client *apiclient.Client) *Resource[models.GiftAccount] {
	return NewResource[models.GiftAccount](client, "gift accounts", Paths{
		List:   "/admin/gift-accounts",
		Create: "/admin/gift-account",
		Item:   "/admin/gift-account/%d",
		Update: true,
	})
}

// GuestRepository is the remote guest list plus its extra endpoints
type GuestRepository struct {
	*Resource[models.Guest]
	client *apiclient.Client
}

// NewGuestRepository creates a guest repository
func NewGuestRepository(client *apiclient.Client) *GuestRepository {
	return &GuestRepository{
		Resource: NewResource[models.Guest](client, "guests", Paths{
			List:   "/admin/guests",
			Create: "/admin/guest",
			Item:   "/admin/guest/%d",
			Bulk:   "/admin/guest/bulk",
			Update: true,
		}),
		client: client,
	}
}

// Groups returns the distinct guest groups
func (r *GuestRepository) Groups(ctx context.Context) ([]string, error) {
	var groups []string
	if err := r.client.Get(ctx, "/admin/guests/groups", nil, &groups); err != nil {
		return nil, fmt.Errorf("failed to get guest groups: %w", err)
	}
	return groups, nil
}

// Import uploads a spreadsheet of guests
func (r *GuestRepository) Import(ctx context.Context, filename string, file io.Reader) (*models.ImportResult, error) {
	var result models.ImportResult
	err := r.client.Upload(ctx, "/admin/guests/import", "file", filename,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", file, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to import guests: %w", err)
	}
	return &result, nil
}

// GuestBookRepository is the moderation view of the guestbook
type GuestBookRepository struct {
	*Resource[models.AdminGuestBookEntry]
	client *apiclient.Client
}

// NewGuestBookRepository creates a guestbook moderation repository
func NewGuestBookRepository(client *apiclient.Client) *GuestBookRepository {
	return &GuestBookRepository{
		Resource: NewResource[models.AdminGuestBookEntry](client, "guestbook", Paths{
			List: "/admin/guestbook",
			Item: "/admin/guestbook/%d",
			Bulk: "/admin/guestbook/bulk",
		}),
		client: client,
	}
}

// SetStatus approves or unapproves an entry
func (r *GuestBookRepository) SetStatus(ctx context.Context, id uint, status models.GuestBookStatus) error {
	body := map[string]models.GuestBookStatus{"status": status}
	if err := r.client.Put(ctx, fmt.Sprintf("/admin/guestbook/%d", id), body, nil); err != nil {
		return fmt.Errorf("failed to update guestbook status %d: %w", id, err)
	}
	return nil
}

// WeddingRepository reads and writes the admin's wedding
type WeddingRepository struct {
	client *apiclient.Client
}

// NewWeddingRepository creates a wedding repository
func NewWeddingRepository(client *apiclient.Client) *WeddingRepository {
	return &WeddingRepository{client: client}
}

// Get returns the wedding with its relations
func (r *WeddingRepository) Get(ctx context.Context) (*models.Wedding, error) {
	var wedding models.Wedding
	if err := r.client.Get(ctx, "/admin/wedding", nil, &wedding); err != nil {
		return nil, fmt.Errorf("failed to get wedding: %w", err)
	}
	return &wedding, nil
}

// Update saves wedding settings and the couple's details
func (r *WeddingRepository) Update(ctx context.Context, body any) error {
	if err := r.client.Put(ctx, "/admin/wedding", body, nil); err != nil {
		return fmt.Errorf("failed to update wedding: %w", err)
	}
	return nil
}

// MediaRepository proxies uploads to the backend's storage
type MediaRepository struct {
	client *apiclient.Client
}

// NewMediaRepository creates a media repository
func NewMediaRepository(client *apiclient.Client) *MediaRepository {
	return &MediaRepository{client: client}
}

// Upload sends one file and returns its public URL
func (r *MediaRepository) Upload(ctx context.Context, filename, contentType string, file io.Reader) (string, error) {
	var result models.UploadResult
	if err := r.client.Upload(ctx, "/admin/upload", "file", filename, contentType, file, &result); err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("failed to upload file: backend returned no url")
	}
	return result.URL, nil
}

// AuthRepository calls the backend login endpoint
type AuthRepository struct {
	client *apiclient.Client
}

// NewAuthRepository creates an auth repository
func NewAuthRepository(client *apiclient.Client) *AuthRepository {
	return &AuthRepository{client: client}
}

// Login exchanges credentials for a bearer token
func (r *AuthRepository) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp models.LoginResponse
	if err := r.client.Post(ctx, "/login", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	return &resp, nil
}

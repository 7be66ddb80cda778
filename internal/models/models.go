package models

import "time"

// User represents the admin (the couple) logged into the dashboard
type User struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Wedding is the root record of an invitation
type Wedding struct {
	ID            uint   `json:"id"`
	UserID        uint   `json:"user_id"`
	WeddingTitle  string `json:"wedding_title"`
	CoverImageURL string `json:"cover_image_url"`
	MusicURL      string `json:"music_url"`
	ThemeColor    string `json:"theme_color"`
	Template      string `json:"template"`

	ShowEvents    bool `json:"show_events"`
	ShowStory     bool `json:"show_story"`
	ShowGallery   bool `json:"show_gallery"`
	ShowGifts     bool `json:"show_gifts"`
	ShowGuestBook bool `json:"show_guest_book"`

	GroomBride   GroomBride    `json:"groom_bride"`
	Events       []Event       `json:"events,omitempty"`
	Stories      []Story       `json:"stories,omitempty"`
	Galleries    []GalleryItem `json:"galleries,omitempty"`
	Guests       []Guest       `json:"guests,omitempty"`
	GiftAccounts []GiftAccount `json:"gift_accounts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroomBride holds the couple's details
type GroomBride struct {
	ID            uint   `json:"id,omitempty"`
	WeddingID     uint   `json:"wedding_id,omitempty"`
	GroomName     string `json:"groom_name"`
	GroomPhotoURL string `json:"groom_photo_url"`
	GroomBio      string `json:"groom_bio"`
	BrideName     string `json:"bride_name"`
	BridePhotoURL string `json:"bride_photo_url"`
	BrideBio      string `json:"bride_bio"`
}

// Event is a ceremony or reception slot
type Event struct {
	ID        uint      `json:"id"`
	WeddingID uint      `json:"wedding_id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"` // HH:MM
	EndTime   string    `json:"end_time"`   // HH:MM
	Address   string    `json:"address"`
	MapsURL   string    `json:"maps_url"`
}

// Story is one entry of the couple's timeline
type Story struct {
	ID          uint      `json:"id"`
	WeddingID   uint      `json:"wedding_id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
}

// FileType of a gallery item
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// GalleryItem is a photo or video
type GalleryItem struct {
	ID        uint     `json:"id"`
	WeddingID uint     `json:"wedding_id"`
	FileURL   string   `json:"file_url"`
	FileType  FileType `json:"file_type"`
	Caption   string   `json:"caption"`
}

// Guest is an invited guest; Slug builds the public invitation URL
type Guest struct {
	ID              uint            `json:"id"`
	WeddingID       uint            `json:"wedding_id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Group           string          `json:"group"`
	IsRSVP          bool            `json:"is_rsvp"`
	TotalAttendance int             `json:"total_attendance"`
	GuestBook       *GuestBookEntry `json:"guest_book,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// GuestBookStatus is the moderation state of a message
type GuestBookStatus string

const (
	GuestBookPending  GuestBookStatus = "pending"
	GuestBookApproved GuestBookStatus = "approved"
)

// GuestBookEntry is a message left by a guest
type GuestBookEntry struct {
	ID        uint            `json:"id"`
	GuestID   uint            `json:"guest_id"`
	Message   string          `json:"message"`
	Status    GuestBookStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// AdminGuestBookEntry is a row of the moderation list
type AdminGuestBookEntry struct {
	ID        uint            `json:"id"`
	GuestID   uint            `json:"guest_id"`
	GuestName string          `json:"guest_name"`
	Message   string          `json:"message"`
	Status    GuestBookStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// PublicGuestBookMessage is a row of the public guestbook.
// Status is only set when the backend includes it.
type PublicGuestBookMessage struct {
	GuestName string          `json:"guest_name"`
	Message   string          `json:"message"`
	Status    GuestBookStatus `json:"status,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// GiftAccount is a bank account or e-wallet for digital gifts
type GiftAccount struct {
	ID            uint   `json:"id"`
	WeddingID     uint   `json:"wedding_id"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	QRCodeURL     string `json:"qr_code_url"`
}

// InvitationData is everything the public page needs for one guest
type InvitationData struct {
	Guest   Guest   `json:"guest"`
	Wedding Wedding `json:"wedding"`
}

// LoginResponse is returned by the backend on successful login
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// ImportResult is returned by the spreadsheet guest import
type ImportResult struct {
	GuestsAdded int `json:"guests_added"`
}

// UploadResult is returned by the generic upload endpoint
type UploadResult struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

func (e Event) EntityID() uint               { return e.ID }
func (s Story) EntityID() uint               { return s.ID }
func (g GalleryItem) EntityID() uint         { return g.ID }
func (g Guest) EntityID() uint               { return g.ID }
func (g GiftAccount) EntityID() uint         { return g.ID }
func (g AdminGuestBookEntry) EntityID() uint { return g.ID }

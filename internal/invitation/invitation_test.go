package invitation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"weddingpress-web/internal/models"
	"weddingpress-web/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		id   string
		want Template
	}{
		{"modern", Modern},
		{"classic", Classic},
		{"rustic", Rustic},
		{"luxury", Luxury},
		{"", Modern},
		{"baroque", Modern},
		{"Classic", Modern},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTemplate(tt.id))
		})
	}
}

func TestTemplate_RoundTripAndPages(t *testing.T) {
	pages := map[string]bool{}
	for _, tpl := range Templates() {
		assert.Equal(t, tpl, ParseTemplate(tpl.String()))
		pages[tpl.Page()] = true
	}
	assert.Len(t, pages, 4)
	assert.Equal(t, []string{"modern", "classic", "rustic", "luxury"}, TemplateIDs())
	assert.Equal(t, "modern", Template(42).String())
}

func TestPlan(t *testing.T) {
	all := models.Wedding{
		ShowEvents: true, ShowStory: true, ShowGallery: true, ShowGifts: true, ShowGuestBook: true,
		GiftAccounts: []models.GiftAccount{{ID: 1}},
	}
	assert.Equal(t, []Section{
		SectionCouple, SectionEvents, SectionStory, SectionGallery, SectionGifts, SectionRSVP, SectionGuestBook,
	}, Plan(all))

	none := models.Wedding{}
	assert.Equal(t, []Section{SectionCouple, SectionRSVP}, Plan(none))

	noAccounts := all
	noAccounts.GiftAccounts = nil
	plan := Plan(noAccounts)
	assert.False(t, Has(plan, SectionGifts))
	assert.True(t, Has(plan, SectionRSVP))

	giftsHidden := all
	giftsHidden.ShowGifts = false
	assert.False(t, Has(Plan(giftsHidden), SectionGifts))
}

func TestView_CoverThenOpen(t *testing.T) {
	v := NewView("https://cdn.example.com/song.mp3")
	assert.Equal(t, Cover, v.Phase())
	assert.False(t, v.AudioPlaying())

	v.OpenInvitation()
	assert.Equal(t, Opened, v.Phase())
	assert.True(t, v.AudioPlaying())

	v.ToggleAudio()
	assert.False(t, v.AudioPlaying())
	v.OpenInvitation()
	assert.False(t, v.AudioPlaying(), "a paused player stays paused")
	v.ToggleAudio()
	assert.True(t, v.AudioPlaying())
}

func TestView_NoMusic(t *testing.T) {
	v := NewView("")
	v.OpenInvitation()
	v.ToggleAudio()
	assert.False(t, v.AudioPlaying())
}

func TestMetadataFor(t *testing.T) {
	md := MetadataFor(models.InvitationData{
		Guest: models.Guest{Name: "Budi"},
		Wedding: models.Wedding{
			CoverImageURL: "https://cdn.example.com/cover.jpg",
			GroomBride:    models.GroomBride{GroomName: "Andi", BrideName: "Sari"},
		},
	})
	assert.Equal(t, "Undangan Pernikahan Andi & Sari", md.Title)
	assert.Contains(t, md.Description, "Budi")
	assert.Equal(t, "https://cdn.example.com/cover.jpg", md.Image)
}

func TestAttendanceCount(t *testing.T) {
	assert.Equal(t, 0, AttendanceCount(NotAttending, 4))
	assert.Equal(t, 1, AttendanceCount(Attending, 0))
	assert.Equal(t, 1, AttendanceCount(Attending, -3))
	assert.Equal(t, 4, AttendanceCount(Attending, 4))
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("hadir")
	assert.True(t, ok)
	assert.Equal(t, Attending, s)
	s, ok = ParseStatus("tidak_hadir")
	assert.True(t, ok)
	assert.Equal(t, NotAttending, s)
	_, ok = ParseStatus("maybe")
	assert.False(t, ok)
}

type fakePoster struct {
	Err         error
	RSVPCalls   int
	LastGuestID uint
	LastCount   int
	LastMessage string
	BookCalls   int
}

func (f *fakePoster) PostRSVP(_ context.Context, guestID uint, total int) error {
	f.RSVPCalls++
	f.LastGuestID = guestID
	f.LastCount = total
	return f.Err
}

func (f *fakePoster) PostGuestBook(_ context.Context, guestID uint, message string) error {
	f.BookCalls++
	f.LastGuestID = guestID
	f.LastMessage = message
	return f.Err
}

func TestRSVP_Prefill(t *testing.T) {
	tests := []struct {
		name   string
		guest  models.Guest
		status string
		size   string
	}{
		{"fresh", models.Guest{}, "", "1"},
		{"attending", models.Guest{IsRSVP: true, TotalAttendance: 3}, "attending", "3"},
		{"declined", models.Guest{IsRSVP: true}, "not_attending", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRSVP(tt.guest, &fakePoster{}).Prefill()
			assert.Equal(t, tt.status, v["attendance_status"])
			assert.Equal(t, tt.size, v["total_attendance"])
		})
	}
}

func TestRSVP_SubmitAttendingClampsZero(t *testing.T) {
	p := &fakePoster{}
	r := NewRSVP(models.Guest{ID: 8}, p)

	errs, err := r.Submit(context.Background(), validation.Values{"attendance_status": "hadir", "total_attendance": "0"})
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 1, p.LastCount)
	assert.Equal(t, uint(8), p.LastGuestID)
	assert.True(t, r.Submitted())
	assert.Equal(t, 1, r.Recorded())

	_, err = r.Submit(context.Background(), validation.Values{"attendance_status": "hadir", "total_attendance": "2"})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, 1, p.RSVPCalls)
}

func TestRSVP_SubmitAttendingEmptySizeCountsOne(t *testing.T) {
	p := &fakePoster{}
	r := NewRSVP(models.Guest{ID: 9}, p)

	assert.Empty(t, ValidateRSVP(validation.Values{"attendance_status": "attending", "total_attendance": "  "}))

	errs, err := r.Submit(context.Background(), validation.Values{"attendance_status": "attending", "total_attendance": ""})
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 1, p.LastCount)
	assert.Equal(t, 1, r.Recorded())

	errs = ValidateRSVP(validation.Values{"attendance_status": "attending", "total_attendance": "-1"})
	assert.Equal(t, "Number of guests must not be negative", errs["total_attendance"])
}

func TestRSVP_NotAttendingIgnoresSize(t *testing.T) {
	p := &fakePoster{}
	r := NewRSVP(models.Guest{ID: 2}, p)

	errs, err := r.Submit(context.Background(), validation.Values{"attendance_status": "not_attending", "total_attendance": "99"})
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 0, p.LastCount)
	assert.Equal(t, 0, r.Recorded())
}

func TestRSVP_InvalidMakesNoCall(t *testing.T) {
	p := &fakePoster{}
	r := NewRSVP(models.Guest{ID: 2}, p)

	errs, err := r.Submit(context.Background(), validation.Values{"attendance_status": "attending", "total_attendance": "11"})
	require.NoError(t, err)
	assert.Contains(t, errs, "total_attendance")

	errs, err = r.Submit(context.Background(), validation.Values{"attendance_status": ""})
	require.NoError(t, err)
	assert.Contains(t, errs, "attendance_status")

	assert.Equal(t, 0, p.RSVPCalls)
	assert.False(t, r.Submitted())
}

func TestRSVP_FailureStaysOpen(t *testing.T) {
	p := &fakePoster{Err: errors.New("network down")}
	r := NewRSVP(models.Guest{ID: 2}, p)

	_, err := r.Submit(context.Background(), validation.Values{"attendance_status": "attending", "total_attendance": "2"})
	assert.Error(t, err)
	assert.False(t, r.Submitted())
}

func TestRSVP_AlreadyAnsweredGuest(t *testing.T) {
	p := &fakePoster{}
	r := NewRSVP(models.Guest{ID: 2, IsRSVP: true, TotalAttendance: 2}, p)
	_, err := r.Submit(context.Background(), validation.Values{"attendance_status": "attending", "total_attendance": "1"})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, 0, p.RSVPCalls)
}

func TestGuestBook_Submit(t *testing.T) {
	p := &fakePoster{}
	var refreshed []uint
	gb := NewGuestBook(5, 9, p, func(_ context.Context, weddingID uint) {
		refreshed = append(refreshed, weddingID)
	})

	errs, err := gb.Submit(context.Background(), "hey")
	require.NoError(t, err)
	assert.Contains(t, errs, "message")

	errs, err = gb.Submit(context.Background(), strings.Repeat("a", 501))
	require.NoError(t, err)
	assert.Contains(t, errs, "message")
	assert.Equal(t, 0, p.BookCalls)

	errs, err = gb.Submit(context.Background(), "Selamat menempuh hidup baru!")
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 1, p.BookCalls)
	assert.Equal(t, uint(5), p.LastGuestID)
	assert.Equal(t, []uint{9}, refreshed)
}

func TestGuestBook_SubmitFailureNoRefresh(t *testing.T) {
	p := &fakePoster{Err: errors.New("boom")}
	refreshes := 0
	gb := NewGuestBook(5, 9, p, func(context.Context, uint) { refreshes++ })

	_, err := gb.Submit(context.Background(), "Selamat ya!")
	assert.Error(t, err)
	assert.Equal(t, 0, refreshes)
}

func TestVisible(t *testing.T) {
	msgs := []models.PublicGuestBookMessage{
		{GuestName: "A", Message: "approved", Status: models.GuestBookApproved},
		{GuestName: "B", Message: "pending", Status: models.GuestBookPending},
		{GuestName: "C", Message: "no status"},
	}
	got := Visible(msgs)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].GuestName)
	assert.Equal(t, "C", got[1].GuestName)
}

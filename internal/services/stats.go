package services

import (
	"context"
	"fmt"

	"weddingpress-web/internal/models"
	"weddingpress-web/internal/repository"

	"golang.org/x/sync/errgroup"
)

// GuestLister lists guests
type GuestLister interface {
	List(ctx context.Context, q repository.Query) ([]models.Guest, error)
}

// GuestBookLister lists guestbook entries for moderation
type GuestBookLister interface {
	List(ctx context.Context, q repository.Query) ([]models.AdminGuestBookEntry, error)
}

// Stats are the dashboard counters
type Stats struct {
	TotalGuests      int `json:"total_guests"`
	RSVPGuests       int `json:"rsvp_guests"`
	TotalAttendance  int `json:"total_attendance"`
	PendingGuestBook int `json:"pending_guestbook"`
}

// StatsService computes dashboard statistics
type StatsService struct {
	guests    GuestLister
	guestbook GuestBookLister
}

// NewStatsService creates a new stats service
func NewStatsService(guests GuestLister, guestbook GuestBookLister) *StatsService {
	return &StatsService{
		guests:    guests,
		guestbook: guestbook,
	}
}

// Dashboard fetches guests and pending entries concurrently
func (s *StatsService) Dashboard(ctx context.Context) (*Stats, error) {
	var (
		guests  []models.Guest
		pending []models.AdminGuestBookEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		guests, err = s.guests.List(gctx, repository.Query{})
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.guestbook.List(gctx, repository.Query{Status: string(models.GuestBookPending)})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	stats := &Stats{TotalGuests: len(guests)}
	for _, guest := range guests {
		if guest.IsRSVP {
			stats.RSVPGuests++
			stats.TotalAttendance += guest.TotalAttendance
		}
	}
	for _, e := range pending {
		if e.Status == models.GuestBookPending {
			stats.PendingGuestBook++
		}
	}
	return stats, nil
}

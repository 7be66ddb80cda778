package invitation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"weddingpress-web/internal/models"
	"weddingpress-web/internal/validation"
)

// ErrAlreadySubmitted is returned once the guest has answered
var ErrAlreadySubmitted = errors.New("rsvp already submitted")

// MaxPartySize is the largest party a guest can confirm
const MaxPartySize = 10

// Status is the guest's answer
type Status string

const (
	Attending    Status = "attending"
	NotAttending Status = "not_attending"
)

// ParseStatus accepts the canonical values and the hadir / tidak_hadir aliases
func ParseStatus(s string) (Status, bool) {
	switch strings.TrimSpace(s) {
	case "attending", "hadir":
		return Attending, true
	case "not_attending", "tidak_hadir":
		return NotAttending, true
	}
	return "", false
}

// AttendanceCount is what gets recorded: 0 when not attending, at least 1 otherwise
func AttendanceCount(status Status, size int) int {
	if status != Attending {
		return 0
	}
	if size <= 0 {
		return 1
	}
	return size
}

var rsvpStatusField = validation.Field{
	Name: "attendance_status",
	Rules: []validation.Rule{
		validation.OneOf("attending", "not_attending", "hadir", "tidak_hadir").Msg("Please choose whether you will attend"),
	},
}

var rsvpSizeField = validation.Field{
	Name: "total_attendance",
	Rules: []validation.Rule{
		validation.IntMin(0).Msg("Number of guests must not be negative"),
		validation.IntRange(0, MaxPartySize).Msg(fmt.Sprintf("At most %d people", MaxPartySize)),
	},
}

// ValidateRSVP checks the form; party size only matters when attending.
// An empty party size counts as 0 and is recorded as 1.
func ValidateRSVP(v validation.Values) validation.Errors {
	schema := validation.Schema{rsvpStatusField}
	if status, _ := ParseStatus(v["attendance_status"]); status == Attending {
		schema = append(schema, rsvpSizeField)
		if strings.TrimSpace(v["total_attendance"]) == "" {
			v = v.Clone()
			v["total_attendance"] = "0"
		}
	}
	return schema.Validate(v)
}

// RSVPPoster records an answer at the backend
type RSVPPoster interface {
	PostRSVP(ctx context.Context, guestID uint, totalAttendance int) error
}

// RSVP is the guest's confirmation section
type RSVP struct {
	guest  models.Guest
	poster RSVPPoster

	mu        sync.Mutex
	submitted bool
	recorded  int
}

// NewRSVP starts from what the backend already knows about the guest
func NewRSVP(guest models.Guest, poster RSVPPoster) *RSVP {
	return &RSVP{
		guest:     guest,
		poster:    poster,
		submitted: guest.IsRSVP,
		recorded:  guest.TotalAttendance,
	}
}

// Prefill returns the initial form values
func (r *RSVP) Prefill() validation.Values {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := ""
	switch {
	case r.submitted && r.recorded > 0:
		status = string(Attending)
	case r.submitted:
		status = string(NotAttending)
	}
	size := 1
	if r.recorded > 0 {
		size = r.recorded
	}
	return validation.Values{
		"attendance_status": status,
		"total_attendance":  strconv.Itoa(size),
	}
}

// Submitted reports whether the thank-you state is shown
func (r *RSVP) Submitted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submitted
}

// Recorded is the confirmed attendance; 0 means not attending
func (r *RSVP) Recorded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recorded
}

// Submit validates and posts the answer once
func (r *RSVP) Submit(ctx context.Context, v validation.Values) (validation.Errors, error) {
	r.mu.Lock()
	if r.submitted {
		r.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	r.mu.Unlock()

	if errs := ValidateRSVP(v); len(errs) > 0 {
		return errs, nil
	}

	status, _ := ParseStatus(v["attendance_status"])
	size, _ := strconv.Atoi(strings.TrimSpace(v["total_attendance"]))
	count := AttendanceCount(status, size)

	if err := r.poster.PostRSVP(ctx, r.guest.ID, count); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.submitted = true
	r.recorded = count
	r.mu.Unlock()
	return nil, nil
}

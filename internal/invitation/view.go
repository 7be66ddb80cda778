package invitation

import (
	"fmt"
	"sync"

	"weddingpress-web/internal/models"
)

// Phase of the invitation page
type Phase int

const (
	Cover Phase = iota
	Opened
)

func (p Phase) String() string {
	if p == Opened {
		return "open"
	}
	return "cover"
}

// Player follows the page phase: it plays only while the invitation is open.
// A guest can pause it; a paused player stays paused across syncs.
type Player struct {
	src     string
	playing bool
	paused  bool
}

// NewPlayer creates a player for src; an empty src never plays
func NewPlayer(src string) *Player {
	return &Player{src: src}
}

// Sync aligns playback with the page phase
func (p *Player) Sync(phase Phase) {
	if p.src == "" {
		p.playing = false
		return
	}
	p.playing = phase == Opened && !p.paused
}

// Toggle is the guest's play/pause button
func (p *Player) Toggle(phase Phase) {
	if p.src == "" {
		return
	}
	p.paused = p.playing
	p.Sync(phase)
}

// Playing reports whether audio is playing
func (p *Player) Playing() bool {
	return p.playing
}

// Source returns the audio URL
func (p *Player) Source() string {
	return p.src
}

// View is the page state: the cover until the guest opens it, then the sections
type View struct {
	mu     sync.Mutex
	phase  Phase
	player *Player
}

// NewView starts on the cover
func NewView(musicURL string) *View {
	v := &View{phase: Cover, player: NewPlayer(musicURL)}
	v.player.Sync(v.phase)
	return v
}

// OpenInvitation moves from the cover to the sections. There is no way back.
func (v *View) OpenInvitation() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.phase = Opened
	v.player.Sync(v.phase)
}

// Phase returns the current phase
func (v *View) Phase() Phase {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.phase
}

// AudioPlaying reports whether background music is playing
func (v *View) AudioPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.player.Playing()
}

// ToggleAudio pauses or resumes the music
func (v *View) ToggleAudio() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.player.Toggle(v.phase)
}

// Metadata describes the page for browsers and link previews
type Metadata struct {
	Title       string
	Description string
	Image       string
}

// NotFoundMetadata is used when the slug is unknown
var NotFoundMetadata = Metadata{Title: "Undangan Tidak Ditemukan"}

// MetadataFor builds the page metadata for a guest
func MetadataFor(data models.InvitationData) Metadata {
	gb := data.Wedding.GroomBride
	return Metadata{
		Title:       fmt.Sprintf("Undangan Pernikahan %s & %s", gb.GroomName, gb.BrideName),
		Description: fmt.Sprintf("Kami mengundang Anda, %s, untuk hadir di pernikahan kami.", data.Guest.Name),
		Image:       data.Wedding.CoverImageURL,
	}
}

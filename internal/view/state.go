// Package view holds the local, continuously updated snapshot of the shared
// game state: players, turn, pile, hand, and selection. All mutation happens
// through Apply* methods driven by inbound channel events, or through the
// local selection operations; the store renders through a Renderer so the
// surrounding shell stays free of game rules.
package view

import (
	"fmt"
	"sync"
	"time"

	"github.com/bluffmesh/gameclient/internal/protocol"
)

// RevealPhase is the reveal-lock state. While Revealing, pile-count-driven
// re-renders are suppressed so newly arriving updates cannot overwrite the
// face-up doubt reveal before the player has seen it.
type RevealPhase int

const (
	RevealIdle RevealPhase = iota
	Revealing
)

const revealTimerKey = "reveal"

// MaxSelection is the most cards a single play may contain.
const MaxSelection = 4

// Config holds view timing settings.
type Config struct {
	RevealDelay time.Duration // how long a doubt reveal stays on screen
	StatusTTL   time.Duration // how long a transient player status lives
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RevealDelay: 1500 * time.Millisecond,
		StatusTTL:   1500 * time.Millisecond,
	}
}

// State is the view state store. One instance per room session; create it on
// room entry and Stop it on leave.
type State struct {
	mu     sync.Mutex
	selfID string
	cfg    Config
	r      Renderer
	timers *timerRegistry

	participants []Participant
	turnHolder   string
	claim        string
	pileTotal    int
	lastPlay     int
	revealed     []Card
	hand         []Card
	selection    []Card
	reveal       RevealPhase
}

// NewState creates a store for the given local participant id.
func NewState(selfID string, r Renderer, cfg Config) *State {
	return &State{
		selfID: selfID,
		cfg:    cfg,
		r:      r,
		timers: newTimerRegistry(),
	}
}

// Stop cancels all pending timers. Called on room teardown.
func (s *State) Stop() {
	s.timers.StopAll()
}

// ApplyRoomUpdate replaces the participant list and turn holder wholesale and
// re-renders the seating.
func (s *State) ApplyRoomUpdate(update protocol.RoomUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = s.participants[:0]
	for _, p := range update.Players {
		cards := 0
		if p.Cards != nil {
			cards = *p.Cards
		}
		s.participants = append(s.participants, Participant{ID: p.ID, Name: p.Name, Cards: cards})
	}
	s.turnHolder = update.CurrentTurn

	s.r.Roster(append([]Participant{}, s.participants...))
	s.renderSeatingLocked()
}

// ApplyGameState merges public game state. Absent fields keep their previous
// values. A pile count that transitions to exactly zero forces a pile render
// so a fresh round never shows stale cards.
func (s *State) ApplyGameState(gs protocol.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gs.CurrentTurn != nil {
		s.turnHolder = *gs.CurrentTurn
	}
	if gs.Claim != nil {
		s.claim = *gs.Claim
	} else {
		s.claim = ""
	}
	s.r.Claim(claimLabel(s.claim))

	if gs.LastPlayCount != nil {
		s.lastPlay = *gs.LastPlayCount
	}
	if gs.PileCount != nil {
		prev := s.pileTotal
		s.pileTotal = *gs.PileCount
		if prev != s.pileTotal && s.pileTotal == 0 {
			s.renderPileLocked()
		}
	}

	s.renderSeatingLocked()
}

// ApplyHand replaces the hand wholesale. Any selection belonged to the old
// hand and is cleared unconditionally.
func (s *State) ApplyHand(cards []Card) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hand = append(s.hand[:0], cards...)
	s.selection = nil
	s.r.Hand(append([]Card{}, s.hand...), nil)
}

// ApplyGameEvent drives the event table: played cards, passes, doubt reveals,
// pile dumps, and game over.
func (s *State) ApplyGameEvent(ev protocol.GameEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Event {
	case protocol.EventCardsPlayed:
		s.lastPlay = ev.Count
		s.pileTotal += ev.Count
		s.renderPileLocked()
		s.setStatusLocked(ev.By, fmt.Sprintf("played %d", ev.Count))

	case protocol.EventPass:
		s.setStatusLocked(ev.By, "passed")

	case protocol.EventDoubtResult:
		s.reveal = Revealing
		s.revealed = append([]Card{}, ev.Cards...)
		if ev.By != "" {
			s.setStatusLocked(ev.By, "DOUBT!")
		}
		// Render the reveal directly; the lock only suppresses pile-count
		// driven renders, not the reveal itself.
		s.r.Pile(s.pileViewLocked())
		s.timers.Set(revealTimerKey, s.cfg.RevealDelay, s.releaseReveal)

	case protocol.EventPileDumped:
		s.clearPileLocked()

	case protocol.EventGameOver:
		s.r.System(fmt.Sprintf("🏆 %s won the game", s.participantNameLocked(ev.Winner)))
		s.timers.Stop(revealTimerKey)
		s.reveal = RevealIdle
		s.pileTotal = 0
		s.lastPlay = 0
		s.revealed = nil
		s.claim = ""
		s.r.Pile(s.pileViewLocked())
		s.r.Claim(claimLabel(""))
		for _, p := range s.participants {
			s.timers.Stop(statusKey(p.ID))
			s.r.PlayerStatus(p.ID, "")
		}

	default:
		// Unknown sub-events are dropped; the dispatcher already logged the
		// frame.
	}
}

// releaseReveal ends the reveal window: the lock opens, the round state
// resets, and the pile renders again.
func (s *State) releaseReveal() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reveal = RevealIdle
	s.clearPileLocked()
}

// ToggleSelection adds card to the selection if absent and below the cap, or
// removes it if present. Cards outside the hand and additions beyond the cap
// are rejected.
func (s *State) ToggleSelection(card Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !contains(s.hand, card) {
		return ErrNotInHand
	}
	if idx := index(s.selection, card); idx >= 0 {
		s.selection = append(s.selection[:idx], s.selection[idx+1:]...)
	} else {
		if len(s.selection) >= MaxSelection {
			return ErrSelectionFull
		}
		s.selection = append(s.selection, card)
	}
	s.r.Hand(append([]Card{}, s.hand...), append([]Card{}, s.selection...))
	return nil
}

// Selection returns a copy of the current selection.
func (s *State) Selection() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Card{}, s.selection...)
}

// Hand returns a copy of the current hand.
func (s *State) Hand() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Card{}, s.hand...)
}

// ClearSelection empties the selection and re-renders the hand. The command
// encoder calls this after a play is on the wire.
func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
	s.r.Hand(append([]Card{}, s.hand...), nil)
}

// PileTotal returns the current pile size.
func (s *State) PileTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pileTotal
}

// LastPlayCount returns the size of the most recent play.
func (s *State) LastPlayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPlay
}

// Revealed returns a copy of the currently revealed cards.
func (s *State) Revealed() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Card{}, s.revealed...)
}

// RevealPhase returns the current reveal-lock state.
func (s *State) RevealPhase() RevealPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reveal
}

// TurnHolder returns the id of the participant whose turn it is.
func (s *State) TurnHolder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnHolder
}

// ParticipantName resolves an id to a display name, falling back to the raw
// id for participants the client has never seen.
func (s *State) ParticipantName(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participantNameLocked(id)
}

// --- internals, caller holds s.mu ---

func (s *State) renderSeatingLocked() {
	if len(s.participants) == 0 {
		return
	}
	selfIdx := -1
	for i, p := range s.participants {
		if p.ID == s.selfID {
			selfIdx = i
			break
		}
	}
	if selfIdx == -1 {
		// Not seated yet; the roster still lists everyone.
		return
	}

	ordered := append(append([]Participant{}, s.participants[selfIdx:]...), s.participants[:selfIdx]...)
	if len(ordered) > len(seatOrder) {
		ordered = ordered[:len(seatOrder)]
	}

	seats := make([]Seat, 0, len(ordered))
	for i, p := range ordered {
		seat := Seat{
			Position: seatOrder[i],
			ID:       p.ID,
			Name:     p.Name,
			IsSelf:   p.ID == s.selfID,
			IsTurn:   p.ID == s.turnHolder,
		}
		if !seat.IsSelf {
			seat.FaceDown = p.Cards
		}
		seats = append(seats, seat)
	}
	s.r.Seating(seats)
}

// renderPileLocked is the normal, lock-respecting pile render path.
func (s *State) renderPileLocked() {
	if s.reveal == Revealing {
		return
	}
	s.r.Pile(s.pileViewLocked())
}

func (s *State) pileViewLocked() PileView {
	covered := s.pileTotal - s.lastPlay
	if covered < 0 {
		covered = 0
	}
	v := PileView{Covered: covered, LastPlay: s.lastPlay}
	if s.reveal == Revealing {
		v.Revealed = append([]Card{}, s.revealed...)
	}
	return v
}

func (s *State) clearPileLocked() {
	s.pileTotal = 0
	s.lastPlay = 0
	s.revealed = nil
	s.renderPileLocked()
}

func (s *State) setStatusLocked(id, text string) {
	if id == "" {
		return
	}
	s.r.PlayerStatus(id, text)
	s.timers.Set(statusKey(id), s.cfg.StatusTTL, func() {
		s.r.PlayerStatus(id, "")
	})
}

func (s *State) participantNameLocked(id string) string {
	for _, p := range s.participants {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

func statusKey(id string) string { return "status:" + id }

func claimLabel(claim string) string {
	if claim == "" {
		return "-"
	}
	return claim
}

func contains(cards []Card, c Card) bool { return index(cards, c) >= 0 }

func index(cards []Card, c Card) int {
	for i, x := range cards {
		if x == c {
			return i
		}
	}
	return -1
}

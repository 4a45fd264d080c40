package view

// Card is a rank+suit string like "K♠" exactly as the server deals it.
type Card = string

// Participant is one player in the local snapshot.
type Participant struct {
	ID    string
	Name  string
	Cards int
}

// Position names the four fixed table slots, clockwise from the local player.
type Position string

const (
	PositionBottom Position = "bottom"
	PositionLeft   Position = "left"
	PositionTop    Position = "top"
	PositionRight  Position = "right"
)

var seatOrder = []Position{PositionBottom, PositionLeft, PositionTop, PositionRight}

// Seat is one rendered table slot. FaceDown is the number of face-down card
// markers to draw; it is always zero for the local seat because the local
// hand renders separately, face up.
type Seat struct {
	Position Position
	ID       string
	Name     string
	FaceDown int
	IsSelf   bool
	IsTurn   bool
}

// PileView is everything needed to draw the shared pile.
type PileView struct {
	Covered  int    // older pile cards, face down
	LastPlay int    // most recent play, face down but set apart
	Revealed []Card // true card values while a doubt reveal is showing
}

// Renderer receives view updates. Implementations must not call back into the
// store from inside a callback; the store's lock is held while rendering.
type Renderer interface {
	Seating(seats []Seat)
	Roster(participants []Participant)
	Pile(p PileView)
	Claim(label string)
	Hand(hand []Card, selected []Card)
	Chat(user, message string)
	System(message string)
	PlayerStatus(id, text string) // empty text clears the status line
}

// NopRenderer discards everything. Embed it to implement only the callbacks a
// test cares about.
type NopRenderer struct{}

func (NopRenderer) Seating([]Seat)            {}
func (NopRenderer) Roster([]Participant)      {}
func (NopRenderer) Pile(PileView)             {}
func (NopRenderer) Claim(string)              {}
func (NopRenderer) Hand([]Card, []Card)       {}
func (NopRenderer) Chat(string, string)       {}
func (NopRenderer) System(string)             {}
func (NopRenderer) PlayerStatus(string, string) {}

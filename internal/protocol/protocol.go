// Package protocol defines the messages exchanged over the room channel.
// Every frame is a JSON object carrying a "type" discriminant; signaling
// messages (offer/answer/candidate/vc_request) use the same shape in both
// directions because the server relays them verbatim.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// Inbound message types.
const (
	TypeChat        = "chat"
	TypeRoomUpdate  = "room_update"
	TypeGameState   = "game_state"
	TypeYourHand    = "your_hand"
	TypeGameEvent   = "game_event"
	TypeError       = "error"
	TypeCallRequest = "vc_request"
	TypeOffer       = "offer"
	TypeAnswer      = "answer"
	TypeCandidate   = "candidate"
)

// Outbound-only message types.
const (
	TypeStartGame = "start_game"
	TypePlay      = "play"
	TypePass      = "pass"
	TypeDoubt     = "doubt"
)

// Game event sub-discriminants carried in GameEvent.Event.
const (
	EventCardsPlayed = "cards_played"
	EventPass        = "pass"
	EventDoubtResult = "doubt_result"
	EventPileDumped  = "pile_dumped"
	EventGameOver    = "game_over"
)

// ErrUnknownType is returned by Decode for discriminants the client does not
// understand. Callers log and drop these rather than failing the session.
var ErrUnknownType = errors.New("unknown message type")

// Inbound is the typed union of every message the channel can deliver.
type Inbound interface {
	inbound()
}

// Participant is one player as the server reports it. Cards is nil before a
// game has started (hand sizes are unknown until the deal).
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cards *int   `json:"cards"`
}

// Chat is a room chat line, including system messages (user "System").
type Chat struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

// RoomUpdate replaces the full participant list and turn holder.
type RoomUpdate struct {
	Players     []Participant `json:"players"`
	CurrentTurn string        `json:"current_turn"`
	GameStarted bool          `json:"game_started"`
}

// GameState is a partial merge of public game state. Nil fields were absent
// from the payload and must retain their previous local value.
type GameState struct {
	CurrentTurn   *string `json:"current_turn"`
	Claim         *string `json:"claim"`
	PileCount     *int    `json:"pile_count"`
	LastPlayCount *int    `json:"last_play_count"`
}

// YourHand replaces the local hand wholesale.
type YourHand struct {
	Hand []string `json:"hand"`
}

// GameEvent carries one of the Event* sub-discriminants. Which fields are
// populated depends on the event.
type GameEvent struct {
	Event      string   `json:"event"`
	By         string   `json:"by,omitempty"`
	Count      int      `json:"count,omitempty"`
	Claim      string   `json:"claim,omitempty"`
	Cards      []string `json:"cards,omitempty"`
	Winner     string   `json:"winner,omitempty"`
	Result     string   `json:"result,omitempty"`
	Loser      string   `json:"loser,omitempty"`
	NextPlayer string   `json:"next_player,omitempty"`
}

// ErrorMessage is a protocol error surfaced verbatim to the user.
type ErrorMessage struct {
	Message string `json:"message"`
}

// CallRequest announces that a participant started a video call.
type CallRequest struct {
	Type string `json:"type"`
	From string `json:"from"`
	Name string `json:"name"`
}

// OfferSignal is an SDP offer addressed to a single participant. The relay is
// broadcast-only, so receivers must check To themselves.
type OfferSignal struct {
	Type  string                    `json:"type"`
	Offer webrtc.SessionDescription `json:"offer"`
	To    string                    `json:"to"`
	From  string                    `json:"from"`
}

// AnswerSignal is an SDP answer addressed to a single participant.
type AnswerSignal struct {
	Type   string                    `json:"type"`
	Answer webrtc.SessionDescription `json:"answer"`
	To     string                    `json:"to"`
	From   string                    `json:"from"`
}

// CandidateSignal is a trickled ICE candidate addressed to a single participant.
type CandidateSignal struct {
	Type      string                  `json:"type"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
	To        string                  `json:"to"`
	From      string                  `json:"from"`
}

func (Chat) inbound()            {}
func (RoomUpdate) inbound()      {}
func (GameState) inbound()       {}
func (YourHand) inbound()        {}
func (GameEvent) inbound()       {}
func (ErrorMessage) inbound()    {}
func (CallRequest) inbound()     {}
func (OfferSignal) inbound()     {}
func (AnswerSignal) inbound()    {}
func (CandidateSignal) inbound() {}

// Decode parses a raw channel frame into its typed message. Unknown
// discriminants return ErrUnknownType so callers can drop them quietly.
func Decode(data []byte) (Inbound, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case TypeChat:
		return decodeAs[Chat](data)
	case TypeRoomUpdate:
		return decodeAs[RoomUpdate](data)
	case TypeGameState:
		return decodeAs[GameState](data)
	case TypeYourHand:
		return decodeAs[YourHand](data)
	case TypeGameEvent:
		return decodeAs[GameEvent](data)
	case TypeError:
		return decodeAs[ErrorMessage](data)
	case TypeCallRequest:
		return decodeAs[CallRequest](data)
	case TypeOffer:
		return decodeAs[OfferSignal](data)
	case TypeAnswer:
		return decodeAs[AnswerSignal](data)
	case TypeCandidate:
		return decodeAs[CandidateSignal](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodeAs[T Inbound](data []byte) (Inbound, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal %T: %w", m, err)
	}
	return m, nil
}

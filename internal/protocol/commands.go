package protocol

import "github.com/pion/webrtc/v4"

// StartGameCommand asks the server to deal a new game.
type StartGameCommand struct {
	Type string `json:"type"`
}

// PlayCommand plays 1-4 cards under a claimed rank. Claim is nil when
// following an existing claim.
type PlayCommand struct {
	Type  string   `json:"type"`
	Cards []string `json:"cards"`
	Claim *string  `json:"claim"`
}

// PassCommand passes the turn.
type PassCommand struct {
	Type string `json:"type"`
}

// DoubtCommand challenges the previous play.
type DoubtCommand struct {
	Type string `json:"type"`
}

// ChatCommand sends a chat line to the room.
type ChatCommand struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewStartGame creates a start_game message.
func NewStartGame() StartGameCommand {
	return StartGameCommand{Type: TypeStartGame}
}

// NewPlay creates a play message.
func NewPlay(cards []string, claim *string) PlayCommand {
	return PlayCommand{Type: TypePlay, Cards: cards, Claim: claim}
}

// NewPass creates a pass message.
func NewPass() PassCommand {
	return PassCommand{Type: TypePass}
}

// NewDoubt creates a doubt message.
func NewDoubt() DoubtCommand {
	return DoubtCommand{Type: TypeDoubt}
}

// NewChat creates a chat message.
func NewChat(message string) ChatCommand {
	return ChatCommand{Type: TypeChat, Message: message}
}

// NewCallRequest creates a vc_request announcement.
func NewCallRequest(from, name string) CallRequest {
	return CallRequest{Type: TypeCallRequest, From: from, Name: name}
}

// NewOffer creates an offer addressed to a single participant.
func NewOffer(offer webrtc.SessionDescription, to, from string) OfferSignal {
	return OfferSignal{Type: TypeOffer, Offer: offer, To: to, From: from}
}

// NewAnswer creates an answer addressed to a single participant.
func NewAnswer(answer webrtc.SessionDescription, to, from string) AnswerSignal {
	return AnswerSignal{Type: TypeAnswer, Answer: answer, To: to, From: from}
}

// NewCandidate creates an ICE candidate addressed to a single participant.
func NewCandidate(candidate webrtc.ICECandidateInit, to, from string) CandidateSignal {
	return CandidateSignal{Type: TypeCandidate, Candidate: candidate, To: to, From: from}
}

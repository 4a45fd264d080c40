package mesh

import "github.com/pion/webrtc/v4"

// NegotiationState tracks where a peer's handshake stands. Values are stable
// strings for logging.
type NegotiationState string

const (
	NegotiationNew           NegotiationState = "new"
	NegotiationOfferSent     NegotiationState = "offer_sent"
	NegotiationOfferReceived NegotiationState = "offer_received"
	NegotiationAnswerSent    NegotiationState = "answer_sent"
	NegotiationConnected     NegotiationState = "connected"
)

// Session is one peer's signaling state machine. Keyed by remote participant
// id; at most one per remote peer. Fields other than pc are guarded by the
// coordinator's mutex.
type Session struct {
	peerID string
	pc     *webrtc.PeerConnection
	state  NegotiationState

	// Candidates can arrive before the remote description under the broadcast
	// relay. They are buffered and replayed once the description lands.
	remoteSet bool
	pending   []webrtc.ICECandidateInit
}

// PeerID returns the remote participant this session talks to.
func (s *Session) PeerID() string { return s.peerID }

// State returns the current negotiation state.
func (s *Session) State() NegotiationState { return s.state }

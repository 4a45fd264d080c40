// Package mesh manages the full-mesh video call: one signaling state machine
// per remote participant, multiplexed over the room channel as a relay. The
// coordinator owns local media capture and every peer connection; nothing
// else in the client touches connection internals.
package mesh

import (
	"fmt"
	"log"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/bluffmesh/gameclient/internal/protocol"
)

// Sender writes one message to the room channel.
type Sender interface {
	Send(v any) error
}

// VideoSurface receives call UI updates from the coordinator.
type VideoSurface interface {
	// RemoteTrack is called when media from a peer starts flowing.
	RemoteTrack(peerID string, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)

	// PeerGone removes a peer's video tile.
	PeerGone(peerID string)

	// CallEnded resets the surface to the not-in-call state.
	CallEnded()
}

// Config holds mesh settings.
type Config struct {
	ICEServers []webrtc.ICEServer
	Capture    CaptureFunc
}

// DefaultConfig returns sensible defaults. Capture must be supplied by the
// caller; there is no default media source.
func DefaultConfig() Config {
	return Config{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	}
}

// Coordinator runs the peer mesh for one room session.
type Coordinator struct {
	mu       sync.Mutex
	selfID   string
	selfName string
	send     Sender
	surface  VideoSurface
	notify   func(message string)
	cfg      Config

	capture  Capture
	sessions map[string]*Session
}

// NewCoordinator creates a coordinator for the local participant. notify is
// used for user-facing call notices (someone started a call); it may be nil.
func NewCoordinator(selfID, selfName string, send Sender, surface VideoSurface, notify func(string), cfg Config) *Coordinator {
	if notify == nil {
		notify = func(string) {}
	}
	return &Coordinator{
		selfID:   selfID,
		selfName: selfName,
		send:     send,
		surface:  surface,
		notify:   notify,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// InCall reports whether local capture is active.
func (c *Coordinator) InCall() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}

// SessionCount returns the number of live peer sessions.
func (c *Coordinator) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// StartLocalCall acquires local capture and announces the call to the room.
// A capture failure is reported to the caller and leaves the coordinator
// fully out of call; it is never fatal to the game session.
func (c *Coordinator) StartLocalCall() error {
	c.mu.Lock()
	if c.capture != nil {
		c.mu.Unlock()
		return nil // already in call
	}
	acquire := c.cfg.Capture
	c.mu.Unlock()

	if acquire == nil {
		return fmt.Errorf("%w: no capture source configured", ErrMediaUnavailable)
	}
	capture, err := acquire()
	if err != nil {
		return fmt.Errorf("acquire media: %w", err)
	}

	c.mu.Lock()
	if c.capture != nil {
		// Lost the race against a concurrent start; keep the first capture.
		c.mu.Unlock()
		capture.Close()
		return nil
	}
	c.capture = capture
	c.mu.Unlock()

	log.Printf("🎥 [%s] call started, announcing to room", c.selfID)
	return c.send.Send(protocol.NewCallRequest(c.selfID, c.selfName))
}

// HandleSignal is the single intake for every signaling message from the
// channel. Address filtering happens here, once, so no handler can forget it.
func (c *Coordinator) HandleSignal(msg protocol.Inbound) error {
	switch m := msg.(type) {
	case protocol.CallRequest:
		return c.handleCallRequest(m.From, m.Name)
	case protocol.OfferSignal:
		if m.To != c.selfID {
			return nil
		}
		return c.handleOffer(m.From, m.Offer)
	case protocol.AnswerSignal:
		if m.To != c.selfID {
			return nil
		}
		return c.handleAnswer(m.From, m.Answer)
	case protocol.CandidateSignal:
		if m.To != c.selfID {
			return nil
		}
		return c.handleCandidate(m.From, m.Candidate)
	default:
		return fmt.Errorf("not a signaling message: %T", msg)
	}
}

// handleCallRequest reacts to a call announcement. Already in call means the
// announcer wants to connect: initiate a handshake toward them. Otherwise the
// user is only told a call exists; joining stays an explicit local action.
func (c *Coordinator) handleCallRequest(from, name string) error {
	if from == c.selfID {
		return nil
	}
	if c.InCall() {
		return c.InitiateHandshake(from)
	}
	c.notify(fmt.Sprintf("%s started a video call. Start your video to join.", name))
	return nil
}

// InitiateHandshake creates (or reuses) the session for peerID and sends an
// offer addressed to it.
func (c *Coordinator) InitiateHandshake(peerID string) error {
	c.mu.Lock()
	if c.capture == nil {
		c.mu.Unlock()
		return ErrNotInCall
	}
	s, err := c.ensureSessionLocked(peerID)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	offer, err := s.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer for %s: %w", peerID, err)
	}
	if err := s.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local offer for %s: %w", peerID, err)
	}

	// Negotiation suspends; the session may have been torn down meanwhile.
	c.mu.Lock()
	if _, ok := c.sessions[peerID]; !ok {
		c.mu.Unlock()
		return nil
	}
	s.state = NegotiationOfferSent
	c.mu.Unlock()

	log.Printf("📤 [%s] offer -> %s", c.selfID, peerID)
	return c.send.Send(protocol.NewOffer(offer, peerID, c.selfID))
}

// handleOffer answers a remote offer. Without active local capture there is
// nothing to answer with; the offer is dropped and the peer keeps waiting
// until the local user joins.
func (c *Coordinator) handleOffer(from string, offer webrtc.SessionDescription) error {
	c.mu.Lock()
	if c.capture == nil {
		c.mu.Unlock()
		log.Printf("🎥 [%s] offer from %s ignored, not in call", c.selfID, from)
		return nil
	}
	s, err := c.ensureSessionLocked(from)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	s.state = NegotiationOfferReceived
	c.mu.Unlock()

	if err := s.pc.SetRemoteDescription(offer); err != nil {
		return fmt.Errorf("set remote offer from %s: %w", from, err)
	}
	c.flushCandidates(s)

	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("create answer for %s: %w", from, err)
	}
	if err := s.pc.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("set local answer for %s: %w", from, err)
	}

	c.mu.Lock()
	if _, ok := c.sessions[from]; !ok {
		// Hung up while negotiating; do not resurrect the handshake.
		c.mu.Unlock()
		return nil
	}
	s.state = NegotiationAnswerSent
	c.mu.Unlock()

	log.Printf("📤 [%s] answer -> %s", c.selfID, from)
	return c.send.Send(protocol.NewAnswer(answer, from, c.selfID))
}

// handleAnswer completes a negotiation this side started. Answers for unknown
// sessions are dropped: expected under a broadcast relay.
func (c *Coordinator) handleAnswer(from string, answer webrtc.SessionDescription) error {
	c.mu.Lock()
	s, ok := c.sessions[from]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	if err := s.pc.SetRemoteDescription(answer); err != nil {
		return fmt.Errorf("set remote answer from %s: %w", from, err)
	}
	c.flushCandidates(s)

	c.mu.Lock()
	if _, ok := c.sessions[from]; ok {
		s.state = NegotiationConnected
	}
	c.mu.Unlock()

	log.Printf("✅ [%s] negotiation with %s complete", c.selfID, from)
	return nil
}

// handleCandidate registers a trickled candidate, buffering it if the remote
// description has not landed yet.
func (c *Coordinator) handleCandidate(from string, candidate webrtc.ICECandidateInit) error {
	c.mu.Lock()
	s, ok := c.sessions[from]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	if !s.remoteSet {
		s.pending = append(s.pending, candidate)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := s.pc.AddICECandidate(candidate); err != nil {
		return fmt.Errorf("add candidate from %s: %w", from, err)
	}
	return nil
}

// flushCandidates replays candidates buffered before the remote description.
func (c *Coordinator) flushCandidates(s *Session) {
	c.mu.Lock()
	s.remoteSet = true
	pending := s.pending
	s.pending = nil
	c.mu.Unlock()

	for _, cand := range pending {
		if err := s.pc.AddICECandidate(cand); err != nil {
			log.Printf("⚠️  [%s] buffered candidate for %s rejected: %v", c.selfID, s.peerID, err)
		}
	}
}

// Hangup stops local capture and discards every session. Idempotent. Sessions
// close before the capture releases so no connection is left mid-negotiation
// holding dead tracks.
func (c *Coordinator) Hangup() {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[string]*Session)
	capture := c.capture
	c.capture = nil
	c.mu.Unlock()

	for peerID, s := range sessions {
		s.pc.Close()
		c.surface.PeerGone(peerID)
	}
	if capture != nil {
		capture.Close()
		log.Printf("👋 [%s] call ended, %d sessions closed", c.selfID, len(sessions))
	}
	c.surface.CallEnded()
}

// Close tears the mesh down. Leaving the room must not leave peer connections
// behind.
func (c *Coordinator) Close() {
	c.Hangup()
}

// SetAudioEnabled toggles the local audio track for every session at once.
func (c *Coordinator) SetAudioEnabled(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capture == nil {
		return ErrNotInCall
	}
	c.capture.SetAudioEnabled(on)
	return nil
}

// SetVideoEnabled toggles the local video track for every session at once.
func (c *Coordinator) SetVideoEnabled(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capture == nil {
		return ErrNotInCall
	}
	c.capture.SetVideoEnabled(on)
	return nil
}

// ensureSessionLocked returns the session for peerID, creating it with the
// shared local tracks attached if this is the first signaling contact.
// Caller holds c.mu.
func (c *Coordinator) ensureSessionLocked(peerID string) (*Session, error) {
	if s, ok := c.sessions[peerID]; ok {
		return s, nil
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: c.cfg.ICEServers})
	if err != nil {
		return nil, fmt.Errorf("peer connection for %s: %w", peerID, err)
	}

	if c.capture != nil {
		if _, err := pc.AddTrack(c.capture.AudioTrack()); err != nil {
			pc.Close()
			return nil, fmt.Errorf("attach audio for %s: %w", peerID, err)
		}
		if _, err := pc.AddTrack(c.capture.VideoTrack()); err != nil {
			pc.Close()
			return nil, fmt.Errorf("attach video for %s: %w", peerID, err)
		}
	}

	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		log.Printf("🎥 [%s] incoming %s track from %s", c.selfID, track.Kind(), peerID)
		c.surface.RemoteTrack(peerID, track, receiver)
	})

	pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate == nil {
			return
		}
		if err := c.send.Send(protocol.NewCandidate(candidate.ToJSON(), peerID, c.selfID)); err != nil {
			log.Printf("⚠️  [%s] candidate send to %s failed: %v", c.selfID, peerID, err)
		}
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Printf("🎥 [%s] %s connection state: %s", c.selfID, peerID, state)
		switch state {
		case webrtc.PeerConnectionStateDisconnected,
			webrtc.PeerConnectionStateFailed,
			webrtc.PeerConnectionStateClosed:
			c.dropSession(peerID)
		}
	})

	s := &Session{peerID: peerID, pc: pc, state: NegotiationNew}
	c.sessions[peerID] = s
	log.Printf("✅ [%s] session created for %s, total: %d", c.selfID, peerID, len(c.sessions))
	return s, nil
}

// dropSession discards one peer after its connection died.
func (c *Coordinator) dropSession(peerID string) {
	c.mu.Lock()
	s, ok := c.sessions[peerID]
	if ok {
		delete(c.sessions, peerID)
	}
	c.mu.Unlock()

	if ok {
		s.pc.Close()
		c.surface.PeerGone(peerID)
	}
}

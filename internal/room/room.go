// Package room runs one joined game room: it reads the websocket channel,
// routes each message to the view store or the video mesh, and exposes the
// user intents the terminal layer invokes.
package room

import (
	"errors"
	"log"
	"sync"

	"github.com/bluffmesh/gameclient/internal/channel"
	"github.com/bluffmesh/gameclient/internal/command"
	"github.com/bluffmesh/gameclient/internal/mesh"
	"github.com/bluffmesh/gameclient/internal/protocol"
	"github.com/bluffmesh/gameclient/internal/view"
)

// Config for a room session.
type Config struct {
	View view.Config
	Mesh mesh.Config
}

// DefaultConfig returns sensible defaults. Mesh.Capture must still be set by
// the caller before video calls can start.
func DefaultConfig() Config {
	return Config{
		View: view.DefaultConfig(),
		Mesh: mesh.DefaultConfig(),
	}
}

// Room is one live session in a joined room. All inbound traffic flows
// through Run's single loop, so handlers never race each other.
type Room struct {
	selfID   string
	conn     channel.Conn
	renderer view.Renderer

	state *view.State
	mesh  *mesh.Coordinator
	enc   *command.Encoder

	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

// New wires a session for the local participant. surface receives remote
// video tracks; renderer receives everything else.
func New(selfID, name string, conn channel.Conn, renderer view.Renderer, surface mesh.VideoSurface, cfg Config) *Room {
	state := view.NewState(selfID, renderer, cfg.View)
	notify := func(message string) { renderer.System(message) }
	return &Room{
		selfID:   selfID,
		conn:     conn,
		renderer: renderer,
		state:    state,
		mesh:     mesh.NewCoordinator(selfID, name, conn, surface, notify, cfg.Mesh),
		enc:      command.NewEncoder(selfID, name, state, conn),
	}
}

// Run reads the channel until it closes. Messages are dispatched one at a
// time in arrival order. Returns nil on a clean close.
func (r *Room) Run() error {
	for {
		data, err := r.conn.Receive()
		if err != nil {
			r.mu.Lock()
			closed := r.closed
			r.mu.Unlock()
			if closed || errors.Is(err, channel.ErrClosed) {
				return nil
			}
			return err
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			// A message we cannot read must not kill the session.
			log.Printf("⚠️ [%s] dropping message: %v", r.selfID, err)
			continue
		}
		r.dispatch(msg)
	}
}

func (r *Room) dispatch(msg protocol.Inbound) {
	switch m := msg.(type) {
	case protocol.Chat:
		r.renderer.Chat(m.User, m.Message)
	case protocol.RoomUpdate:
		r.state.ApplyRoomUpdate(m)
	case protocol.GameState:
		r.state.ApplyGameState(m)
	case protocol.YourHand:
		r.state.ApplyHand(m.Hand)
	case protocol.GameEvent:
		r.state.ApplyGameEvent(m)
	case protocol.ErrorMessage:
		r.renderer.System("⚠️ " + m.Message)
	case protocol.CallRequest, protocol.OfferSignal, protocol.AnswerSignal, protocol.CandidateSignal:
		if err := r.mesh.HandleSignal(msg); err != nil {
			log.Printf("⚠️ [%s] signaling: %v", r.selfID, err)
		}
	}
}

// Close tears the session down: peers hang up before the channel drops so no
// peer connection outlives its signaling path. Safe to call more than once.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		r.mesh.Close()
		r.state.Stop()
		if err := r.conn.Close(); err != nil {
			log.Printf("⚠️ [%s] channel close: %v", r.selfID, err)
		}
		log.Printf("👋 [%s] left the room", r.selfID)
	})
}

// Leave is the user-facing exit: hang up, stop timers, drop the channel.
func (r *Room) Leave() { r.Close() }

// State exposes the view store for read access.
func (r *Room) State() *view.State { return r.state }

// ToggleSelection adds or removes a hand card from the pending play.
func (r *Room) ToggleSelection(card string) error {
	return r.state.ToggleSelection(card)
}

// StartGame asks the server to deal.
func (r *Room) StartGame() error { return r.enc.StartGame() }

// Play sends the current selection under claim. Empty claim follows the
// round's existing claim.
func (r *Room) Play(claim string) error { return r.enc.Play(claim) }

// Pass passes the turn.
func (r *Room) Pass() error { return r.enc.Pass() }

// Doubt challenges the previous play.
func (r *Room) Doubt() error { return r.enc.Doubt() }

// Chat sends a chat line.
func (r *Room) Chat(message string) error { return r.enc.Chat(message) }

// StartCall acquires local media and announces to the room. Announcing is
// also how a participant joins a running call: everyone already in it offers
// back on hearing the announcement.
func (r *Room) StartCall() error { return r.mesh.StartLocalCall() }

// Hangup leaves the call, keeping the game session alive.
func (r *Room) Hangup() { r.mesh.Hangup() }

// InCall reports whether local media is live.
func (r *Room) InCall() bool { return r.mesh.InCall() }

// SetAudioEnabled mutes or unmutes the local microphone.
func (r *Room) SetAudioEnabled(on bool) error { return r.mesh.SetAudioEnabled(on) }

// SetVideoEnabled pauses or resumes the local camera.
func (r *Room) SetVideoEnabled(on bool) error { return r.mesh.SetVideoEnabled(on) }

// Package command validates and serializes local user intents into outbound
// channel messages. Rejections happen before anything touches the wire.
package command

import (
	"strings"

	"github.com/bluffmesh/gameclient/internal/protocol"
	"github.com/bluffmesh/gameclient/internal/view"
)

// Sender writes one message to the room channel.
type Sender interface {
	Send(v any) error
}

// Encoder turns user intents into channel traffic. It is stateless beyond
// reading the view store for precondition checks.
type Encoder struct {
	selfID string
	name   string
	view   *view.State
	send   Sender
}

// NewEncoder creates an encoder for the local participant.
func NewEncoder(selfID, name string, st *view.State, send Sender) *Encoder {
	return &Encoder{selfID: selfID, name: name, view: st, send: send}
}

// StartGame asks the server to deal.
func (e *Encoder) StartGame() error {
	return e.send.Send(protocol.NewStartGame())
}

// Play sends the current selection under the given claim. claim is empty when
// following the round's existing claim. The selection clears only after the
// message is on the wire.
func (e *Encoder) Play(claim string) error {
	selected := e.view.Selection()
	if len(selected) == 0 {
		return ErrNoSelection
	}

	var claimed *string
	if claim != "" {
		claimed = &claim
	}
	if err := e.send.Send(protocol.NewPlay(selected, claimed)); err != nil {
		return err
	}
	e.view.ClearSelection()
	return nil
}

// Pass passes the turn.
func (e *Encoder) Pass() error {
	return e.send.Send(protocol.NewPass())
}

// Doubt challenges the previous play.
func (e *Encoder) Doubt() error {
	return e.send.Send(protocol.NewDoubt())
}

// Chat sends a chat line. Blank messages are rejected locally.
func (e *Encoder) Chat(message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	return e.send.Send(protocol.NewChat(message))
}

// RequestCall announces to the room that the local participant started a
// video call.
func (e *Encoder) RequestCall() error {
	return e.send.Send(protocol.NewCallRequest(e.selfID, e.name))
}

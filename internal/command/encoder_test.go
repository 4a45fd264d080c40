package command

import (
	"errors"
	"testing"

	"github.com/bluffmesh/gameclient/internal/channel"
	"github.com/bluffmesh/gameclient/internal/protocol"
	"github.com/bluffmesh/gameclient/internal/view"
)

func newEncoder(t *testing.T, hand ...view.Card) (*Encoder, *view.State, *channel.Mock) {
	t.Helper()
	st := view.NewState("P1", view.NopRenderer{}, view.DefaultConfig())
	st.ApplyHand(hand)
	mock := channel.NewMock()
	return NewEncoder("P1", "Ana", st, mock), st, mock
}

func TestPlaySendsSelectionAndClears(t *testing.T) {
	enc, st, mock := newEncoder(t, "3♠", "5♦", "7♥", "K♣")
	st.ToggleSelection("5♦")
	st.ToggleSelection("7♥")

	if err := enc.Play("7"); err != nil {
		t.Fatalf("Play: %v", err)
	}

	sent := mock.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one outbound message, got %d", len(sent))
	}
	play, ok := sent[0].(protocol.PlayCommand)
	if !ok {
		t.Fatalf("expected PlayCommand, got %T", sent[0])
	}
	if len(play.Cards) != 2 || play.Cards[0] != "5♦" || play.Cards[1] != "7♥" {
		t.Errorf("expected cards [5♦ 7♥], got %v", play.Cards)
	}
	if play.Claim == nil || *play.Claim != "7" {
		t.Errorf("expected claim 7, got %v", play.Claim)
	}
	if got := len(st.Selection()); got != 0 {
		t.Errorf("expected selection cleared after send, got %d", got)
	}
}

func TestPlayRejectsEmptySelection(t *testing.T) {
	enc, _, mock := newEncoder(t, "3♠")

	if err := enc.Play("3"); !errors.Is(err, ErrNoSelection) {
		t.Errorf("expected ErrNoSelection, got %v", err)
	}
	if got := len(mock.SentMessages()); got != 0 {
		t.Errorf("rejected play produced %d channel messages", got)
	}
}

func TestPlayWithoutClaim(t *testing.T) {
	enc, st, mock := newEncoder(t, "3♠")
	st.ToggleSelection("3♠")

	if err := enc.Play(""); err != nil {
		t.Fatalf("Play: %v", err)
	}

	play := mock.SentMessages()[0].(protocol.PlayCommand)
	if play.Claim != nil {
		t.Errorf("expected nil claim when following, got %v", *play.Claim)
	}
}

func TestPlayKeepsSelectionOnSendFailure(t *testing.T) {
	st := view.NewState("P1", view.NopRenderer{}, view.DefaultConfig())
	st.ApplyHand([]view.Card{"3♠"})
	st.ToggleSelection("3♠")
	mock := channel.NewMock()
	mock.Close()
	enc := NewEncoder("P1", "Ana", st, mock)

	if err := enc.Play("3"); err == nil {
		t.Fatal("expected send error")
	}
	if got := len(st.Selection()); got != 1 {
		t.Errorf("selection must survive a failed send, got %d", got)
	}
}

func TestChatRejectsBlank(t *testing.T) {
	enc, _, mock := newEncoder(t)

	if err := enc.Chat("   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
	if got := len(mock.SentMessages()); got != 0 {
		t.Errorf("rejected chat produced %d channel messages", got)
	}
}

func TestSimpleCommands(t *testing.T) {
	enc, _, mock := newEncoder(t)

	enc.StartGame()
	enc.Pass()
	enc.Doubt()
	enc.Chat("hello")
	enc.RequestCall()

	sent := mock.SentMessages()
	if len(sent) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(sent))
	}
	if _, ok := sent[0].(protocol.StartGameCommand); !ok {
		t.Errorf("expected StartGameCommand, got %T", sent[0])
	}
	if _, ok := sent[1].(protocol.PassCommand); !ok {
		t.Errorf("expected PassCommand, got %T", sent[1])
	}
	if _, ok := sent[2].(protocol.DoubtCommand); !ok {
		t.Errorf("expected DoubtCommand, got %T", sent[2])
	}
	chat, ok := sent[3].(protocol.ChatCommand)
	if !ok || chat.Message != "hello" {
		t.Errorf("expected chat 'hello', got %#v", sent[3])
	}
	req, ok := sent[4].(protocol.CallRequest)
	if !ok || req.From != "P1" || req.Name != "Ana" {
		t.Errorf("expected call request from P1/Ana, got %#v", sent[4])
	}
}

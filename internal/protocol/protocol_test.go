package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeRoomUpdate(t *testing.T) {
	raw := []byte(`{"type":"room_update","players":[{"id":"p1","name":"Ana","cards":13},{"id":"p2","name":"Ben","cards":null}],"current_turn":"p1","game_started":true}`)

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	update, ok := msg.(RoomUpdate)
	if !ok {
		t.Fatalf("expected RoomUpdate, got %T", msg)
	}
	if len(update.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(update.Players))
	}
	if update.Players[0].Cards == nil || *update.Players[0].Cards != 13 {
		t.Error("expected p1 to hold 13 cards")
	}
	if update.Players[1].Cards != nil {
		t.Error("expected p2 card count to be unknown")
	}
	if update.CurrentTurn != "p1" {
		t.Errorf("expected turn p1, got %s", update.CurrentTurn)
	}
}

func TestDecodeGameStatePartial(t *testing.T) {
	raw := []byte(`{"type":"game_state","current_turn":"p2","pile_count":5}`)

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	gs, ok := msg.(GameState)
	if !ok {
		t.Fatalf("expected GameState, got %T", msg)
	}
	if gs.CurrentTurn == nil || *gs.CurrentTurn != "p2" {
		t.Error("expected current_turn p2")
	}
	if gs.PileCount == nil || *gs.PileCount != 5 {
		t.Error("expected pile_count 5")
	}
	// Absent fields stay nil so the store keeps prior values.
	if gs.Claim != nil {
		t.Error("expected absent claim to decode as nil")
	}
	if gs.LastPlayCount != nil {
		t.Error("expected absent last_play_count to decode as nil")
	}
}

func TestDecodeGameEvent(t *testing.T) {
	raw := []byte(`{"type":"game_event","event":"cards_played","by":"p2","count":2,"claim":"7","cards":["7♠","3♥"]}`)

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	ev, ok := msg.(GameEvent)
	if !ok {
		t.Fatalf("expected GameEvent, got %T", msg)
	}
	if ev.Event != EventCardsPlayed {
		t.Errorf("expected %s, got %s", EventCardsPlayed, ev.Event)
	}
	if ev.By != "p2" || ev.Count != 2 {
		t.Errorf("expected by=p2 count=2, got by=%s count=%d", ev.By, ev.Count)
	}
	if len(ev.Cards) != 2 {
		t.Errorf("expected 2 cards, got %d", len(ev.Cards))
	}
}

func TestDecodeSignalAddressing(t *testing.T) {
	raw := []byte(`{"type":"candidate","candidate":{"candidate":"candidate:1 1 udp 2130706431 192.0.2.1 54321 typ host"},"to":"p2","from":"p1"}`)

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	cand, ok := msg.(CandidateSignal)
	if !ok {
		t.Fatalf("expected CandidateSignal, got %T", msg)
	}
	if cand.To != "p2" || cand.From != "p1" {
		t.Errorf("expected to=p2 from=p1, got to=%s from=%s", cand.To, cand.From)
	}
	if cand.Candidate.Candidate == "" {
		t.Error("expected candidate payload")
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"telemetry","value":1}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"type":`))
	if err == nil {
		t.Fatal("expected error for malformed frame")
	}
	if errors.Is(err, ErrUnknownType) {
		t.Error("malformed frame should not be reported as unknown type")
	}
}

func TestNewPlayWire(t *testing.T) {
	claim := "7"
	data, err := json.Marshal(NewPlay([]string{"7♠", "7♦"}, &claim))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got["type"] != TypePlay {
		t.Errorf("expected type play, got %v", got["type"])
	}
	if got["claim"] != "7" {
		t.Errorf("expected claim 7, got %v", got["claim"])
	}
	cards, ok := got["cards"].([]any)
	if !ok || len(cards) != 2 {
		t.Errorf("expected 2 cards, got %v", got["cards"])
	}
}

func TestNewPlayNilClaim(t *testing.T) {
	data, err := json.Marshal(NewPlay([]string{"3♥"}, nil))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	// Following an existing claim sends an explicit null, which the server
	// treats as "no new claim".
	if v, present := got["claim"]; !present || v != nil {
		t.Errorf("expected explicit null claim, got %v (present=%v)", v, present)
	}
}

func TestSignalRoundTrip(t *testing.T) {
	out := NewCallRequest("p1", "Ana")
	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	msg, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	req, ok := msg.(CallRequest)
	if !ok {
		t.Fatalf("expected CallRequest, got %T", msg)
	}
	if req.From != "p1" || req.Name != "Ana" {
		t.Errorf("expected from=p1 name=Ana, got from=%s name=%s", req.From, req.Name)
	}
}

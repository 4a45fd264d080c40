package main

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/bluffmesh/gameclient/internal/view"
)

// terminal renders the table to stdout. It doubles as the video surface;
// remote tracks are drained and acknowledged, a terminal has nowhere to
// show them.
type terminal struct {
	mu sync.Mutex
}

func newTerminal() *terminal {
	return &terminal{}
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Printf(format+"\n", args...)
}

func (t *terminal) Seating(seats []view.Seat) {
	parts := make([]string, 0, len(seats))
	for _, s := range seats {
		label := s.Name
		if s.IsSelf {
			label += " (you)"
		} else {
			label += fmt.Sprintf(" [%d cards]", s.FaceDown)
		}
		if s.IsTurn {
			label = "▶ " + label
		}
		parts = append(parts, fmt.Sprintf("%s: %s", s.Position, label))
	}
	t.printf("🪑 %s", strings.Join(parts, " | "))
}

func (t *terminal) Roster(participants []view.Participant) {
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		names = append(names, p.Name)
	}
	t.printf("👥 in room: %s", strings.Join(names, ", "))
}

func (t *terminal) Pile(p view.PileView) {
	if len(p.Revealed) > 0 {
		t.printf("👀 revealed: %s", strings.Join(p.Revealed, " "))
		return
	}
	if p.Covered == 0 && p.LastPlay == 0 {
		t.printf("🂠 pile is empty")
		return
	}
	t.printf("🂠 pile: %d face down, %d just played", p.Covered, p.LastPlay)
}

func (t *terminal) Claim(label string) {
	t.printf("📣 current claim: %s", label)
}

func (t *terminal) Hand(hand []view.Card, selected []view.Card) {
	parts := make([]string, 0, len(hand))
	for i, card := range hand {
		mark := ""
		for _, s := range selected {
			if s == card {
				mark = "*"
				break
			}
		}
		parts = append(parts, fmt.Sprintf("%d:%s%s", i+1, card, mark))
	}
	t.printf("🃏 %s", strings.Join(parts, "  "))
}

func (t *terminal) Chat(user, message string) {
	t.printf("💬 %s: %s", user, message)
}

func (t *terminal) System(message string) {
	t.printf("📢 %s", message)
}

func (t *terminal) PlayerStatus(id, text string) {
	if text == "" {
		return // statuses expire silently in a scrolling terminal
	}
	t.printf("💭 %s %s", id, text)
}

func (t *terminal) RemoteTrack(peerID string, track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
	t.printf("🎥 receiving %s from %s", track.Kind(), peerID)
	// Keep the track flowing so the peer connection stays healthy.
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := track.Read(buf); err != nil {
				if err != io.EOF {
					log.Printf("⚠️ track from %s: %v", peerID, err)
				}
				return
			}
		}
	}()
}

func (t *terminal) PeerGone(peerID string) {
	t.printf("👋 %s left the call", peerID)
}

func (t *terminal) CallEnded() {
	t.printf("📴 call ended")
}

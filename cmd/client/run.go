package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pion/webrtc/v4"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/bluffmesh/gameclient/internal/channel"
	"github.com/bluffmesh/gameclient/internal/lobby"
	"github.com/bluffmesh/gameclient/internal/mesh"
	"github.com/bluffmesh/gameclient/internal/room"
)

func run(ctx context.Context, cfg *Config) error {
	api := lobby.NewClient(cfg.server, lobby.DefaultConfig())

	var creds lobby.Credentials
	var err error
	if cfg.register {
		creds, err = api.Register(ctx, cfg.email, cfg.password, cfg.name)
	} else {
		creds, err = api.Login(ctx, cfg.email, cfg.password)
	}
	if err != nil {
		return err
	}

	id, err := lobby.ParseIdentity(creds.Token)
	if err != nil {
		return err
	}
	name := id.Name
	if name == "" {
		name = creds.Name
	}
	log.Printf("✅ logged in as %s", name)

	code := cfg.room
	if code == "" {
		code, err = api.CreateRoom(ctx)
		if err != nil {
			return err
		}
		log.Printf("🏠 created room %s", code)
	} else {
		if err := api.JoinRoom(ctx, code); err != nil {
			return err
		}
		log.Printf("🏠 joined room %s", code)
	}

	shareLink := fmt.Sprintf("%s/static/room.html?code=%s", strings.TrimRight(cfg.server, "/"), code)
	if qr, err := qrcode.New(shareLink, qrcode.Medium); err == nil {
		fmt.Print(qr.ToSmallString(false))
	}
	log.Printf("🔗 share this room: %s", shareLink)

	if cfg.verbose {
		if members, err := api.Roster(ctx, code); err == nil {
			names := make([]string, 0, len(members))
			for _, m := range members {
				names = append(names, m.Name)
			}
			log.Printf("👥 already here: %s", strings.Join(names, ", "))
		}
	}

	conn, err := channel.Dial(ctx, cfg.server, code, creds.Token, channel.DefaultConfig())
	if err != nil {
		return err
	}

	rcfg := room.DefaultConfig()
	rcfg.Mesh.ICEServers = []webrtc.ICEServer{{URLs: []string{cfg.stun}}}
	if !cfg.noMedia {
		audioPort, videoPort := cfg.audioPort, cfg.videoPort
		rcfg.Mesh.Capture = func() (mesh.Capture, error) {
			return mesh.NewRTPCapture(audioPort, videoPort)
		}
	}

	term := newTerminal()
	sess := room.New(id.ID, name, conn, term, term, rcfg)
	defer sess.Leave()

	errc := make(chan error, 1)
	go func() { errc <- sess.Run() }()

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	printHelp()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleLine(sess, line); quit {
				log.Println("👋 Goodbye!")
				return nil
			}
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  hand                show your cards and selection
  sel <n|card>        toggle a card for the next play
  play [claim]        play the selection, optionally declaring a rank
  pass | doubt        pass the turn / call the bluff
  start               start the game (room creator)
  say <message>       chat
  call | hangup       start or leave the video call
  mic on|off          toggle microphone
  cam on|off          toggle camera
  quit                leave the room`)
}

// handleLine runs one user command. Returns true on quit.
func handleLine(sess *room.Room, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	var err error
	switch fields[0] {
	case "quit", "exit":
		return true
	case "help":
		printHelp()
	case "hand":
		printHand(sess)
	case "sel":
		if arg == "" {
			fmt.Println("usage: sel <n|card>")
			break
		}
		err = sess.ToggleSelection(resolveCard(sess, arg))
		if err == nil {
			printHand(sess)
		}
	case "play":
		err = sess.Play(arg)
	case "pass":
		err = sess.Pass()
	case "doubt":
		err = sess.Doubt()
	case "start":
		err = sess.StartGame()
	case "say":
		err = sess.Chat(arg)
	case "call":
		err = sess.StartCall()
	case "hangup":
		sess.Hangup()
	case "mic":
		err = sess.SetAudioEnabled(arg != "off")
	case "cam":
		err = sess.SetVideoEnabled(arg != "off")
	default:
		fmt.Printf("unknown command %q, try help\n", fields[0])
	}
	if err != nil {
		log.Printf("⚠️ %v", err)
	}
	return false
}

// resolveCard accepts either a 1-based hand index or the card itself.
func resolveCard(sess *room.Room, arg string) string {
	if n, err := strconv.Atoi(arg); err == nil {
		hand := sess.State().Hand()
		if n >= 1 && n <= len(hand) {
			return hand[n-1]
		}
	}
	return arg
}

func printHand(sess *room.Room) {
	hand := sess.State().Hand()
	selected := sess.State().Selection()
	if len(hand) == 0 {
		fmt.Println("🃏 no cards yet")
		return
	}
	parts := make([]string, 0, len(hand))
	for i, card := range hand {
		mark := " "
		for _, s := range selected {
			if s == card {
				mark = "*"
				break
			}
		}
		parts = append(parts, fmt.Sprintf("%d:%s%s", i+1, card, mark))
	}
	fmt.Println("🃏 " + strings.Join(parts, "  "))
}

package mesh

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

// Capture is the local media source shared by every peer session. There is at
// most one capture per client, alive only while the local user is in a call.
type Capture interface {
	AudioTrack() webrtc.TrackLocal
	VideoTrack() webrtc.TrackLocal
	SetAudioEnabled(bool)
	SetVideoEnabled(bool)
	Close() error
}

// CaptureFunc acquires local media. Implementations return an error wrapping
// ErrMediaUnavailable when no device or permission is available.
type CaptureFunc func() (Capture, error)

// RTPCapture ingests RTP from two local UDP ports into local tracks, one for
// Opus audio and one for VP8 video. Feed it with ffmpeg or gstreamer:
//
//	ffmpeg -i ... -an -f rtp rtp://127.0.0.1:4002 -vn -f rtp rtp://127.0.0.1:4000
type RTPCapture struct {
	audio     *webrtc.TrackLocalStaticRTP
	video     *webrtc.TrackLocalStaticRTP
	audioConn *net.UDPConn
	videoConn *net.UDPConn
	audioOn   atomic.Bool
	videoOn   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewRTPCapture binds the two ingest ports and starts pumping packets. A bind
// failure maps to ErrMediaUnavailable: the local machine cannot provide media.
func NewRTPCapture(audioPort, videoPort int) (*RTPCapture, error) {
	// Both tracks share one stream id so receivers group them as one feed.
	streamID := uuid.NewString()
	audio, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
		"audio", streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("audio track: %w", err)
	}
	video, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000},
		"video", streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("video track: %w", err)
	}

	audioConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: audioPort})
	if err != nil {
		return nil, fmt.Errorf("%w: bind audio port %d: %v", ErrMediaUnavailable, audioPort, err)
	}
	videoConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: videoPort})
	if err != nil {
		audioConn.Close()
		return nil, fmt.Errorf("%w: bind video port %d: %v", ErrMediaUnavailable, videoPort, err)
	}

	c := &RTPCapture{
		audio:     audio,
		video:     video,
		audioConn: audioConn,
		videoConn: videoConn,
	}
	c.audioOn.Store(true)
	c.videoOn.Store(true)

	go c.pump(audioConn, audio, &c.audioOn)
	go c.pump(videoConn, video, &c.videoOn)
	return c, nil
}

// pump forwards raw RTP into the shared local track. Disabled tracks drop
// packets instead of unbinding, so re-enabling needs no renegotiation.
func (c *RTPCapture) pump(conn *net.UDPConn, track *webrtc.TrackLocalStaticRTP, enabled *atomic.Bool) {
	buf := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		if !enabled.Load() {
			continue
		}
		if _, err := track.Write(buf[:n]); err != nil {
			return
		}
	}
}

func (c *RTPCapture) AudioTrack() webrtc.TrackLocal { return c.audio }
func (c *RTPCapture) VideoTrack() webrtc.TrackLocal { return c.video }

func (c *RTPCapture) SetAudioEnabled(on bool) { c.audioOn.Store(on) }
func (c *RTPCapture) SetVideoEnabled(on bool) { c.videoOn.Store(on) }

// Close releases the ingest sockets. Idempotent.
func (c *RTPCapture) Close() error {
	c.closeOnce.Do(func() {
		if err := c.audioConn.Close(); err != nil {
			c.closeErr = err
		}
		if err := c.videoConn.Close(); err != nil && c.closeErr == nil {
			c.closeErr = err
		}
	})
	return c.closeErr
}

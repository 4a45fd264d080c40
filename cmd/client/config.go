package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	server    string
	email     string
	password  string
	name      string
	register  bool
	room      string
	stun      string
	audioPort int
	videoPort int
	noMedia   bool
	verbose   bool
}

func (c *Config) validate() error {
	if c.server == "" {
		return errors.New("--server is required")
	}
	if c.email == "" || c.password == "" {
		return errors.New("--email and --password are required")
	}
	if c.register && c.name == "" {
		return errors.New("--name is required when registering")
	}
	if !c.noMedia {
		for _, port := range []int{c.audioPort, c.videoPort} {
			if port < 1 || port > 65535 {
				return fmt.Errorf("invalid media port (must be between 1-65535 inclusive): %d", port)
			}
		}
		if c.audioPort == c.videoPort {
			return errors.New("--audio-port and --video-port must differ")
		}
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BLUFF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "client",
		Short:         "Terminal client for the bluff card game, video call included.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.server, "server", "s", "http://localhost:8000", "lobby server base URL (env: BLUFF_SERVER)")
	fs.StringVarP(&cfg.email, "email", "e", "", "account email (env: BLUFF_EMAIL)")
	fs.StringVarP(&cfg.password, "password", "p", "", "account password (env: BLUFF_PASSWORD)")
	fs.StringVarP(&cfg.name, "name", "n", "", "display name, used when registering (env: BLUFF_NAME)")
	fs.BoolVar(&cfg.register, "register", false, "create the account before logging in (env: BLUFF_REGISTER)")
	fs.StringVarP(&cfg.room, "room", "r", "", "room code to join; empty creates a new room (env: BLUFF_ROOM)")
	fs.StringVar(&cfg.stun, "stun", "stun:stun.l.google.com:19302", "STUN server for the video mesh (env: BLUFF_STUN)")
	fs.IntVar(&cfg.audioPort, "audio-port", 4000, "local UDP port fed with Opus RTP (env: BLUFF_AUDIO_PORT)")
	fs.IntVar(&cfg.videoPort, "video-port", 4002, "local UDP port fed with VP8 RTP (env: BLUFF_VIDEO_PORT)")
	fs.BoolVar(&cfg.noMedia, "no-media", false, "disable the video call entirely (env: BLUFF_NO_MEDIA)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: BLUFF_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("client v{{.Version}}\n")

	cmd.SilenceUsage = true

	return cmd
}

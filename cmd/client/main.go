// Command client is a terminal client for the bluff game server: it logs in,
// creates or joins a room, and runs the table and the video mesh from there.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

const releaseVersion = "0.1.0"

func main() {
	log.SetFlags(0)
	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

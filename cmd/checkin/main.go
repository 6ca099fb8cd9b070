// Command checkin is a kiosk client for the attendance API: sign in, mark
// today's attendance from a network camera or a file, and look at the
// leaderboard.
package main

import (
	"fmt"
	"os"
)

func main() {
	cli := newCommandLine(os.Stdout)
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/inkdrift/inkdrift/internal/game"
	"github.com/inkdrift/inkdrift/internal/session"
	"github.com/inkdrift/inkdrift/internal/story"
	"github.com/inkdrift/inkdrift/internal/tui"
)

func main() {
	savesDir := flag.String("saves", "saves", "directory for save slots")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-saves dir] <story.yaml>\n", os.Args[0])
		os.Exit(2)
	}

	s, err := story.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading story: %v\n", err)
		os.Exit(1)
	}

	store, err := session.NewFileStore(*savesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening save directory: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(game.NewEngine(s), store); err != nil {
		fmt.Fprintf(os.Stderr, "Error running player: %v\n", err)
		os.Exit(1)
	}
}

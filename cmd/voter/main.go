// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command voter is the terminal client for a votedeck round: it walks the
// catalog one item at a time, submits the scores and shows the leaderboard.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/votedeck/client"
)

func main() {
	fs := flag.NewFlagSet("voter", flag.ExitOnError)
	server := fs.String("server", "", "API base URL (or VOTEDECK_SERVER)")
	nicknameFile := fs.String("nickname-file", "", "Where the nickname is kept (default: user config dir)")
	noColor := fs.Bool("no-color", false, "Disable coloured output")
	fs.Parse(os.Args[1:])

	if *server == "" {
		*server = os.Getenv("VOTEDECK_SERVER")
	}
	if *server == "" {
		*server = "http://localhost:3318"
	}

	path := *nicknameFile
	if path == "" {
		p, err := defaultNicknamePath()
		if err != nil {
			slog.Error("no place to store nickname", "error", err)
			os.Exit(1)
		}
		path = p
	}

	color := !*noColor && os.Getenv("NO_COLOR") == "" &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, client.New(*server), fileStore{path: path}, os.Stdin, os.Stdout, color)
	if err != nil {
		slog.Error("voter stopped", "error", err, "server", *server)
		os.Exit(1)
	}
}

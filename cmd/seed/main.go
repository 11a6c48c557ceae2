// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command seed uploads a catalog described by a YAML manifest:
//
//	items:
//	  - description: Red fox
//	    image: fox.png
//	  - description: Snowy owl
//	    image: owl.jpg
//	    mime: image/jpeg
//
// Image paths are relative to the manifest.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/votedeck/client"
)

// uploader is the part of client.Client the seeder needs
type uploader interface {
	CreateItem(ctx context.Context, description, filename string, image io.Reader, mime string) (int64, error)
}

func main() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	server := fs.String("server", "", "API base URL (or VOTEDECK_SERVER)")
	path := fs.String("f", "catalog.yaml", "Manifest file")
	fs.Parse(os.Args[1:])

	if *server == "" {
		*server = os.Getenv("VOTEDECK_SERVER")
	}
	if *server == "" {
		*server = "http://localhost:3318"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(*path)
	if err != nil {
		slog.Error("Failed to open manifest", "error", err)
		os.Exit(1)
	}
	m, err := parseManifest(f, filepath.Dir(*path))
	f.Close()
	if err != nil {
		slog.Error("Invalid manifest", "path", *path, "error", err)
		os.Exit(1)
	}

	n, err := seed(ctx, client.New(*server), m)
	if err != nil {
		slog.Error("Seeding stopped", "uploaded", n, "error", err)
		os.Exit(1)
	}
	slog.Info("Catalog seeded", "items", n, "server", *server)
}

// seed uploads items in order and stops at the first failure, returning how
// many were created
func seed(ctx context.Context, up uploader, m manifest) (int, error) {
	for i, it := range m.Items {
		img, err := os.Open(it.Image)
		if err != nil {
			return i, fmt.Errorf("item %d: %w", i+1, err)
		}
		var size uint64
		if st, err := img.Stat(); err == nil {
			size = uint64(st.Size())
		}

		id, err := up.CreateItem(ctx, it.Description, filepath.Base(it.Image), img, it.MIME)
		img.Close()
		if err != nil {
			return i, fmt.Errorf("item %d (%s): %w", i+1, it.Description, err)
		}
		slog.Info("Item uploaded", "id", id, "description", it.Description, "size", humanize.Bytes(size))
	}
	return len(m.Items), nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifest lists the items to upload, in catalog order
type manifest struct {
	Items []manifestItem `yaml:"items"`
}

type manifestItem struct {
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	MIME        string `yaml:"mime,omitempty"`
}

// parseManifest decodes a manifest and resolves relative image paths
// against dir
func parseManifest(r io.Reader, dir string) (manifest, error) {
	var m manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return manifest{}, errors.New("manifest is empty")
		}
		return manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if len(m.Items) == 0 {
		return manifest{}, errors.New("manifest has no items")
	}

	for i := range m.Items {
		it := &m.Items[i]
		it.Description = strings.TrimSpace(it.Description)
		if it.Description == "" {
			return manifest{}, fmt.Errorf("item %d: description is required", i+1)
		}
		if it.Image == "" {
			return manifest{}, fmt.Errorf("item %d: image is required", i+1)
		}
		if !filepath.IsAbs(it.Image) {
			it.Image = filepath.Join(dir, it.Image)
		}
	}
	return m, nil
}

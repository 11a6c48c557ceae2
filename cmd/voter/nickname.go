// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/danielhkuo/votedeck/identity"
)

// nicknameStore persists the voter's nickname between runs
type nicknameStore interface {
	Load() (string, error)
	Save(nickname string) error
}

// fileStore keeps the nickname in a single file
type fileStore struct {
	path string
}

// defaultNicknamePath is <user config dir>/votedeck/nickname
func defaultNicknamePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "votedeck", "nickname"), nil
}

// Load returns "" when no nickname was saved yet
func (f fileStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read nickname: %w", err)
	}
	return identity.Normalize(string(data)), nil
}

func (f fileStore) Save(nickname string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(identity.Normalize(nickname)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write nickname: %w", err)
	}
	return nil
}

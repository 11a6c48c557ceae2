// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/votedeck/client"
)

func TestParseManifest(t *testing.T) {
	m, err := parseManifest(strings.NewReader(`
items:
  - description: "  Red fox "
    image: fox.png
  - description: Snowy owl
    image: /abs/owl.jpg
    mime: image/jpeg
`), "/data")
	require.NoError(t, err)
	require.Len(t, m.Items, 2)
	assert.Equal(t, manifestItem{Description: "Red fox", Image: filepath.Join("/data", "fox.png")}, m.Items[0])
	assert.Equal(t, manifestItem{Description: "Snowy owl", Image: "/abs/owl.jpg", MIME: "image/jpeg"}, m.Items[1])
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "manifest is empty"},
		{"no items", "items: []\n", "no items"},
		{"missing description", "items:\n  - image: a.png\n", "item 1: description is required"},
		{"missing image", "items:\n  - description: a\n", "item 1: image is required"},
		{"unknown field", "items:\n  - description: a\n    image: a.png\n    colour: red\n", "decode manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseManifest(strings.NewReader(tt.doc), ".")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

type upload struct {
	description string
	filename    string
	mime        string
	data        string
}

func newUploadServer(t *testing.T, failAt int) (*httptest.Server, *[]upload) {
	t.Helper()
	var mu sync.Mutex
	var got []upload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/items" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)

		mu.Lock()
		defer mu.Unlock()
		if len(got)+1 == failAt {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Empty image upload"})
			return
		}
		got = append(got, upload{
			description: r.FormValue("description"),
			filename:    header.Filename,
			mime:        header.Header.Get("Content-Type"),
			data:        string(data),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]int64{"id": int64(len(got))})
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func writeImages(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fox.png"), []byte("fox-bytes"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "owl.jpg"), []byte("owl-bytes"), 0o600))
	return dir
}

func TestSeed(t *testing.T) {
	dir := writeImages(t)
	srv, got := newUploadServer(t, 0)

	m := manifest{Items: []manifestItem{
		{Description: "Red fox", Image: filepath.Join(dir, "fox.png"), MIME: "image/png"},
		{Description: "Snowy owl", Image: filepath.Join(dir, "owl.jpg"), MIME: "image/jpeg"},
	}}

	n, err := seed(context.Background(), client.New(srv.URL), m)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []upload{
		{"Red fox", "fox.png", "image/png", "fox-bytes"},
		{"Snowy owl", "owl.jpg", "image/jpeg", "owl-bytes"},
	}, *got)
}

func TestSeed_StopsAtFirstFailure(t *testing.T) {
	dir := writeImages(t)
	srv, got := newUploadServer(t, 2)

	m := manifest{Items: []manifestItem{
		{Description: "Red fox", Image: filepath.Join(dir, "fox.png")},
		{Description: "Snowy owl", Image: filepath.Join(dir, "owl.jpg")},
		{Description: "never sent", Image: filepath.Join(dir, "fox.png")},
	}}

	n, err := seed(context.Background(), client.New(srv.URL), m)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), "item 2 (Snowy owl)")
	assert.Len(t, *got, 1)
}

func TestSeed_MissingImage(t *testing.T) {
	srv, got := newUploadServer(t, 0)

	m := manifest{Items: []manifestItem{{Description: "ghost", Image: filepath.Join(t.TempDir(), "nope.png")}}}

	n, err := seed(context.Background(), client.New(srv.URL), m)
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, *got)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/votedeck/cliparse"
	"github.com/danielhkuo/votedeck/metrics"
	"github.com/danielhkuo/votedeck/middleware"
	"github.com/danielhkuo/votedeck/models"
)

// multipart overhead allowed on top of the image cap
const formSlack = 1 << 20

type CatalogHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	metrics *metrics.Metrics
}

func NewCatalogHandler(db *sql.DB, cfg cliparse.Config, m *metrics.Metrics) *CatalogHandler {
	return &CatalogHandler{db: db, cfg: cfg, metrics: m}
}

// CreateItem handles POST /items (multipart: description, image)
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxImageBytes+formSlack)
	if err := r.ParseMultipartForm(h.cfg.MaxImageBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge,
				"Upload exceeds "+humanize.Bytes(uint64(h.cfg.MaxImageBytes)))
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	description := strings.TrimSpace(r.FormValue("description"))
	if description == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "description is required")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	if header.Size > h.cfg.MaxImageBytes {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge,
			"Upload exceeds "+humanize.Bytes(uint64(h.cfg.MaxImageBytes)))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read upload", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read image")
		return
	}
	if len(data) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Empty image upload")
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}

	var id int64
	err = h.db.QueryRowContext(r.Context(), `
		INSERT INTO item (description, image_bytes, image_mime)
		VALUES ($1, $2, $3)
		RETURNING id
	`, description, data, mime).Scan(&id)
	if err != nil {
		slog.Error("failed to insert item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	h.metrics.ObserveItemCreated()
	slog.Info("item created",
		"item_id", id,
		"mime", mime,
		"size", humanize.Bytes(uint64(len(data))),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.ItemCreatedResponse{ID: id})
}

// ListItems handles GET /items
// Returns the catalog in ascending id order; voters see items in this order
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, description FROM item ORDER BY id
	`)
	if err != nil {
		slog.Error("failed to query items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	items := []models.ItemMeta{}
	for rows.Next() {
		var item models.ItemMeta
		if err := rows.Scan(&item.ID, &item.Description); err != nil {
			slog.Error("failed to scan item", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, items)
}

// GetItemImage handles GET /items/{id}/image
func (h *CatalogHandler) GetItemImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	var item models.Item
	err = h.db.QueryRowContext(r.Context(), `
		SELECT id, description, image_bytes, image_mime FROM item WHERE id = $1
	`, id).Scan(&item.ID, &item.Description, &item.ImageBytes, &item.ImageMIME)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("failed to query item image", "error", err, "item_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.Header().Set("Content-Type", item.ImageMIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(item.ImageBytes)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(item.ImageBytes); err != nil {
		slog.Warn("failed to write image", "error", err, "item_id", id)
	}
}

// GetTopic handles GET /topic
// 404 when no round title is configured; clients show their own placeholder
func (h *CatalogHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	if h.cfg.RoundTitle == "" {
		middleware.ErrorResponse(w, http.StatusNotFound, "No round title configured")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.TopicResponse{Title: h.cfg.RoundTitle})
}

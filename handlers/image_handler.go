package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jledbetter-dev/stagepilot/media"
	"github.com/jledbetter-dev/stagepilot/models"
	"github.com/jledbetter-dev/stagepilot/repository"
	"github.com/jledbetter-dev/stagepilot/storage"
)

const maxUploadBytes = 32 << 20

// ImageHandler serves the image upload/metadata/delete endpoints
type ImageHandler struct {
	Images        repository.ImageRepositoryInterface
	Rooms         repository.RoomRepositoryInterface
	Store         storage.Store
	UploadsBucket string
	DefaultUserID string
}

// Upload stores a room photograph: blob write first, then the metadata row.
// An optional room_id form field attaches the image to a room; the first
// image attached to a room becomes its reference image automatically.
func (ih *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	if !media.IsRasterImage(header.Filename) {
		writeError(w, http.StatusBadRequest, "Unsupported file type: "+filepath.Ext(header.Filename))
		return
	}

	var roomID *string
	if rid := r.FormValue("room_id"); rid != "" {
		if _, err := ih.Rooms.GetByID(rid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeError(w, http.StatusNotFound, "Room not found")
				return
			}
			log.Printf("Error checking room %s: %v", rid, err)
			writeError(w, http.StatusInternalServerError, "Could not verify room")
			return
		}
		roomID = &rid
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload: "+err.Error())
		return
	}
	data = media.NormalizeOrientation(data)

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	objectName := uuid.New().String() + "." + ext

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := ih.Store.Upload(ih.UploadsBucket, objectName, data, contentType)
	if err != nil {
		log.Printf("Error uploading image blob: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	info := media.ProbeImage(data)
	image := &models.Image{
		ID:               uuid.New().String(),
		UserID:           ih.DefaultUserID,
		RoomID:           roomID,
		OriginalFilename: header.Filename,
		OriginalURL:      url,
		Width:            info.Width,
		Height:           info.Height,
		FileSize:         info.FileSize,
		Format:           info.Format,
	}

	if err := ih.Images.Create(image); err != nil {
		log.Printf("Error creating image record: %v", err)
		// The row failed, drop the orphaned blob
		if delErr := ih.Store.Delete(ih.UploadsBucket, objectName); delErr != nil {
			log.Printf("Error cleaning up blob %s: %v", objectName, delErr)
		}
		writeError(w, http.StatusInternalServerError, "Failed to save image")
		return
	}

	view := newImageView(image)
	writeJSON(w, http.StatusCreated, view)
}

func (ih *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageID")

	image, err := ih.Images.GetByID(imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		log.Printf("Error fetching image %s: %v", imageID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch image")
		return
	}

	view := newImageView(image)
	writeJSON(w, http.StatusOK, view)
}

// Delete removes the image row, its jobs, and (best effort) its blob. The
// room's reference image is reassigned inside the repository transaction
// before the row goes away.
func (ih *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageID")

	image, err := ih.Images.GetByID(imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		log.Printf("Error fetching image %s: %v", imageID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch image")
		return
	}

	if err := ih.Images.Delete(imageID); err != nil {
		log.Printf("Error deleting image %s: %v", imageID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete image")
		return
	}

	// Blob cleanup is best effort; the row is already gone
	objectName := path.Base(image.OriginalURL)
	if err := ih.Store.Delete(ih.UploadsBucket, objectName); err != nil {
		log.Printf("Error deleting blob for image %s: %v", imageID, err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Image deleted successfully"})
}

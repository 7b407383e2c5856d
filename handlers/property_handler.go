package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jledbetter-dev/stagepilot/models"
	"github.com/jledbetter-dev/stagepilot/repository"
)

// PropertyHandler serves the property/room hierarchy endpoints
type PropertyHandler struct {
	Properties    repository.PropertyRepositoryInterface
	Rooms         repository.RoomRepositoryInterface
	DefaultUserID string
}

func (ph *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	props, err := ph.Properties.ListByUser(ph.DefaultUserID)
	if err != nil {
		log.Printf("Error listing properties: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list properties")
		return
	}

	views := make([]PropertyView, 0, len(props))
	for i := range props {
		views = append(views, newPropertyView(&props[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (ph *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string  `json:"name"`
		Address *string `json:"address"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: name")
		return
	}

	prop := &models.Property{
		ID:      uuid.New().String(),
		UserID:  ph.DefaultUserID,
		Name:    req.Name,
		Address: req.Address,
	}
	if err := ph.Properties.Create(prop); err != nil {
		log.Printf("Error creating property: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create property")
		return
	}

	writeJSON(w, http.StatusCreated, newPropertyView(prop))
}

// Get returns the property with its full room tree: every room's images
// enriched with their latest completed staging result.
func (ph *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")

	prop, err := ph.Properties.GetWithRooms(propertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
		log.Printf("Error fetching property %s: %v", propertyID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch property")
		return
	}

	view := PropertyWithRoomsView{
		PropertyView: newPropertyView(prop),
		Rooms:        make([]RoomView, 0, len(prop.Rooms)),
	}
	for i := range prop.Rooms {
		view.Rooms = append(view.Rooms, newRoomView(&prop.Rooms[i]))
	}
	writeJSON(w, http.StatusOK, view)
}

func (ph *PropertyHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")

	if _, err := ph.Properties.GetByID(propertyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
		log.Printf("Error fetching property %s: %v", propertyID, err)
		writeError(w, http.StatusInternalServerError, "Failed to verify property")
		return
	}

	var req struct {
		Name     string `json:"name"`
		RoomType string `json:"room_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" || req.RoomType == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: name and room_type")
		return
	}

	room := &models.Room{
		ID:         uuid.New().String(),
		PropertyID: propertyID,
		Name:       req.Name,
		RoomType:   req.RoomType,
	}
	if err := ph.Rooms.Create(room); err != nil {
		log.Printf("Error creating room: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create room")
		return
	}

	writeJSON(w, http.StatusCreated, newRoomView(room))
}

func (ph *PropertyHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	room, err := ph.Rooms.GetWithImages(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Room not found")
			return
		}
		log.Printf("Error fetching room %s: %v", roomID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch room")
		return
	}

	writeJSON(w, http.StatusOK, newRoomView(room))
}

// DeleteRoom refuses to delete a room that still has images; callers must
// delete or move the images first.
func (ph *PropertyHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	if _, err := ph.Rooms.GetByID(roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Room not found")
			return
		}
		log.Printf("Error fetching room %s: %v", roomID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch room")
		return
	}

	count, err := ph.Rooms.CountImages(roomID)
	if err != nil {
		log.Printf("Error counting images for room %s: %v", roomID, err)
		writeError(w, http.StatusInternalServerError, "Failed to check room contents")
		return
	}
	if count > 0 {
		writeError(w, http.StatusBadRequest, "Cannot delete room that contains images")
		return
	}

	if err := ph.Rooms.Delete(roomID); err != nil {
		log.Printf("Error deleting room %s: %v", roomID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete room")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Room deleted successfully"})
}

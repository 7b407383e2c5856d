package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jledbetter-dev/stagepilot/database"
	"github.com/jledbetter-dev/stagepilot/models"
	"github.com/jledbetter-dev/stagepilot/repository"
	"github.com/jledbetter-dev/stagepilot/storage"
)

// fakeJobQueue records dispatched job ids in place of a live redis queue.
type fakeJobQueue struct {
	enqueued    []string
	cleared     []string
	enqueueFail error
}

func (q *fakeJobQueue) Enqueue(_ context.Context, jobID string) error {
	if q.enqueueFail != nil {
		return q.enqueueFail
	}
	q.enqueued = append(q.enqueued, jobID)
	return nil
}

func (q *fakeJobQueue) ClearOutcome(_ context.Context, jobID string) error {
	q.cleared = append(q.cleared, jobID)
	return nil
}

type apiFixture struct {
	router *chi.Mux
	store  *storage.LocalStore
	jobs   *repository.JobRepository
	queue  *fakeJobQueue
	userID string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))

	user := &models.User{ID: uuid.New().String(), Email: "api@test.local"}
	require.NoError(t, user.SetPassword("test-password"))
	require.NoError(t, db.Create(user).Error)

	store, err := storage.NewLocalStore(t.TempDir(), "localhost:8080")
	require.NoError(t, err)
	require.NoError(t, store.EnsureBuckets([]string{"stage-uploads", "stage-results"}))

	propertyRepo := repository.NewPropertyRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	imageRepo := repository.NewImageRepository(db)
	jobRepo := repository.NewJobRepository(db)

	imageHandler := &ImageHandler{
		Images:        imageRepo,
		Rooms:         roomRepo,
		Store:         store,
		UploadsBucket: "stage-uploads",
		DefaultUserID: user.ID,
	}
	jobQueue := &fakeJobQueue{}
	jobHandler := &JobHandler{
		Jobs:          jobRepo,
		Images:        imageRepo,
		Dispatcher:    jobQueue,
		DefaultUserID: user.ID,
	}
	propertyHandler := &PropertyHandler{
		Properties:    propertyRepo,
		Rooms:         roomRepo,
		DefaultUserID: user.ID,
	}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/images", func(r chi.Router) {
			r.Post("/upload", imageHandler.Upload)
			r.Get("/{imageID}", imageHandler.Get)
			r.Delete("/{imageID}", imageHandler.Delete)
		})
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", jobHandler.Create)
			r.Get("/", jobHandler.List)
			r.Get("/{jobID}", jobHandler.Get)
			r.Delete("/{jobID}", jobHandler.Delete)
		})
		r.Route("/properties", func(r chi.Router) {
			r.Get("/", propertyHandler.List)
			r.Post("/", propertyHandler.Create)
			r.Get("/{propertyID}", propertyHandler.Get)
			r.Post("/{propertyID}/rooms", propertyHandler.CreateRoom)
		})
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/{roomID}", propertyHandler.GetRoom)
			r.Delete("/{roomID}", propertyHandler.DeleteRoom)
		})
	})

	return &apiFixture{router: r, store: store, jobs: jobRepo, queue: jobQueue, userID: user.ID}
}

func (f *apiFixture) do(t *testing.T, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) doJSON(t *testing.T, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	return f.do(t, method, target, &buf, "application/json")
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 210, G: 200, B: 190, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func uploadBody(t *testing.T, filename string, data []byte, roomID string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	if roomID != "" {
		require.NoError(t, w.WriteField("room_id", roomID))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (f *apiFixture) createRoom(t *testing.T) (propertyID, roomID string) {
	t.Helper()
	rec := f.doJSON(t, http.MethodPost, "/api/v1/properties", map[string]string{"name": "12 Elm St"})
	require.Equal(t, http.StatusCreated, rec.Code)
	prop := decodeBody[PropertyView](t, rec)

	rec = f.doJSON(t, http.MethodPost, "/api/v1/properties/"+prop.ID+"/rooms",
		map[string]string{"name": "Living Room", "room_type": "living_room"})
	require.Equal(t, http.StatusCreated, rec.Code)
	room := decodeBody[RoomView](t, rec)
	return prop.ID, room.ID
}

func (f *apiFixture) uploadImage(t *testing.T, roomID string) ImageView {
	t.Helper()
	body, contentType := uploadBody(t, "room.jpg", testJPEG(t, 64, 48), roomID)
	rec := f.do(t, http.MethodPost, "/api/v1/images/upload", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[ImageView](t, rec)
}

func TestImageUploadAndGet(t *testing.T) {
	f := newAPIFixture(t)

	view := f.uploadImage(t, "")
	assert.Equal(t, "room.jpg", view.OriginalFilename)
	assert.True(t, strings.HasPrefix(view.OriginalURL, f.store.PublicPrefix()))
	require.NotNil(t, view.Width)
	assert.Equal(t, 64, *view.Width)
	require.NotNil(t, view.Height)
	assert.Equal(t, 48, *view.Height)
	require.NotNil(t, view.Format)
	assert.Equal(t, "jpeg", *view.Format)

	rec := f.do(t, http.MethodGet, "/api/v1/images/"+view.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[ImageView](t, rec)
	assert.Equal(t, view.ID, got.ID)
}

func TestImageUploadRejectsUnsupportedType(t *testing.T) {
	f := newAPIFixture(t)

	body, contentType := uploadBody(t, "floorplan.pdf", []byte("%PDF-1.4"), "")
	rec := f.do(t, http.MethodPost, "/api/v1/images/upload", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImageUploadUnknownRoom(t *testing.T) {
	f := newAPIFixture(t)

	body, contentType := uploadBody(t, "room.jpg", testJPEG(t, 32, 32), uuid.New().String())
	rec := f.do(t, http.MethodPost, "/api/v1/images/upload", body, contentType)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImageUploadToRoomSetsReference(t *testing.T) {
	f := newAPIFixture(t)
	_, roomID := f.createRoom(t)

	view := f.uploadImage(t, roomID)

	rec := f.do(t, http.MethodGet, "/api/v1/rooms/"+roomID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	room := decodeBody[RoomView](t, rec)
	require.NotNil(t, room.ReferenceImageID)
	assert.Equal(t, view.ID, *room.ReferenceImageID)
	require.Len(t, room.Images, 1)
	assert.Equal(t, view.ID, room.Images[0].ID)
}

func TestImageDeleteRemovesBlob(t *testing.T) {
	f := newAPIFixture(t)
	view := f.uploadImage(t, "")

	objectName := view.OriginalURL[strings.LastIndex(view.OriginalURL, "/")+1:]
	_, err := f.store.Read("stage-uploads", objectName)
	require.NoError(t, err)

	rec := f.do(t, http.MethodDelete, "/api/v1/images/"+view.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = f.store.Read("stage-uploads", objectName)
	assert.Error(t, err)

	rec = f.do(t, http.MethodGet, "/api/v1/images/"+view.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImageGetNotFound(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/images/"+uuid.New().String(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobCreateEnqueues(t *testing.T) {
	f := newAPIFixture(t)
	img := f.uploadImage(t, "")

	rec := f.doJSON(t, http.MethodPost, "/api/v1/jobs/", map[string]any{
		"image_id":     img.ID,
		"room_type":    "living_room",
		"style_preset": "modern",
		"include_tv":   true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	view := decodeBody[JobView](t, rec)
	assert.Equal(t, img.ID, view.ImageID)
	assert.Equal(t, database.StatusQueued, view.Status)
	assert.Equal(t, "living_room", view.RoomType)
	assert.Equal(t, "modern", view.StylePreset)
	assert.False(t, view.FixWhiteBalance, "defaults off")
	assert.True(t, view.WallDecorations, "defaults on")
	assert.True(t, view.IncludeTV)
	require.NotNil(t, view.OriginalImageURL)
	assert.Equal(t, img.OriginalURL, *view.OriginalImageURL)

	require.Len(t, f.queue.enqueued, 1)
	assert.Equal(t, view.ID, f.queue.enqueued[0])

	got, err := f.jobs.GetByID(view.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StatusQueued, got.Status)
}

func TestJobCreateEnqueueFailureMarksError(t *testing.T) {
	f := newAPIFixture(t)
	img := f.uploadImage(t, "")
	f.queue.enqueueFail = errors.New("queue unavailable")

	rec := f.doJSON(t, http.MethodPost, "/api/v1/jobs/", map[string]any{
		"image_id":     img.ID,
		"room_type":    "living_room",
		"style_preset": "modern",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	jobs, err := f.jobs.List(database.JobFilter{Status: database.StatusError})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].ErrorMessage)
	assert.Equal(t, "failed to enqueue job", *jobs[0].ErrorMessage)
}

func TestJobDeleteClearsOutcome(t *testing.T) {
	f := newAPIFixture(t)
	img := f.uploadImage(t, "")

	job := &models.Job{
		ID:          uuid.New().String(),
		UserID:      f.userID,
		ImageID:     img.ID,
		RoomType:    "living_room",
		StylePreset: "modern",
		Status:      database.StatusCompleted,
	}
	require.NoError(t, f.jobs.Create(job))

	rec := f.do(t, http.MethodDelete, "/api/v1/jobs/"+job.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{job.ID}, f.queue.cleared)

	_, err := f.jobs.GetByID(job.ID)
	assert.Error(t, err)
}

func TestJobCreateValidation(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.doJSON(t, http.MethodPost, "/api/v1/jobs/", map[string]string{"room_type": "bedroom"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.doJSON(t, http.MethodPost, "/api/v1/jobs/", map[string]string{
		"image_id":     uuid.New().String(),
		"room_type":    "bedroom",
		"style_preset": "modern",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown image")
}

func TestJobGetAndList(t *testing.T) {
	f := newAPIFixture(t)
	img := f.uploadImage(t, "")

	job := &models.Job{
		ID:          uuid.New().String(),
		UserID:      f.userID,
		ImageID:     img.ID,
		RoomType:    "living_room",
		StylePreset: "modern",
		Status:      database.StatusQueued,
	}
	require.NoError(t, f.jobs.Create(job))

	rec := f.do(t, http.MethodGet, "/api/v1/jobs/"+job.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[JobView](t, rec)
	assert.Equal(t, job.ID, view.ID)
	require.NotNil(t, view.OriginalImageURL)
	assert.Equal(t, img.OriginalURL, *view.OriginalImageURL)

	rec = f.do(t, http.MethodGet, "/api/v1/jobs/?status=queued", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[JobListResponse](t, rec)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, job.ID, list.Jobs[0].ID)

	rec = f.do(t, http.MethodGet, "/api/v1/jobs/?status=completed", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list = decodeBody[JobListResponse](t, rec)
	assert.Empty(t, list.Jobs)
}

func TestJobGetNotFound(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/jobs/"+uuid.New().String(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/jobs/"+uuid.New().String(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPropertyTreeWithStagedResults(t *testing.T) {
	f := newAPIFixture(t)
	propertyID, roomID := f.createRoom(t)
	img := f.uploadImage(t, roomID)

	resultURL := f.store.URL("stage-results", "staged.jpg")
	roomRef := roomID
	job := &models.Job{
		ID:          uuid.New().String(),
		UserID:      f.userID,
		ImageID:     img.ID,
		RoomID:      &roomRef,
		RoomType:    "living_room",
		StylePreset: "scandinavian",
		IncludeTV:   true,
		Status:      database.StatusCompleted,
		ResultURL:   &resultURL,
	}
	require.NoError(t, f.jobs.Create(job))

	rec := f.do(t, http.MethodGet, "/api/v1/properties/"+propertyID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	tree := decodeBody[PropertyWithRoomsView](t, rec)
	require.Len(t, tree.Rooms, 1)
	require.Len(t, tree.Rooms[0].Images, 1)

	enriched := tree.Rooms[0].Images[0]
	require.NotNil(t, enriched.LatestResultURL)
	assert.Equal(t, resultURL, *enriched.LatestResultURL)
	require.NotNil(t, enriched.LatestSettings)
	assert.Equal(t, "scandinavian", enriched.LatestSettings.StylePreset)
	assert.True(t, enriched.LatestSettings.IncludeTV)
}

func TestPropertyValidationAndNotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.doJSON(t, http.MethodPost, "/api/v1/properties", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/properties/"+uuid.New().String(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.doJSON(t, http.MethodPost, "/api/v1/properties/"+uuid.New().String()+"/rooms",
		map[string]string{"name": "Den", "room_type": "office"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoomCreateValidation(t *testing.T) {
	f := newAPIFixture(t)
	propertyID, _ := f.createRoom(t)

	rec := f.doJSON(t, http.MethodPost, "/api/v1/properties/"+propertyID+"/rooms",
		map[string]string{"name": "Den"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "room_type required")
}

func TestRoomDeleteRefusedWhileImagesExist(t *testing.T) {
	f := newAPIFixture(t)
	_, roomID := f.createRoom(t)
	img := f.uploadImage(t, roomID)

	rec := f.do(t, http.MethodDelete, "/api/v1/rooms/"+roomID, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "Cannot delete room that contains images", body["error"])

	rec = f.do(t, http.MethodDelete, "/api/v1/images/"+img.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/rooms/"+roomID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/rooms/"+roomID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

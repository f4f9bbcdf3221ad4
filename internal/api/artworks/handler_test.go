package artworks_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	artworksapi "kidcanvas/internal/api/artworks"
	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/children"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/domain/users"
	"kidcanvas/internal/infra/aitag"
	"kidcanvas/internal/usecase/artwork"
	"kidcanvas/internal/usecase/artwork/artworktest"
	"kidcanvas/pkg/logger"
)

const (
	familyID = "0d4a3a56-64c9-4c39-bf4a-2f3b3f5d1a10"
	childID  = "5c3e1f0a-2b7d-4e8f-9a6b-1c2d3e4f5a6b"
	ownerID  = "11111111-1111-4111-8111-111111111111"
	memberID = "33333333-3333-4333-8333-333333333333"
)

type fixture struct {
	store   *artworktest.Store
	storage *artworktest.Storage
	tasks   *artworktest.Tasks
	handler *artworksapi.Handler
}

func newFixture(t *testing.T, maxUpload int64) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	j := &artworktest.Journal{}
	f := &fixture{
		store:   artworktest.NewStore(j),
		storage: artworktest.NewStorage(j),
		tasks:   &artworktest.Tasks{},
	}

	birth := time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC)
	f.store.Children[childID] = &children.Child{ID: childID, FamilyID: familyID, BirthDate: &birth}
	f.store.Owners[familyID] = &users.User{ID: ownerID}
	f.store.SetRole(familyID, ownerID, families.RoleOwner)
	f.store.SetRole(familyID, memberID, families.RoleMember)

	l := logger.Nop()
	ai := &artworktest.AI{Result: &aitag.Result{Tags: []string{"tree"}}}
	pub := &artworktest.Publisher{}
	tagger := artwork.NewTagger(f.store, ai, l)

	f.handler = artworksapi.New(artworksapi.Options{
		Store: f.store,
		Uploader: artwork.NewUploader(
			f.store, f.storage, &artworktest.Processor{}, artwork.NewQuotaChecker(f.store), tagger, f.tasks, pub, l,
		),
		Deleter:        artwork.NewDeleter(f.store, f.storage, f.tasks, pub, l),
		Tagger:         tagger,
		Logger:         l,
		MaxUploadBytes: maxUpload,
	})
	return f
}

func (f *fixture) router(userID string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.POST("/api/upload", f.handler.Upload)
	r.GET("/api/artworks/:id", f.handler.Get)
	r.DELETE("/api/artworks/:id", f.handler.Delete)
	r.POST("/api/artworks/:id/ai-tags", f.handler.GenerateAITags)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", "drawing.jpg")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func validFields(userID string) map[string]string {
	return map[string]string{
		"familyId":    familyID,
		"childId":     childID,
		"title":       "Sunset",
		"createdDate": "2024-05-01",
		"userId":      userID,
		"tags":        `["Sun","sky"]`,
	}
}

func do(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func upload(t *testing.T, r *gin.Engine, fields map[string]string, file []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	body, ct := multipartBody(t, fields, file)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	return do(r, req)
}

func TestUploadEndpoint(t *testing.T) {
	f := newFixture(t, 1<<20)

	w, body := upload(t, f.router(memberID), validFields(memberID), bytes.Repeat([]byte{0xff}, 2048))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])

	a := body["artwork"].(map[string]interface{})
	assert.Equal(t, familyID, a["family_id"])
	assert.Regexp(t, regexp.MustCompile(`^https://cdn\.test/media/artwork/`+familyID+`/[0-9a-f-]{36}\.jpg$`), a["image_url"])
	assert.Regexp(t, regexp.MustCompile(`^https://cdn\.test/media/artwork/`+familyID+`/[0-9a-f-]{36}_thumb\.jpg$`), a["thumbnail_url"])
	assert.Equal(t, []interface{}{"sun", "sky"}, a["tags"])
	assert.Len(t, f.storage.Objects, 2)
	assert.Len(t, f.store.Artworks, 1)
}

func TestUploadEndpointMissingFields(t *testing.T) {
	f := newFixture(t, 1<<20)

	w, body := upload(t, f.router(memberID), map[string]string{"title": "Sunset"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", body["error"])
	assert.Equal(t, []interface{}{"file", "familyId", "childId", "createdDate", "userId"}, body["fields"])
}

func TestUploadEndpointQuota(t *testing.T) {
	f := newFixture(t, 1<<20)
	for i := 0; i < plans.FreeArtworkLimit; i++ {
		id := fmt.Sprintf("a-%d", i)
		f.store.Artworks[id] = &artworks.Artwork{ID: id, FamilyID: familyID}
	}

	w, body := upload(t, f.router(memberID), validFields(memberID), []byte("img"))
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, true, body["limitReached"])
	assert.EqualValues(t, plans.FreeArtworkLimit, body["limit"])
	assert.EqualValues(t, plans.FreeArtworkLimit, body["current"])
	assert.Zero(t, f.storage.Puts)
}

func TestUploadEndpointTooLarge(t *testing.T) {
	f := newFixture(t, 1024)

	w, _ := upload(t, f.router(memberID), validFields(memberID), bytes.Repeat([]byte{1}, 4096))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Zero(t, f.storage.Puts)
}

func TestUploadEndpointStorageDown(t *testing.T) {
	f := newFixture(t, 1<<20)
	f.storage.PutErr = fmt.Errorf("bucket missing")

	w, body := upload(t, f.router(memberID), validFields(memberID), []byte("img"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to upload image", body["error"])
	assert.Contains(t, body["details"], "bucket missing")
	assert.Empty(t, f.store.Artworks)
}

func TestUploadEndpointCommaTags(t *testing.T) {
	f := newFixture(t, 1<<20)
	fields := validFields(memberID)
	fields["tags"] = "Cat, dog ,,cat"

	w, body := upload(t, f.router(memberID), fields, []byte("img"))
	require.Equal(t, http.StatusOK, w.Code)
	a := body["artwork"].(map[string]interface{})
	assert.Equal(t, []interface{}{"cat", "dog"}, a["tags"])
}

func seed(f *fixture) string {
	id := "9b2f6b1e-8b65-4a53-9d7e-6c0c0a8f2e11"
	orig := artworks.OriginalKey(familyID, id, "jpg")
	thumb := artworks.ThumbnailKey(familyID, id)
	f.storage.Objects[orig] = []byte("o")
	f.storage.Objects[thumb] = []byte("t")
	f.store.Artworks[id] = &artworks.Artwork{
		ID:           id,
		FamilyID:     familyID,
		ChildID:      childID,
		Title:        "Boat",
		ImageURL:     f.storage.PublicURL(orig),
		ThumbnailURL: f.storage.PublicURL(thumb),
	}
	return id
}

func TestDeleteEndpoint(t *testing.T) {
	f := newFixture(t, 1<<20)
	id := seed(f)
	r := f.router(ownerID)

	w, body := do(r, httptest.NewRequest(http.MethodDelete, "/api/artworks/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Empty(t, f.storage.Objects)

	w, body = do(r, httptest.NewRequest(http.MethodDelete, "/api/artworks/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Artwork not found", body["error"])
}

func TestDeleteEndpointErrors(t *testing.T) {
	f := newFixture(t, 1<<20)
	id := seed(f)

	w, _ := do(f.router(ownerID), httptest.NewRequest(http.MethodDelete, "/api/artworks/42", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(f.router(memberID), httptest.NewRequest(http.MethodDelete, "/api/artworks/"+id, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, f.store.Artworks, id)
}

func TestDeleteEndpointStorageFailureStillSucceeds(t *testing.T) {
	f := newFixture(t, 1<<20)
	id := seed(f)
	f.storage.DeleteErr = fmt.Errorf("denied")

	w, body := do(f.router(ownerID), httptest.NewRequest(http.MethodDelete, "/api/artworks/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, f.store.Artworks, id)
}

func TestGetEndpoint(t *testing.T) {
	f := newFixture(t, 1<<20)
	id := seed(f)

	w, body := do(f.router(memberID), httptest.NewRequest(http.MethodGet, "/api/artworks/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Boat", body["title"])

	w, _ = do(f.router("99999999-9999-4999-8999-999999999999"), httptest.NewRequest(http.MethodGet, "/api/artworks/"+id, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAITagsEndpoint(t *testing.T) {
	f := newFixture(t, 1<<20)
	id := seed(f)

	w, body := do(f.router(memberID), httptest.NewRequest(http.MethodPost, "/api/artworks/"+id+"/ai-tags", nil))
	require.Equal(t, http.StatusOK, w.Code)
	a := body["artwork"].(map[string]interface{})
	assert.Equal(t, []interface{}{"tree"}, a["ai_tags"])
}

package artwork_test

import (
	"testing"
	"time"

	"kidcanvas/internal/domain/children"
	"kidcanvas/internal/domain/families"
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
	parentID = "22222222-2222-4222-8222-222222222222"
	memberID = "33333333-3333-4333-8333-333333333333"
	viewerID = "44444444-4444-4444-8444-444444444444"
	outsider = "55555555-5555-4555-8555-555555555555"
)

type env struct {
	journal   *artworktest.Journal
	store     *artworktest.Store
	storage   *artworktest.Storage
	processor *artworktest.Processor
	ai        *artworktest.AI
	tasks     *artworktest.Tasks
	publisher *artworktest.Publisher

	uploader *artwork.Uploader
	deleter  *artwork.Deleter
	tagger   *artwork.Tagger
}

func newEnv(t *testing.T) *env {
	t.Helper()

	j := &artworktest.Journal{}
	e := &env{
		journal:   j,
		store:     artworktest.NewStore(j),
		storage:   artworktest.NewStorage(j),
		processor: &artworktest.Processor{},
		ai:        &artworktest.AI{Result: &aitag.Result{Tags: []string{"sun"}, Description: "A sun."}},
		tasks:     &artworktest.Tasks{},
		publisher: &artworktest.Publisher{},
	}

	birth := time.Date(2020, time.January, 10, 0, 0, 0, 0, time.UTC)
	e.store.Children[childID] = &children.Child{ID: childID, FamilyID: familyID, Name: "Mia", BirthDate: &birth}
	e.store.Owners[familyID] = &users.User{ID: ownerID}
	e.store.SetRole(familyID, ownerID, families.RoleOwner)
	e.store.SetRole(familyID, parentID, families.RoleParent)
	e.store.SetRole(familyID, memberID, families.RoleMember)
	e.store.SetRole(familyID, viewerID, families.RoleViewer)

	l := logger.Nop()
	e.tagger = artwork.NewTagger(e.store, e.ai, l)
	quota := artwork.NewQuotaChecker(e.store)
	e.uploader = artwork.NewUploader(e.store, e.storage, e.processor, quota, e.tagger, e.tasks, e.publisher, l)
	e.deleter = artwork.NewDeleter(e.store, e.storage, e.tasks, e.publisher, l)

	return e
}

func validInput(userID string) artwork.UploadInput {
	return artwork.UploadInput{
		File:        []byte("fake-image-bytes"),
		FamilyID:    familyID,
		ChildID:     childID,
		Title:       "Sunny <b>day</b>",
		CreatedDate: "2024-05-01",
		UserID:      userID,
		Description: "Crayons on paper",
		Tags:        []string{"Sun", "sun", "sky"},
	}
}

package service

import (
	"context"
	"sync"

	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/models"
	"github.com/reelgrid/reelgrid/internal/db/repository"
)

// In-memory repository fakes shared by the service tests.

type mockVideoRepo struct {
	mu     sync.Mutex
	nextID int64
	videos map[string]*models.Video // keyed by external id

	upsertErrFor map[string]error // inject per-video upsert failures
	lockHeld     bool             // simulate a concurrent full sync

	listResult []*models.Video
	listTotal  int64
	lastFilter repository.CatalogFilter

	deleteCalled bool
	deleteKeep   []string
}

func newMockVideoRepo() *mockVideoRepo {
	return &mockVideoRepo{videos: make(map[string]*models.Video)}
}

func (m *mockVideoRepo) UpsertVideo(_ context.Context, video *models.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.upsertErrFor[video.ExternalID]; err != nil {
		return err
	}

	if existing, ok := m.videos[video.ExternalID]; ok {
		video.ID = existing.ID
		video.CreatedAt = existing.CreatedAt
		video.SourceCreated = existing.SourceCreated
	} else {
		m.nextID++
		video.ID = m.nextID
	}
	clone := *video
	m.videos[video.ExternalID] = &clone
	return nil
}

func (m *mockVideoRepo) GetVideoByID(_ context.Context, id int64) (*models.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockVideoRepo) GetVideoByExternalID(_ context.Context, externalID string) (*models.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.videos[externalID]; ok {
		return v, nil
	}
	return nil, db.ErrNotFound
}

func (m *mockVideoRepo) ListCatalog(_ context.Context, filter repository.CatalogFilter) ([]*models.Video, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter
	return m.listResult, m.listTotal, nil
}

func (m *mockVideoRepo) DeleteAbsentVideos(_ context.Context, keep []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCalled = true
	m.deleteKeep = keep

	keepSet := make(map[string]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}

	var deleted int64
	for extID := range m.videos {
		if !keepSet[extID] {
			delete(m.videos, extID)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockVideoRepo) TryLockCatalogSync(context.Context) (func(), bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockHeld {
		return nil, false, nil
	}
	m.lockHeld = true
	return func() {
		m.mu.Lock()
		m.lockHeld = false
		m.mu.Unlock()
	}, true, nil
}

func (m *mockVideoRepo) externalIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.videos))
	for id := range m.videos {
		ids = append(ids, id)
	}
	return ids
}

type mockCategoryRepo struct {
	nextID     int64
	byName     map[string]*models.Category
	assigned   map[int64][]int64 // video id -> category ids
	assignErr  error
	reassigned [][]int64
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{
		byName:   make(map[string]*models.Category),
		assigned: make(map[int64][]int64),
	}
}

func (m *mockCategoryRepo) CreateCategory(_ context.Context, name string) (*models.Category, error) {
	if _, ok := m.byName[name]; ok {
		return nil, db.ErrDuplicateKey
	}
	m.nextID++
	category := &models.Category{ID: m.nextID, Name: name}
	m.byName[name] = category
	return category, nil
}

func (m *mockCategoryRepo) DeleteCategory(_ context.Context, id int64) error {
	for _, cats := range m.assigned {
		for _, cid := range cats {
			if cid == id {
				return db.ErrForeignKeyViolation
			}
		}
	}
	for name, c := range m.byName {
		if c.ID == id {
			delete(m.byName, name)
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockCategoryRepo) GetCategoryByID(_ context.Context, id int64) (*models.Category, error) {
	for _, c := range m.byName {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockCategoryRepo) GetCategoryByName(_ context.Context, name string) (*models.Category, error) {
	if c, ok := m.byName[name]; ok {
		return c, nil
	}
	return nil, db.ErrNotFound
}

func (m *mockCategoryRepo) ListCategories(context.Context) ([]*models.Category, error) {
	out := make([]*models.Category, 0, len(m.byName))
	for _, c := range m.byName {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategoryRepo) AssignCategory(_ context.Context, videoID, categoryID int64) error {
	if m.assignErr != nil {
		return m.assignErr
	}
	for _, cid := range m.assigned[videoID] {
		if cid == categoryID {
			return nil
		}
	}
	m.assigned[videoID] = append(m.assigned[videoID], categoryID)
	return nil
}

func (m *mockCategoryRepo) UnassignCategory(_ context.Context, videoID, categoryID int64) error {
	cats := m.assigned[videoID]
	for i, cid := range cats {
		if cid == categoryID {
			m.assigned[videoID] = append(cats[:i], cats[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockCategoryRepo) BulkReassignCategory(_ context.Context, videoIDs []int64, categoryID int64) error {
	m.reassigned = append(m.reassigned, videoIDs)
	for _, vid := range videoIDs {
		m.assigned[vid] = []int64{categoryID}
	}
	return nil
}

func (m *mockCategoryRepo) ListByVideo(_ context.Context, videoID int64) ([]*models.Category, error) {
	var out []*models.Category
	for _, cid := range m.assigned[videoID] {
		for _, c := range m.byName {
			if c.ID == cid {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type mockTagRepo struct {
	nextID   int64
	byName   map[string]*models.Tag
	videoSet map[int64][]string // video id -> tag names
}

func newMockTagRepo() *mockTagRepo {
	return &mockTagRepo{
		byName:   make(map[string]*models.Tag),
		videoSet: make(map[int64][]string),
	}
}

func (m *mockTagRepo) ReplaceVideoTags(_ context.Context, videoID int64, names []string) error {
	for _, name := range names {
		if _, ok := m.byName[name]; !ok {
			m.nextID++
			m.byName[name] = &models.Tag{ID: m.nextID, Name: name}
		}
	}
	m.videoSet[videoID] = names
	return nil
}

func (m *mockTagRepo) GetTagByName(_ context.Context, name string) (*models.Tag, error) {
	if tag, ok := m.byName[name]; ok {
		return tag, nil
	}
	return nil, db.ErrNotFound
}

func (m *mockTagRepo) ListTags(context.Context) ([]*models.Tag, error) {
	out := make([]*models.Tag, 0, len(m.byName))
	for _, tag := range m.byName {
		out = append(out, tag)
	}
	return out, nil
}

func (m *mockTagRepo) ListByVideo(_ context.Context, videoID int64) ([]*models.Tag, error) {
	var out []*models.Tag
	for _, name := range m.videoSet[videoID] {
		out = append(out, m.byName[name])
	}
	return out, nil
}

type mockSubtitleRepo struct {
	mu       sync.Mutex
	byVideo  map[int64][]*models.Subtitle
	replaced int
}

func newMockSubtitleRepo() *mockSubtitleRepo {
	return &mockSubtitleRepo{byVideo: make(map[int64][]*models.Subtitle)}
}

func (m *mockSubtitleRepo) ReplaceForVideo(_ context.Context, videoID int64, subtitles []*models.Subtitle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byVideo[videoID] = subtitles
	m.replaced++
	return nil
}

func (m *mockSubtitleRepo) ListByVideo(_ context.Context, videoID int64) ([]*models.Subtitle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byVideo[videoID], nil
}

type mockUserRepo struct {
	users []*models.User
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *models.User) error {
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserRepo) GetUserByProviderID(_ context.Context, providerID string) (*models.User, error) {
	for _, u := range m.users {
		if u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockUserRepo) ListUsers(context.Context) ([]*models.User, error) {
	return m.users, nil
}

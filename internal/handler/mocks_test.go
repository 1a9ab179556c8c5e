package handler

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/models"
	"github.com/reelgrid/reelgrid/internal/db/repository"
	"github.com/reelgrid/reelgrid/internal/streamhost"
)

// In-memory repositories backing the services under test.

type memVideoRepo struct {
	nextID   int64
	byExt    map[string]*models.Video
	lockHeld bool
}

func newMemVideoRepo() *memVideoRepo {
	return &memVideoRepo{byExt: map[string]*models.Video{}}
}

func (m *memVideoRepo) UpsertVideo(_ context.Context, video *models.Video) error {
	if existing, ok := m.byExt[video.ExternalID]; ok {
		video.ID = existing.ID
		video.SourceCreated = existing.SourceCreated
	} else {
		m.nextID++
		video.ID = m.nextID
	}
	m.byExt[video.ExternalID] = video
	return nil
}

func (m *memVideoRepo) GetVideoByID(_ context.Context, id int64) (*models.Video, error) {
	for _, v := range m.byExt {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, db.WrapError(pgx.ErrNoRows, "get video")
}

func (m *memVideoRepo) GetVideoByExternalID(_ context.Context, externalID string) (*models.Video, error) {
	if v, ok := m.byExt[externalID]; ok {
		return v, nil
	}
	return nil, db.WrapError(pgx.ErrNoRows, "get video")
}

func (m *memVideoRepo) ListCatalog(_ context.Context, _ repository.CatalogFilter) ([]*models.Video, int64, error) {
	videos := make([]*models.Video, 0, len(m.byExt))
	for _, v := range m.byExt {
		videos = append(videos, v)
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].ID < videos[j].ID })
	return videos, int64(len(videos)), nil
}

func (m *memVideoRepo) DeleteAbsentVideos(_ context.Context, keep []string) (int64, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}
	var deleted int64
	for ext := range m.byExt {
		if !keepSet[ext] {
			delete(m.byExt, ext)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memVideoRepo) TryLockCatalogSync(_ context.Context) (func(), bool, error) {
	if m.lockHeld {
		return nil, false, nil
	}
	return func() {}, true, nil
}

type memCategoryRepo struct {
	nextID   int64
	byID     map[int64]*models.Category
	assigned map[int64]map[int64]bool // videoID -> categoryID set
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{
		byID:     map[int64]*models.Category{},
		assigned: map[int64]map[int64]bool{},
	}
}

func (m *memCategoryRepo) CreateCategory(_ context.Context, name string) (*models.Category, error) {
	for _, c := range m.byID {
		if c.Name == name {
			return nil, db.ErrDuplicateKey
		}
	}
	m.nextID++
	category := &models.Category{ID: m.nextID, Name: name}
	m.byID[category.ID] = category
	return category, nil
}

func (m *memCategoryRepo) DeleteCategory(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return db.ErrNotFound
	}
	for _, set := range m.assigned {
		if set[id] {
			return db.ErrForeignKeyViolation
		}
	}
	delete(m.byID, id)
	return nil
}

func (m *memCategoryRepo) GetCategoryByID(_ context.Context, id int64) (*models.Category, error) {
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, db.ErrNotFound
}

func (m *memCategoryRepo) GetCategoryByName(_ context.Context, name string) (*models.Category, error) {
	for _, c := range m.byID {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memCategoryRepo) ListCategories(_ context.Context) ([]*models.Category, error) {
	categories := make([]*models.Category, 0, len(m.byID))
	for _, c := range m.byID {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *memCategoryRepo) AssignCategory(_ context.Context, videoID, categoryID int64) error {
	if _, ok := m.byID[categoryID]; !ok {
		return db.ErrForeignKeyViolation
	}
	if m.assigned[videoID] == nil {
		m.assigned[videoID] = map[int64]bool{}
	}
	m.assigned[videoID][categoryID] = true
	return nil
}

func (m *memCategoryRepo) UnassignCategory(_ context.Context, videoID, categoryID int64) error {
	delete(m.assigned[videoID], categoryID)
	return nil
}

func (m *memCategoryRepo) BulkReassignCategory(_ context.Context, videoIDs []int64, categoryID int64) error {
	if _, ok := m.byID[categoryID]; !ok {
		return db.ErrForeignKeyViolation
	}
	for _, videoID := range videoIDs {
		m.assigned[videoID] = map[int64]bool{categoryID: true}
	}
	return nil
}

func (m *memCategoryRepo) ListByVideo(_ context.Context, videoID int64) ([]*models.Category, error) {
	var categories []*models.Category
	for id := range m.assigned[videoID] {
		categories = append(categories, m.byID[id])
	}
	return categories, nil
}

type memTagRepo struct {
	byVideo map[int64][]string
}

func newMemTagRepo() *memTagRepo {
	return &memTagRepo{byVideo: map[int64][]string{}}
}

func (m *memTagRepo) ReplaceVideoTags(_ context.Context, videoID int64, names []string) error {
	m.byVideo[videoID] = names
	return nil
}

func (m *memTagRepo) GetTagByName(_ context.Context, name string) (*models.Tag, error) {
	for _, names := range m.byVideo {
		for i, n := range names {
			if n == name {
				return &models.Tag{ID: int64(i + 1), Name: n}, nil
			}
		}
	}
	return nil, db.ErrNotFound
}

func (m *memTagRepo) ListTags(_ context.Context) ([]*models.Tag, error) {
	return nil, nil
}

func (m *memTagRepo) ListByVideo(_ context.Context, videoID int64) ([]*models.Tag, error) {
	var tags []*models.Tag
	for i, name := range m.byVideo[videoID] {
		tags = append(tags, &models.Tag{ID: int64(i + 1), Name: name})
	}
	return tags, nil
}

type memSubtitleRepo struct {
	byVideo map[int64][]*models.Subtitle
}

func newMemSubtitleRepo() *memSubtitleRepo {
	return &memSubtitleRepo{byVideo: map[int64][]*models.Subtitle{}}
}

func (m *memSubtitleRepo) ReplaceForVideo(_ context.Context, videoID int64, subtitles []*models.Subtitle) error {
	m.byVideo[videoID] = subtitles
	return nil
}

func (m *memSubtitleRepo) ListByVideo(_ context.Context, videoID int64) ([]*models.Subtitle, error) {
	return m.byVideo[videoID], nil
}

type memUserRepo struct {
	users []*models.User
}

func (m *memUserRepo) CreateUser(_ context.Context, user *models.User) error {
	m.users = append(m.users, user)
	return nil
}

func (m *memUserRepo) GetUserByProviderID(_ context.Context, providerID string) (*models.User, error) {
	for _, u := range m.users {
		if u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memUserRepo) ListUsers(_ context.Context) ([]*models.User, error) {
	return m.users, nil
}

// stubCatalogClient serves a fixed latest window.
type stubCatalogClient struct {
	latest    []streamhost.Video
	latestErr error
}

func (s *stubCatalogClient) ListVideos(_ context.Context, _, _ int) ([]streamhost.Video, error) {
	return s.latest, nil
}

func (s *stubCatalogClient) LatestVideos(_ context.Context, _ int) ([]streamhost.Video, error) {
	return s.latest, s.latestErr
}

func (s *stubCatalogClient) ListSubtitles(_ context.Context, _ string) ([]streamhost.Subtitle, error) {
	return nil, nil
}

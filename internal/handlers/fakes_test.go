package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jsonblog/backend/internal/models"
	"github.com/jsonblog/backend/internal/services"
)

// The fakes mirror the mongo services against plain maps. Find applies the
// same filter shapes VisibilityFilter produces, so listing tests exercise
// the real filter end to end.

type fakeUserStore struct {
	mu    sync.Mutex
	seq   int
	users map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		clone := *u
		s.users[u.ID] = &clone
	}
	return s
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *fakeUserStore) FindByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.User)
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			clone := *u
			out[id] = &clone
		}
	}
	return out, nil
}

func (s *fakeUserStore) FindByName(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username || (u.Pending != nil && u.Pending.Username == username) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *fakeUserStore) Create(_ context.Context, u *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	clone := *u
	clone.ID = fmt.Sprintf("user-%d", s.seq)
	clone.CreatedTime = time.Now()
	s.users[clone.ID] = &clone
	return clone.ID, nil
}

func (s *fakeUserStore) UpdateRole(_ context.Context, id string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id string, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Password = hash
	}
	return nil
}

func (s *fakeUserStore) AttachPendingProfile(_ context.Context, id string, pending *models.PendingProfile, modified time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return services.ErrNotFound
	}
	u.Pending = pending
	u.ModifiedTime = modified
	return nil
}

func (s *fakeUserStore) ApprovePendingProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return services.ErrNotFound
	}
	if u.Pending == nil {
		return nil
	}
	if u.Pending.Username != "" {
		u.Username = u.Pending.Username
	}
	if u.Pending.Biography != "" {
		u.Biography = u.Pending.Biography
	}
	if u.Pending.Picture != "" {
		u.Picture = u.Pending.Picture
	}
	u.Pending = nil
	u.Status = models.StatusApproved
	return nil
}

func (s *fakeUserStore) RejectPendingProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return services.ErrNotFound
	}
	u.Pending = nil
	return nil
}

// matchesFilter evaluates the bson filters VisibilityFilter builds against
// in-memory records. Author ids in tests are plain strings, never ObjectIDs.
func matchesFilter(filter bson.M, author string, status models.ModerationStatus, isDelete bool) bool {
	if want, ok := filter["isDelete"].(bool); ok && isDelete != want {
		return false
	}
	if want, ok := filter["status"].(models.ModerationStatus); ok && status != want {
		return false
	}
	if or, ok := filter["$or"].(bson.A); ok {
		matched := false
		for _, raw := range or {
			clause, ok := raw.(bson.M)
			if !ok {
				continue
			}
			if want, ok := clause["status"].(models.ModerationStatus); ok && status == want {
				matched = true
			}
			if want, ok := clause["author"].(string); ok && author == want {
				matched = true
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

type fakeArticleStore struct {
	mu       sync.Mutex
	seq      int
	articles map[string]*models.Article
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{articles: make(map[string]*models.Article)}
}

func (s *fakeArticleStore) FindByID(_ context.Context, id string) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok || a.IsDelete {
		return nil, services.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *fakeArticleStore) Find(_ context.Context, filter bson.M, skip, limit int64) ([]models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Article
	for _, a := range s.articles {
		if matchesFilter(filter, a.Author, a.Status, a.IsDelete) {
			out = append(out, *a)
		}
	}
	if skip >= int64(len(out)) {
		return nil, nil
	}
	out = out[skip:]
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeArticleStore) Create(_ context.Context, a *models.Article) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	clone := *a
	clone.ID = fmt.Sprintf("article-%d", s.seq)
	clone.CreatedTime = time.Now()
	s.articles[clone.ID] = &clone
	return clone.ID, nil
}

func (s *fakeArticleStore) Update(_ context.Context, id string, in *models.ArticleInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return services.ErrNotFound
	}
	a.Title = in.Title
	a.Content = in.Content
	a.Description = in.Description
	a.Picture = in.Picture
	a.Tags = in.Tags
	a.DirectoryID = in.DirectoryID
	if in.IsPublic != nil {
		a.IsPublic = *in.IsPublic
	}
	a.ModifiedTime = time.Now()
	return nil
}

func (s *fakeArticleStore) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return services.ErrNotFound
	}
	a.IsDelete = true
	return nil
}

func (s *fakeArticleStore) UpdateStatus(_ context.Context, id string, status models.ModerationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return services.ErrNotFound
	}
	a.Status = status
	return nil
}

type fakeTagStore struct {
	mu   sync.Mutex
	seq  int
	tags map[string]*models.Tag
}

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{tags: make(map[string]*models.Tag)}
}

func (s *fakeTagStore) FindByID(_ context.Context, id string) (*models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (s *fakeTagStore) FindByIDs(_ context.Context, ids []string) (map[string]*models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.Tag)
	for _, id := range ids {
		if t, ok := s.tags[id]; ok {
			clone := *t
			out[id] = &clone
		}
	}
	return out, nil
}

func (s *fakeTagStore) FindByName(_ context.Context, name string) (*models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tags {
		if t.Name == name && !t.IsDelete {
			clone := *t
			return &clone, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *fakeTagStore) Find(_ context.Context, filter bson.M) ([]models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Tag
	for _, t := range s.tags {
		if matchesFilter(filter, t.Author, t.Status, t.IsDelete) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeTagStore) Create(_ context.Context, t *models.Tag) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	clone := *t
	clone.ID = fmt.Sprintf("tag-%d", s.seq)
	s.tags[clone.ID] = &clone
	return clone.ID, nil
}

func (s *fakeTagStore) UpdateName(_ context.Context, id string, name string, status *models.ModerationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return services.ErrNotFound
	}
	t.Name = name
	if status != nil {
		t.Status = *status
	}
	return nil
}

func (s *fakeTagStore) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return services.ErrNotFound
	}
	t.IsDelete = true
	return nil
}

func (s *fakeTagStore) UpdateStatus(_ context.Context, id string, status models.ModerationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return services.ErrNotFound
	}
	t.Status = status
	return nil
}

type fakeDirectoryStore struct {
	mu   sync.Mutex
	seq  int
	dirs map[string]*models.Directory
}

func newFakeDirectoryStore() *fakeDirectoryStore {
	return &fakeDirectoryStore{dirs: make(map[string]*models.Directory)}
}

func (s *fakeDirectoryStore) FindByID(_ context.Context, id string) (*models.Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dirs[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (s *fakeDirectoryStore) FindByIDs(_ context.Context, ids []string) (map[string]*models.Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.Directory)
	for _, id := range ids {
		if d, ok := s.dirs[id]; ok {
			clone := *d
			out[id] = &clone
		}
	}
	return out, nil
}

func (s *fakeDirectoryStore) FindLive(_ context.Context, parentID, name string) (*models.Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.dirs {
		if d.IsDelete || d.ParentID != parentID {
			continue
		}
		if name != "" && d.Name != name {
			continue
		}
		clone := *d
		return &clone, nil
	}
	return nil, services.ErrNotFound
}

func (s *fakeDirectoryStore) FindLiveByID(_ context.Context, id string) (*models.Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dirs[id]
	if !ok || d.IsDelete {
		return nil, services.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (s *fakeDirectoryStore) FindLiveByName(_ context.Context, name string) (*models.Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.dirs {
		if !d.IsDelete && d.Name == name {
			clone := *d
			return &clone, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *fakeDirectoryStore) ListLive(_ context.Context) ([]models.Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Directory
	for _, d := range s.dirs {
		if !d.IsDelete {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *fakeDirectoryStore) ListChildren(_ context.Context, parentID string) ([]models.Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Directory
	for _, d := range s.dirs {
		if !d.IsDelete && d.ParentID == parentID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *fakeDirectoryStore) Create(_ context.Context, d *models.Directory) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	clone := *d
	clone.ID = fmt.Sprintf("dir-%d", s.seq)
	s.dirs[clone.ID] = &clone
	return clone.ID, nil
}

func (s *fakeDirectoryStore) UpdateName(_ context.Context, id string, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dirs[id]
	if !ok {
		return services.ErrNotFound
	}
	d.Name = name
	return nil
}

func (s *fakeDirectoryStore) Reparent(_ context.Context, id string, newParentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dirs[id]
	if !ok {
		return services.ErrNotFound
	}
	d.ParentID = newParentID
	return nil
}

func (s *fakeDirectoryStore) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dirs[id]
	if !ok {
		return services.ErrNotFound
	}
	d.IsDelete = true
	return nil
}

package handlers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jsonblog/backend/internal/models"
)

// The store interfaces below are the slices of the mongo services the
// handlers consume; tests substitute in-memory fakes.

type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	FindByName(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, u *models.User) (string, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	AttachPendingProfile(ctx context.Context, id string, pending *models.PendingProfile, modified time.Time) error
	ApprovePendingProfile(ctx context.Context, id string) error
	RejectPendingProfile(ctx context.Context, id string) error
}

type ArticleStore interface {
	FindByID(ctx context.Context, id string) (*models.Article, error)
	Find(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Article, error)
	Create(ctx context.Context, a *models.Article) (string, error)
	Update(ctx context.Context, id string, in *models.ArticleInput) error
	SoftDelete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status models.ModerationStatus) error
}

type TagStore interface {
	FindByID(ctx context.Context, id string) (*models.Tag, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*models.Tag, error)
	FindByName(ctx context.Context, name string) (*models.Tag, error)
	Find(ctx context.Context, filter bson.M) ([]models.Tag, error)
	Create(ctx context.Context, t *models.Tag) (string, error)
	UpdateName(ctx context.Context, id string, name string, status *models.ModerationStatus) error
	SoftDelete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status models.ModerationStatus) error
}

type DirectoryStore interface {
	FindByID(ctx context.Context, id string) (*models.Directory, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*models.Directory, error)
	FindLive(ctx context.Context, parentID, name string) (*models.Directory, error)
	FindLiveByID(ctx context.Context, id string) (*models.Directory, error)
	FindLiveByName(ctx context.Context, name string) (*models.Directory, error)
	ListLive(ctx context.Context) ([]models.Directory, error)
	ListChildren(ctx context.Context, parentID string) ([]models.Directory, error)
	Create(ctx context.Context, d *models.Directory) (string, error)
	UpdateName(ctx context.Context, id string, name string) error
	Reparent(ctx context.Context, id string, newParentID string) error
	SoftDelete(ctx context.Context, id string) error
}

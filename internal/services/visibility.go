package services

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jsonblog/backend/internal/models"
)

// VisibilityFilter translates "what can this viewer see" into the filter
// listing queries run with. Soft-deleted records are always excluded.
// Admins see every status; an authenticated viewer additionally sees their
// own records regardless of status; everyone else only approved ones.
// Keep in lockstep with models.Visible.
func VisibilityFilter(viewer *models.Principal) bson.M {
	filter := bson.M{"isDelete": false}
	if viewer != nil && viewer.IsAdmin {
		return filter
	}
	if viewer != nil && viewer.ID != "" {
		owner := bson.M{"author": viewer.ID}
		if oid, err := primitive.ObjectIDFromHex(viewer.ID); err == nil {
			owner = bson.M{"author": oid}
		}
		filter["$or"] = bson.A{
			bson.M{"status": models.StatusApproved},
			owner,
		}
		return filter
	}
	filter["status"] = models.StatusApproved
	return filter
}

package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// UnreviewedTagName replaces a pending tag's name for viewers who are not
// its owner or an admin.
const UnreviewedTagName = "unreviewed tag"

type Tag struct {
	ID           string
	Name         string
	Author       string
	Status       ModerationStatus
	IsDelete     bool
	CreatedTime  time.Time
	ModifiedTime time.Time
}

// CheckTagName validates a tag name; returns a user-facing reason or "".
func CheckTagName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "tag name is required"
	}
	if utf8.RuneCountInString(name) > 20 {
		return "tag name must not exceed 20 characters"
	}
	return ""
}

// DisplayNameFor hides a not-yet-approved name from third parties.
func (t *Tag) DisplayNameFor(viewer *Principal) string {
	if t.Status == StatusApproved || viewerOwnsOrAdmin(viewer, t.Author) {
		return t.Name
	}
	return UnreviewedTagName
}

// TagView is the listing shape of one tag.
type TagView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsOwn bool   `json:"isOwn"`
}

// TagViewFor shapes a tag for a viewer.
func TagViewFor(t *Tag, viewer *Principal) TagView {
	return TagView{
		ID:    t.ID,
		Name:  t.Name,
		IsOwn: viewer != nil && viewer.ID != "" && viewer.ID == t.Author,
	}
}

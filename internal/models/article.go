package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

type Article struct {
	ID           string
	Author       string
	Title        string
	Content      string
	Description  string
	Picture      string
	DirectoryID  string
	Tags         []string
	Like         []string
	Dislike      []string
	ReadCount    int
	IsPublic     bool
	Status       ModerationStatus
	IsDelete     bool
	CreatedTime  time.Time
	ModifiedTime time.Time
}

// ArticleInput is the create/update payload.
type ArticleInput struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Picture     string   `json:"picture"`
	Tags        []string `json:"tags"`
	DirectoryID string   `json:"directoryId"`
	IsPublic    *bool    `json:"isPublic"`
}

// Check validates the payload; returns a user-facing reason or "".
func (in *ArticleInput) Check() string {
	switch {
	case in.Title == "":
		return "article title is required"
	case utf8.RuneCountInString(in.Title) > 120:
		return "article title too long"
	case strings.TrimSpace(in.Content) == "":
		return "article content is required"
	case in.DirectoryID == "":
		return "article directory is required"
	}
	return ""
}

// TagRef is a tag reference inside an article view. A pending tag's name is
// shown only to its owner and admins; everyone else gets a placeholder.
type TagRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DirectoryRef is the directory reference inside an article view.
type DirectoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArticleView is the response shape of one article. It is constructed from
// allowed fields only; like/dislike member lists never leave the server.
type ArticleView struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	Description  string       `json:"description"`
	Picture      string       `json:"picture"`
	Author       AuthorView   `json:"author"`
	Directory    DirectoryRef `json:"directory"`
	Tags         []TagRef     `json:"tags"`
	LikeCount    int          `json:"likeCount"`
	DislikeCount int          `json:"dislikeCount"`
	IsLike       bool         `json:"isLike"`
	IsDislike    bool         `json:"isDislike"`
	ReadCount    int          `json:"readCount"`
	IsPublic     bool         `json:"isPublic"`
	Status       ModerationStatus `json:"status"`
	CreatedTime  time.Time    `json:"createdTime"`
}

// ArticleViewFor shapes an article for a viewer. Referenced users, tags and
// the directory are supplied by the caller (batch-fetched at listing time).
func ArticleViewFor(a *Article, viewer *Principal, authors map[string]*User, tags map[string]*Tag, dirs map[string]*Directory) ArticleView {
	v := ArticleView{
		ID:           a.ID,
		Title:        a.Title,
		Content:      a.Content,
		Description:  a.Description,
		Picture:      a.Picture,
		LikeCount:    len(a.Like),
		DislikeCount: len(a.Dislike),
		ReadCount:    a.ReadCount,
		IsPublic:     a.IsPublic,
		Status:       a.Status,
		CreatedTime:  a.CreatedTime,
		Tags:         make([]TagRef, 0, len(a.Tags)),
	}
	if viewer != nil {
		v.IsLike = containsID(a.Like, viewer.ID)
		v.IsDislike = containsID(a.Dislike, viewer.ID)
	}
	if author, ok := authors[a.Author]; ok {
		v.Author = author.AuthorViewFor(viewer)
	} else {
		v.Author = AuthorView{ID: a.Author}
	}
	if dir, ok := dirs[a.DirectoryID]; ok {
		v.Directory = DirectoryRef{ID: dir.ID, Name: dir.Name}
	} else {
		v.Directory = DirectoryRef{ID: a.DirectoryID}
	}
	for _, id := range a.Tags {
		tag, ok := tags[id]
		if !ok {
			continue
		}
		v.Tags = append(v.Tags, TagRef{ID: tag.ID, Name: tag.DisplayNameFor(viewer)})
	}
	return v
}

func containsID(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

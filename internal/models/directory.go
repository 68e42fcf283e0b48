package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// FallbackDirectoryName is the protected root directory that collects the
// children of deleted directories. It can be neither renamed nor deleted.
const FallbackDirectoryName = "Other"

type Directory struct {
	ID           string
	Name         string
	ParentID     string
	IsDelete     bool
	CreatedTime  time.Time
	ModifiedTime time.Time
}

// IsFallback reports whether this is the protected root directory.
func (d *Directory) IsFallback() bool {
	return d.Name == FallbackDirectoryName && d.ParentID == ""
}

// CheckDirectoryName validates a directory name; returns a user-facing
// reason or "".
func CheckDirectoryName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "directory name is required"
	}
	if utf8.RuneCountInString(name) > 20 {
		return "directory name must not exceed 20 characters"
	}
	return ""
}

// DirectoryNode is one node of the directory tree returned by listings.
type DirectoryNode struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	ParentID string           `json:"pid"`
	Children []*DirectoryNode `json:"children"`
}

// BuildDirectoryTree links flat directories into a forest. Nodes whose
// parent is missing (or empty) become roots.
func BuildDirectoryTree(dirs []Directory) []*DirectoryNode {
	nodes := make(map[string]*DirectoryNode, len(dirs))
	for _, d := range dirs {
		nodes[d.ID] = &DirectoryNode{
			ID:       d.ID,
			Name:     d.Name,
			ParentID: d.ParentID,
			Children: []*DirectoryNode{},
		}
	}
	var roots []*DirectoryNode
	for _, d := range dirs {
		node := nodes[d.ID]
		if parent, ok := nodes[d.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}
	return roots
}

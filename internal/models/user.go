package models

import (
	"fmt"
	"regexp"
	"time"
)

// ProfileEditCooldown is the minimum time between two profile edits.
const ProfileEditCooldown = 3 * 24 * time.Hour

// Warning codes carried in the response envelope (negative, HTTP 200).
const (
	WarnGeneral  = -1
	WarnPassword = -2
)

// Principal is the resolved identity of one request. It is rebuilt from the
// user record on every request and never cached across requests.
type Principal struct {
	ID      string
	Role    Role
	Status  ModerationStatus
	IsAdmin bool
}

// NewPrincipal derives a Principal from a user record. The caller must have
// applied the lazy role expiry first so IsAdmin reflects the current role.
func NewPrincipal(u *User) *Principal {
	return &Principal{
		ID:      u.ID,
		Role:    u.Role,
		Status:  u.Status,
		IsAdmin: u.Role.IsAdminEquivalent(),
	}
}

// PendingProfile is the shadow copy of profile fields awaiting review. While
// present, the base fields remain the public truth; only the owner and
// admins see the overlay merged on top. It is cleared by an explicit
// moderation action, never automatically. The user store persists this
// struct directly under the document's unReview field, so the bson tags
// here are the stored shape.
type PendingProfile struct {
	Username  string `bson:"username,omitempty" json:"username,omitempty"`
	Picture   string `bson:"picture,omitempty" json:"picture,omitempty"`
	Biography string `bson:"biography,omitempty" json:"biography,omitempty"`
}

type User struct {
	ID           string
	Username     string
	Password     string
	Biography    string
	Picture      string
	Role         Role
	Status       ModerationStatus
	Expiration   time.Time
	IsDelete     bool
	CreatedTime  time.Time
	ModifiedTime time.Time
	Pending      *PendingProfile
}

// ApplyRoleExpiry downgrades an expired temporary-trusted account to basic
// and reports whether a downgrade happened (so the caller can persist it).
// Re-applying to an already-downgraded user is a no-op.
func (u *User) ApplyRoleExpiry(now time.Time) bool {
	if u.Role != RoleTemporaryTrusted {
		return false
	}
	if u.Expiration.IsZero() || u.Expiration.After(now) {
		return false
	}
	u.Role = RoleBasic
	return true
}

// CanModify reports whether the profile-edit cooldown has elapsed.
func (u *User) CanModify(now time.Time) bool {
	return now.Sub(u.ModifiedTime) >= ProfileEditCooldown
}

// ProfileView is the owner's (or an admin's) view of a user: base fields
// with any pending edit merged on top, private fields never included.
type ProfileView struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Biography string           `json:"biography"`
	Picture   string           `json:"picture"`
	Role      Role             `json:"role"`
	Status    ModerationStatus `json:"status"`
	CanModify bool             `json:"canModify"`
}

// ProfileView builds the overlay-merged self view. Overlay fields win
// field-by-field wherever the overlay carries them.
func (u *User) ProfileView(now time.Time) ProfileView {
	v := ProfileView{
		ID:        u.ID,
		Username:  u.Username,
		Biography: u.Biography,
		Picture:   u.Picture,
		Role:      u.Role,
		Status:    u.Status,
		CanModify: u.CanModify(now),
	}
	if u.Pending != nil {
		if u.Pending.Username != "" {
			v.Username = u.Pending.Username
		}
		if u.Pending.Biography != "" {
			v.Biography = u.Pending.Biography
		}
		if u.Pending.Picture != "" {
			v.Picture = u.Pending.Picture
		}
	}
	return v
}

// AuthorView is the minimal author reference embedded in content views.
type AuthorView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthorViewFor shapes the author reference for a given viewer. The pending
// username is shown only to the owner and admins; everyone else gets the
// last-approved name with no hint that an edit is pending.
func (u *User) AuthorViewFor(viewer *Principal) AuthorView {
	v := AuthorView{ID: u.ID, Username: u.Username}
	if u.Pending != nil && u.Pending.Username != "" && viewerOwnsOrAdmin(viewer, u.ID) {
		v.Username = u.Pending.Username
	}
	return v
}

func viewerOwnsOrAdmin(viewer *Principal, ownerID string) bool {
	if viewer == nil {
		return false
	}
	return viewer.IsAdmin || (viewer.ID != "" && viewer.ID == ownerID)
}

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9@_.\-]+$`)
	passwordCharset = regexp.MustCompile(`^[0-9a-zA-Z!@#$&*_:;.,\-]+$`)

	lowerClass   = regexp.MustCompile(`[a-z]`)
	upperClass   = regexp.MustCompile(`[A-Z]`)
	digitClass   = regexp.MustCompile(`[0-9]`)
	specialClass = regexp.MustCompile(`[!@#$&*_:;.,\-]`)
)

// CheckUsername validates the username rules: letters, digits and @_.-
// with length 2..20 (2..50 for admin-created accounts). Returns a
// user-facing reason, or "" when valid.
func CheckUsername(username string, admin bool) string {
	max := 20
	if admin {
		max = 50
	}
	if len(username) < 2 || len(username) > max || !usernamePattern.MatchString(username) {
		return fmt.Sprintf("username must consist of letters, digits and @_.- and be 2 to %d characters long", max)
	}
	return ""
}

// CheckPassword validates the password rules: 6..30 characters from the
// allowed charset, with at least two character classes. Returns a
// user-facing reason, or "" when valid.
func CheckPassword(password string) string {
	n := len(password)
	if n < 6 {
		return "password too short, length must be between 6 and 30"
	}
	if n > 30 {
		return "password too long, length must be between 6 and 30"
	}
	if !passwordCharset.MatchString(password) {
		return "password may only contain digits, letters and the special characters !@#$&*_:;.,-"
	}
	classes := 0
	for _, re := range []*regexp.Regexp{lowerClass, upperClass, digitClass, specialClass} {
		if re.MatchString(password) {
			classes++
		}
	}
	if classes < 2 {
		return "password too simple, it must mix at least two of digits, lowercase, uppercase and special characters"
	}
	return ""
}

package models

// Role is a user's permission level. The numeric codes are persisted, so
// they must stay stable across releases.
type Role int

const (
	// RoleSuspended can view content only; reactions are blocked.
	RoleSuspended Role = -2
	// RoleMuted can view and react but never author.
	RoleMuted Role = -1
	// RoleBasic can view and react but never author.
	RoleBasic Role = 0
	// RoleContributor can author; everything authored awaits review.
	RoleContributor Role = 1
	// RoleTemporaryTrusted authors without review until the account's
	// expiration, after which it is lazily downgraded to RoleBasic.
	RoleTemporaryTrusted Role = 2
	// RoleAdmin bypasses moderation and ownership checks.
	RoleAdmin Role = 99
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuspended, RoleMuted, RoleBasic, RoleContributor, RoleTemporaryTrusted, RoleAdmin:
		return true
	}
	return false
}

// IsAdminEquivalent reports whether the role carries admin privileges.
// A temporary trusted account counts until its lazy downgrade lands.
func (r Role) IsAdminEquivalent() bool {
	return r == RoleAdmin || r == RoleTemporaryTrusted
}

// CanAuthor reports whether the role may create articles and tags at all.
func (r Role) CanAuthor() bool {
	return r == RoleContributor || r == RoleTemporaryTrusted || r == RoleAdmin
}

// CanReact reports whether the role may like/dislike. Muted users keep
// reactions; suspended users lose them.
func (r Role) CanReact() bool {
	return r != RoleSuspended
}

func (r Role) String() string {
	switch r {
	case RoleSuspended:
		return "suspended"
	case RoleMuted:
		return "muted"
	case RoleBasic:
		return "basic"
	case RoleContributor:
		return "contributor"
	case RoleTemporaryTrusted:
		return "temporary-trusted"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// ModerationStatus is the tri-state review lifecycle of moderated records.
type ModerationStatus int

const (
	// StatusBanned records are visible to admins and their owner only.
	StatusBanned ModerationStatus = -1
	// StatusPending records await review; visible to admins and owner.
	StatusPending ModerationStatus = 0
	// StatusApproved records are publicly visible.
	StatusApproved ModerationStatus = 1
)

func (s ModerationStatus) Valid() bool {
	return s == StatusBanned || s == StatusPending || s == StatusApproved
}

// InitialStatus is the status a freshly created record gets: admins (and
// admin-equivalents) publish immediately, everyone else awaits review.
func InitialStatus(creator *Principal) ModerationStatus {
	if creator != nil && creator.IsAdmin {
		return StatusApproved
	}
	return StatusPending
}

// CanTransition reports whether viewer may move a record to target.
// Every state is reachable from every other, but only by an admin; this
// keeps rolled-back moderation (e.g. unbanning) possible.
func CanTransition(viewer *Principal, target ModerationStatus) bool {
	return viewer != nil && viewer.IsAdmin && target.Valid()
}

// Visible is the moderation visibility predicate: admins see everything,
// owners always see their own records, everyone else sees approved ones.
// The batch-listing equivalent lives in services.VisibilityFilter and must
// stay in lockstep with this.
func Visible(viewer *Principal, ownerID string, status ModerationStatus) bool {
	if viewer != nil {
		if viewer.IsAdmin {
			return true
		}
		if viewer.ID != "" && viewer.ID == ownerID {
			return true
		}
	}
	return status == StatusApproved
}

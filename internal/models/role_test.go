package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRolePredicates(t *testing.T) {
	t.Parallel()

	require.False(t, RoleSuspended.CanReact())
	require.True(t, RoleMuted.CanReact())
	require.True(t, RoleBasic.CanReact())

	require.False(t, RoleSuspended.CanAuthor())
	require.False(t, RoleMuted.CanAuthor())
	require.False(t, RoleBasic.CanAuthor())
	require.True(t, RoleContributor.CanAuthor())
	require.True(t, RoleTemporaryTrusted.CanAuthor())
	require.True(t, RoleAdmin.CanAuthor())

	require.True(t, RoleAdmin.IsAdminEquivalent())
	require.True(t, RoleTemporaryTrusted.IsAdminEquivalent())
	require.False(t, RoleContributor.IsAdminEquivalent())

	require.True(t, RoleContributor.Valid())
	require.False(t, Role(42).Valid())
}

func TestInitialStatus(t *testing.T) {
	t.Parallel()

	admin := &Principal{ID: "a", Role: RoleAdmin, IsAdmin: true}
	contributor := &Principal{ID: "c", Role: RoleContributor}

	require.Equal(t, StatusApproved, InitialStatus(admin))
	require.Equal(t, StatusPending, InitialStatus(contributor))
	require.Equal(t, StatusPending, InitialStatus(nil))
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	admin := &Principal{ID: "a", Role: RoleAdmin, IsAdmin: true}
	contributor := &Principal{ID: "c", Role: RoleContributor}

	// All states are reachable from all others, admin only.
	for _, target := range []ModerationStatus{StatusBanned, StatusPending, StatusApproved} {
		require.True(t, CanTransition(admin, target))
		require.False(t, CanTransition(contributor, target))
		require.False(t, CanTransition(nil, target))
	}
	require.False(t, CanTransition(admin, ModerationStatus(7)))
}

func TestVisible(t *testing.T) {
	t.Parallel()

	admin := &Principal{ID: "a", Role: RoleAdmin, IsAdmin: true}
	owner := &Principal{ID: "o", Role: RoleContributor}
	stranger := &Principal{ID: "s", Role: RoleBasic}

	statuses := []ModerationStatus{StatusBanned, StatusPending, StatusApproved}

	// Admins and owners see every status.
	for _, status := range statuses {
		require.True(t, Visible(admin, "o", status))
		require.True(t, Visible(owner, "o", status))
	}

	// Everyone else sees exactly the approved ones.
	for _, status := range statuses {
		require.Equal(t, status == StatusApproved, Visible(stranger, "o", status))
		require.Equal(t, status == StatusApproved, Visible(nil, "o", status))
	}
}

func TestVisibleEmptyViewerID(t *testing.T) {
	t.Parallel()

	// A principal with no id must not own entities with an empty ownerId.
	anonymousish := &Principal{ID: "", Role: RoleBasic}
	require.False(t, Visible(anonymousish, "", StatusPending))
}

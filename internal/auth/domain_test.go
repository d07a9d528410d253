package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleCapabilities(t *testing.T) {
	for _, role := range []Role{RoleManagement, RoleAccounting} {
		if role.HasManagementAccess() {
			assert.True(t, role.HasAccountingAccess(), "management must imply accounting for %s", role)
		}
	}
	assert.True(t, RoleManagement.HasManagementAccess())
	assert.False(t, RoleAccounting.HasManagementAccess())
	assert.True(t, RoleAccounting.HasAccountingAccess())

	var unknown Role
	assert.False(t, unknown.HasManagementAccess())
	assert.False(t, unknown.HasAccountingAccess())
	assert.False(t, unknown.Valid())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("accounting")
	require.NoError(t, err)
	assert.Equal(t, RoleAccounting, r)

	_, err = ParseRole("Management")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestProfileRoundTripThroughStore(t *testing.T) {
	joined := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	in := Profile{ID: 7, Username: "accounting", Email: "acc@example.com", FullName: "حسابدار ارشد", Role: RoleAccounting, IsActive: true, DateJoined: joined}

	raw, err := EncodeProfile(in)
	require.NoError(t, err)
	assert.Contains(t, raw, `"role":"accounting"`)

	out, err := DecodeProfile(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeProfileRejectsCorruptPayloads(t *testing.T) {
	for _, raw := range []string{`{not json`, `{"id":1,"username":"x"}`, `{"id":1,"role":"root"}`, ``} {
		_, err := DecodeProfile(raw)
		assert.Error(t, err, raw)
	}
}

func TestMergeProfileKeepsUnserializedFields(t *testing.T) {
	joined := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	base := Profile{ID: 1, Username: "admin", Role: RoleManagement, IsActive: true, DateJoined: joined}
	fetched := Profile{ID: 1, Username: "admin", FullName: "Admin", Role: RoleManagement}

	merged := MergeProfile(base, fetched)
	assert.True(t, merged.IsActive)
	assert.Equal(t, joined, merged.DateJoined)
	assert.Equal(t, "Admin", merged.FullName)
	assert.Equal(t, "Admin", merged.DisplayName())
	assert.Equal(t, "admin", base.DisplayName())
}

package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/lwalder/veille/pkg/domain/types"
)

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role types.Role
		want []types.Permission
	}{
		{
			role: types.RoleAdmin,
			want: []types.Permission{
				types.PermissionRead, types.PermissionWrite, types.PermissionDelete,
				types.PermissionMetrics, types.PermissionConfig,
			},
		},
		{
			role: types.RoleInternal,
			want: []types.Permission{
				types.PermissionRead, types.PermissionWrite, types.PermissionMetrics,
			},
		},
		{
			role: types.RoleReadonly,
			want: []types.Permission{types.PermissionRead},
		},
	}

	for _, tc := range tests {
		t.Run(tc.role.String(), func(t *testing.T) {
			gt.Value(t, tc.role.Permissions()).Equal(tc.want)
		})
	}
}

func TestRoleHasPermission(t *testing.T) {
	gt.Bool(t, types.RoleAdmin.HasPermission(types.PermissionConfig)).True()
	gt.Bool(t, types.RoleInternal.HasPermission(types.PermissionMetrics)).True()
	gt.Bool(t, types.RoleInternal.HasPermission(types.PermissionConfig)).False()
	gt.Bool(t, types.RoleReadonly.HasPermission(types.PermissionWrite)).False()
}

func TestRoleHourlyLimit(t *testing.T) {
	gt.Number(t, types.RoleAdmin.HourlyLimit()).Equal(1000)
	gt.Number(t, types.RoleInternal.HourlyLimit()).Equal(500)
	gt.Number(t, types.RoleReadonly.HourlyLimit()).Equal(100)
	// Unknown roles get a conservative fallback
	gt.Number(t, types.Role("mystery").HourlyLimit()).Equal(50)
}

func TestRoleValidate(t *testing.T) {
	for _, role := range types.AllRoles {
		gt.NoError(t, role.Validate())
	}
	gt.Value(t, types.Role("mystery").Validate()).NotNil()
}

func TestSourceNameValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   types.SourceName
		wantErr bool
	}{
		{name: "simple", input: "twitter"},
		{name: "with digits and hyphen", input: "press-rss2"},
		{name: "empty", input: "", wantErr: true},
		{name: "uppercase", input: "Twitter", wantErr: true},
		{name: "leading hyphen", input: "-press", wantErr: true},
		{name: "spaces", input: "press rss", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.input.Validate()
			if tc.wantErr {
				gt.Value(t, err).NotNil()
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

package security

import (
	"testing"

	"github.com/stretchr/testify/require"

	"retailcore/internal/core/apperror"
)

func TestPolicyEngine_CancelPurchaseDefault(t *testing.T) {
	engine, err := NewPolicyEngine()
	require.NoError(t, err)

	clerk := map[string]any{"role": "clerk", "is_admin": false}
	manager := map[string]any{"role": "manager", "is_admin": false}

	tests := []struct {
		name    string
		entry   map[string]any
		user    map[string]any
		allowed bool
	}{
		{
			name:    "nothing received, clerk may cancel",
			entry:   map[string]any{"received_any": false},
			user:    clerk,
			allowed: true,
		},
		{
			name:    "goods received, clerk denied",
			entry:   map[string]any{"received_any": true},
			user:    clerk,
			allowed: false,
		},
		{
			name:    "goods received, manager allowed",
			entry:   map[string]any{"received_any": true},
			user:    manager,
			allowed: true,
		},
		{
			name:    "goods received, admin allowed",
			entry:   map[string]any{"received_any": true},
			user:    map[string]any{"role": "clerk", "is_admin": true},
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.Allow(PolicyCancelPurchase, tt.entry, tt.user)
			if tt.allowed {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.True(t, apperror.HasCode(err, apperror.CodeForbidden))
			}
		})
	}
}

func TestPolicyEngine_SetRuleOverride(t *testing.T) {
	engine, err := NewPolicyEngine()
	require.NoError(t, err)

	// Tenant override: never cancel once any payment is recorded.
	err = engine.SetRule(PolicyCancelPurchase, `entry.amount_paid == 0.0`)
	require.NoError(t, err)

	err = engine.Allow(PolicyCancelPurchase,
		map[string]any{"amount_paid": 100.0},
		map[string]any{"role": "admin", "is_admin": true})
	require.Error(t, err)

	err = engine.Allow(PolicyCancelPurchase,
		map[string]any{"amount_paid": 0.0},
		map[string]any{"role": "clerk", "is_admin": false})
	require.NoError(t, err)
}

func TestPolicyEngine_MissingRuleAllows(t *testing.T) {
	engine, err := NewPolicyEngine()
	require.NoError(t, err)

	require.NoError(t, engine.Allow("no_such_rule", nil, nil))
}

func TestPolicyEngine_BadExpression(t *testing.T) {
	engine, err := NewPolicyEngine()
	require.NoError(t, err)

	require.Error(t, engine.SetRule("broken", `entry.amount_due >`))
}

func TestRoleHasPermission(t *testing.T) {
	require.True(t, RoleHasPermission(RoleClerk, PermissionReceive))
	require.False(t, RoleHasPermission(RoleClerk, PermissionCancel))
	require.False(t, RoleHasPermission(RoleViewer, PermissionCreate))
	require.True(t, RoleHasPermission(RoleManager, PermissionCancel))
}

package roles

import (
	"testing"

	"github.com/dukerupert/hardbottle/internal/model"
)

func TestCanDelegate(t *testing.T) {
	cases := []struct {
		from model.RoleType
		to   model.RoleType
		want bool
	}{
		{model.RoleAdmin, model.RoleFullAccess, true},
		{model.RoleAdmin, model.RoleEditor, true},
		{model.RoleAdmin, model.RoleViewOnly, true},
		{model.RoleAdmin, model.RoleLimited, true},
		{model.RoleAdmin, model.RoleChild, true},
		{model.RoleAdmin, model.RoleAdmin, false},

		{model.RoleFullAccess, model.RoleEditor, true},
		{model.RoleFullAccess, model.RoleViewOnly, true},
		{model.RoleFullAccess, model.RoleLimited, true},
		{model.RoleFullAccess, model.RoleFullAccess, false},
		{model.RoleFullAccess, model.RoleAdmin, false},
		{model.RoleFullAccess, model.RoleChild, false},

		{model.RoleEditor, model.RoleViewOnly, false},
		{model.RoleViewOnly, model.RoleChild, false},
		{model.RoleLimited, model.RoleChild, false},
		{model.RoleChild, model.RoleChild, false},
	}
	for _, tc := range cases {
		if got := CanDelegate(tc.from, tc.to); got != tc.want {
			t.Errorf("CanDelegate(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestMaxDelegationDays(t *testing.T) {
	cases := []struct {
		from model.RoleType
		to   model.RoleType
		days int
		ok   bool
	}{
		{model.RoleAdmin, model.RoleFullAccess, 90, true},
		{model.RoleAdmin, model.RoleViewOnly, 365, true},
		{model.RoleFullAccess, model.RoleEditor, 30, true},
		{model.RoleAdmin, model.RoleAdmin, 0, false},
		{model.RoleEditor, model.RoleViewOnly, 0, false},
	}
	for _, tc := range cases {
		days, ok := MaxDelegationDays(tc.from, tc.to)
		if days != tc.days || ok != tc.ok {
			t.Errorf("MaxDelegationDays(%s, %s) = (%d, %v), want (%d, %v)", tc.from, tc.to, days, ok, tc.days, tc.ok)
		}
	}
}

func TestRequiresApprovalForDelegation(t *testing.T) {
	cases := []struct {
		from model.RoleType
		to   model.RoleType
		want bool
	}{
		{model.RoleAdmin, model.RoleFullAccess, false},
		{model.RoleFullAccess, model.RoleEditor, true},
		{model.RoleFullAccess, model.RoleLimited, true},
		{model.RoleFullAccess, model.RoleViewOnly, false},
	}
	for _, tc := range cases {
		if got := RequiresApprovalForDelegation(tc.from, tc.to); got != tc.want {
			t.Errorf("RequiresApprovalForDelegation(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestLookupPolicy(t *testing.T) {
	p := LookupPolicy(model.RoleEditor, PermTransactionCreate)
	if !p.Allowed || p.AmountLimit == nil || *p.AmountLimit != 5000 || !p.RequiresApproval {
		t.Errorf("editor transaction.create policy = %+v", p)
	}

	p = LookupPolicy(model.RoleAdmin, "never.registered")
	if !p.Allowed || p.AmountLimit != nil || p.RequiresApproval {
		t.Errorf("admin wildcard policy = %+v", p)
	}

	p = LookupPolicy(model.RoleChild, PermBudgetEdit)
	if p.Allowed {
		t.Errorf("child budget.edit should be denied, got %+v", p)
	}
}

func TestRoleOrdering(t *testing.T) {
	ordered := []model.RoleType{
		model.RoleChild, model.RoleLimited, model.RoleViewOnly,
		model.RoleEditor, model.RoleFullAccess, model.RoleAdmin,
	}
	for i := 1; i < len(ordered); i++ {
		if !ordered[i].AtLeast(ordered[i-1]) {
			t.Errorf("%s should outrank %s", ordered[i], ordered[i-1])
		}
		if ordered[i-1].AtLeast(ordered[i]) {
			t.Errorf("%s should not outrank %s", ordered[i-1], ordered[i])
		}
	}
	if !model.RoleEditor.AtLeast(model.RoleEditor) {
		t.Error("a role is at least itself")
	}
	if model.RoleType("superuser").Valid() {
		t.Error("unknown role should not be valid")
	}
}

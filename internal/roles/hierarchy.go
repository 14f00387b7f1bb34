package roles

import "github.com/dukerupert/hardbottle/internal/model"

// Static policy data for the role hierarchy: who may delegate what, for how
// long, whether the grant needs sign-off, and what each role may do. Seeded
// at init and read-only afterwards, so lookups need no locking.

type delegationKey struct {
	From model.RoleType
	To   model.RoleType
}

type delegationPolicy struct {
	MaxDays          int
	RequiresApproval bool
}

// delegationPolicies defines every permitted (grantor, grantee) pair. A pair
// absent from this table cannot be delegated at all. Admin may hand out any
// role below itself; a full-access member may hand out the middle tiers.
// Broad grants by the admin are trusted; partial grants by a full-access
// member require sign-off.
var delegationPolicies = map[delegationKey]delegationPolicy{
	{model.RoleAdmin, model.RoleFullAccess}: {MaxDays: 90},
	{model.RoleAdmin, model.RoleEditor}:     {MaxDays: 180},
	{model.RoleAdmin, model.RoleViewOnly}:   {MaxDays: 365},
	{model.RoleAdmin, model.RoleLimited}:    {MaxDays: 180},
	{model.RoleAdmin, model.RoleChild}:      {MaxDays: 90},

	{model.RoleFullAccess, model.RoleEditor}:   {MaxDays: 30, RequiresApproval: true},
	{model.RoleFullAccess, model.RoleViewOnly}: {MaxDays: 90},
	{model.RoleFullAccess, model.RoleLimited}:  {MaxDays: 30, RequiresApproval: true},
}

// CanDelegate reports whether a holder of fromRole may delegate toRole.
func CanDelegate(fromRole, toRole model.RoleType) bool {
	_, ok := delegationPolicies[delegationKey{fromRole, toRole}]
	return ok
}

// MaxDelegationDays returns the longest permitted delegation period in days
// for the pair. ok is false when the pair cannot be delegated.
func MaxDelegationDays(fromRole, toRole model.RoleType) (int, bool) {
	p, ok := delegationPolicies[delegationKey{fromRole, toRole}]
	if !ok {
		return 0, false
	}
	return p.MaxDays, true
}

// RequiresApprovalForDelegation reports whether a delegation for the pair
// needs human sign-off before taking effect.
func RequiresApprovalForDelegation(fromRole, toRole model.RoleType) bool {
	return delegationPolicies[delegationKey{fromRole, toRole}].RequiresApproval
}

// Permission keys known to the policy table. Callers elsewhere in the system
// pass these when asking whether an action is allowed.
const (
	PermTransactionCreate = "transaction.create"
	PermTransactionDelete = "transaction.delete"
	PermTransactionImport = "transaction.import"
	PermBudgetView        = "budget.view"
	PermBudgetEdit        = "budget.edit"
	PermReportView        = "report.view"
	PermMemberManage      = "member.manage"
	PermRoleAssign        = "role.assign"
)

// Policy is the resolved permission entry for a (role, key) pair.
type Policy struct {
	Allowed          bool
	AmountLimit      *float64
	RequiresApproval bool
}

type policyKey struct {
	Role model.RoleType
	Perm string
}

func limit(v float64) *float64 { return &v }

var permissionPolicies = map[policyKey]Policy{
	{model.RoleFullAccess, PermTransactionCreate}: {Allowed: true},
	{model.RoleFullAccess, PermTransactionDelete}: {Allowed: true},
	{model.RoleFullAccess, PermTransactionImport}: {Allowed: true},
	{model.RoleFullAccess, PermBudgetView}:        {Allowed: true},
	{model.RoleFullAccess, PermBudgetEdit}:        {Allowed: true},
	{model.RoleFullAccess, PermReportView}:        {Allowed: true},
	{model.RoleFullAccess, PermMemberManage}:      {Allowed: true, RequiresApproval: true},

	{model.RoleEditor, PermTransactionCreate}: {Allowed: true, AmountLimit: limit(5000), RequiresApproval: true},
	{model.RoleEditor, PermTransactionDelete}: {Allowed: true, AmountLimit: limit(1000), RequiresApproval: true},
	{model.RoleEditor, PermBudgetView}:        {Allowed: true},
	{model.RoleEditor, PermBudgetEdit}:        {Allowed: true, RequiresApproval: true},
	{model.RoleEditor, PermReportView}:        {Allowed: true},

	{model.RoleViewOnly, PermBudgetView}: {Allowed: true},
	{model.RoleViewOnly, PermReportView}: {Allowed: true},

	{model.RoleLimited, PermTransactionCreate}: {Allowed: true, AmountLimit: limit(500), RequiresApproval: true},
	{model.RoleLimited, PermBudgetView}:        {Allowed: true},

	{model.RoleChild, PermTransactionCreate}: {Allowed: true, AmountLimit: limit(50), RequiresApproval: true},
}

// LookupPolicy resolves the policy entry for a role and permission key.
// Admin matches every key unconditionally with no amount ceiling; for other
// roles an absent entry means denied.
func LookupPolicy(role model.RoleType, perm string) Policy {
	if role == model.RoleAdmin {
		return Policy{Allowed: true}
	}
	return permissionPolicies[policyKey{role, perm}]
}

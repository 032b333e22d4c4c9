package rbac

const (
	RoleEmployee = "Employee"
	RoleHR       = "HR"
)

const (
	ResourceLeave    = "leave"
	ResourceEmployee = "employee"

	ActionCreate = "create"
	ActionRead   = "read"
	ActionReview = "review"
	ActionDecide = "decide"
)

type Permission struct {
	Role     string
	Resource string
	Action   string
}

// RoleInheritance lists child -> parent pairs; HR can do everything an
// employee can.
var RoleInheritance = [][2]string{
	{RoleHR, RoleEmployee},
}

var DefaultPermissions = []Permission{
	{Role: RoleEmployee, Resource: ResourceLeave, Action: ActionCreate},
	{Role: RoleEmployee, Resource: ResourceLeave, Action: ActionRead},
	{Role: RoleHR, Resource: ResourceLeave, Action: ActionReview},
	{Role: RoleHR, Resource: ResourceLeave, Action: ActionDecide},
	{Role: RoleHR, Resource: ResourceEmployee, Action: ActionRead},
}

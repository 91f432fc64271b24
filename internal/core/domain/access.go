package domain

// RouteClass groups routes that share one authorization rule.
type RouteClass string

const (
	RouteAccountRegister    RouteClass = "account.register"
	RouteSelf               RouteClass = "self"
	RouteEmployeeList       RouteClass = "employee.list"
	RouteEmployeeRead       RouteClass = "employee.read"
	RouteEmployeeUpdate     RouteClass = "employee.update"
	RouteEmployeeAdminister RouteClass = "employee.administer"
	RouteEmployeeTerminate  RouteClass = "employee.terminate"
)

// Decision is the transient outcome of an access check.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	default:
		return "deny_forbidden"
	}
}

// Err converts a decision into the sentinel the HTTP layer maps to a status.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return ErrInvalidToken
	default:
		return ErrForbidden
	}
}

// capabilities is the single source of truth for which role may call which
// route class. Anything absent is denied.
var capabilities = map[RouteClass]map[Role]bool{
	RouteAccountRegister:    {RoleAdmin: true, RoleHR: true},
	RouteSelf:               {RoleAdmin: true, RoleHR: true, RoleManager: true, RoleEmployee: true},
	RouteEmployeeList:       {RoleAdmin: true, RoleHR: true, RoleManager: true},
	RouteEmployeeRead:       {RoleAdmin: true, RoleHR: true, RoleManager: true, RoleEmployee: true},
	RouteEmployeeUpdate:     {RoleAdmin: true, RoleHR: true, RoleManager: true, RoleEmployee: true},
	RouteEmployeeAdminister: {RoleAdmin: true, RoleHR: true},
	RouteEmployeeTerminate:  {RoleAdmin: true},
}

// Permits reports whether role may call routes of the given class.
func Permits(role Role, class RouteClass) bool {
	return capabilities[class][role]
}

// DecideRoute is the role gate. A nil caller is unauthenticated.
func DecideRoute(caller *Account, class RouteClass) Decision {
	if caller == nil {
		return DenyUnauthenticated
	}
	if !Permits(caller.Role, class) {
		return DenyForbidden
	}
	return Allow
}

// HasUnrestrictedEmployeeAccess reports whether the role may touch any employee record.
func HasUnrestrictedEmployeeAccess(role Role) bool {
	return role == RoleAdmin || role == RoleHR
}

// DecideEmployeeAccess is the ownership gate for a single employee record.
// target may be nil when the record does not exist; only self-access by an
// employee can be decided without it.
func DecideEmployeeAccess(caller *Account, targetID string, target *Account) Decision {
	if caller == nil {
		return DenyUnauthenticated
	}
	switch caller.Role {
	case RoleAdmin, RoleHR:
		return Allow
	case RoleEmployee:
		if targetID != "" && caller.ID == targetID {
			return Allow
		}
	case RoleManager:
		// Direct reports only; the chain is not followed upwards.
		if target != nil && target.ManagerID != "" && target.ManagerID == caller.ID {
			return Allow
		}
	}
	return DenyForbidden
}

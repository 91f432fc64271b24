package domain

import "time"

// AuditAction names a security-relevant operation.
type AuditAction string

const (
	AuditLogin          AuditAction = "auth.login"
	AuditRegister       AuditAction = "auth.register"
	AuditPasswordChange AuditAction = "auth.password_change"
	AuditProfileUpdate  AuditAction = "auth.profile_update"
	AuditEmployeeUpdate AuditAction = "employee.update"
	AuditTerminate      AuditAction = "employee.terminate"
	AuditAccessDenied   AuditAction = "access.denied"
)

// AuditEvent is an append-only record of who did what to whom.
type AuditEvent struct {
	Action     AuditAction
	ActorID    string // empty for anonymous callers
	TargetID   string
	Outcome    string // "success" or a short failure reason
	RemoteIP   string
	RequestID  string
	OccurredAt time.Time
}

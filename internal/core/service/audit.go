package service

import (
	"context"
	"time"

	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

const outcomeSuccess = "success"

type nopAudit struct{}

func (nopAudit) Record(domain.AuditEvent) {}

// auditEvent builds an event enriched with the transport metadata carried by ctx.
func auditEvent(ctx context.Context, action domain.AuditAction, actorID, targetID, outcome string) domain.AuditEvent {
	meta := ports.RequestMetaFrom(ctx)
	return domain.AuditEvent{
		Action:     action,
		ActorID:    actorID,
		TargetID:   targetID,
		Outcome:    outcome,
		RemoteIP:   meta.RemoteIP,
		RequestID:  meta.RequestID,
		OccurredAt: time.Now().UTC(),
	}
}

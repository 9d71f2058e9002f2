package models

import "time"

// AuditRecord documents one executed mutation. Append-only: written in the
// same transaction as the mutation itself, never updated or deleted.
type AuditRecord struct {
	ID         string         `bson:"id" json:"id"`
	Action     string         `bson:"action" json:"action"`
	OperatorID string         `bson:"operatorId" json:"operatorId"`
	EntityKind string         `bson:"entityKind" json:"entityKind"`
	EntityID   int64          `bson:"entityId" json:"entityId"`
	Detail     map[string]any `bson:"detail,omitempty" json:"detail,omitempty"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt"`
}

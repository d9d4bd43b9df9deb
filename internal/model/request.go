package model

import "encoding/json"

type PaymentIntentRequest struct {
	Price json.RawMessage `json:"price"`
}

// Page is an optional window over a result set. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

type AuditActor struct {
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
	IP    string `json:"ip,omitempty"`
}

type AuditEntry struct {
	ID         int64      `json:"id"`
	Action     string     `json:"action"`
	OccurredAt string     `json:"occurredAt"`
	Actor      AuditActor `json:"actor"`
	Status     string     `json:"status"`
	Resource   string     `json:"resource,omitempty"`
	Before     any        `json:"before,omitempty"`
	After      any        `json:"after,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type AuditQuery struct {
	Action     string
	ActorEmail string
	Status     string
	Resource   string
	From       string
	To         string
	Page       int
	Limit      int
}

type AuditListData struct {
	Items []AuditEntry `json:"items"`
	Meta  Meta         `json:"meta"`
}

const (
	AuditActionPromote = "role.promote"

	AuditStatusSuccess = "success"
	AuditStatusDenied  = "denied"
)

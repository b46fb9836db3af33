// api/audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// AuditLog records an authorization decision or a directory mutation.
// For decisions, Resource/Level carry the request and AccessGranted the
// outcome; for mutations, Action names the change and ChangeDetails holds
// the before/after payload.
type AuditLog struct {
	Timestamp     time.Time       `json:"timestamp"`
	UserID        string          `json:"user_id"`
	Action        string          `json:"action"`
	Resource      string          `json:"resource,omitempty"`
	Level         string          `json:"level,omitempty"`
	AccessGranted bool            `json:"access_granted"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}

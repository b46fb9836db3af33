// api/model/permission.go
package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// PermissionLevel is an ordered access tier. A held level satisfies a
// required level iff held >= required.
type PermissionLevel int

const (
	LevelNone PermissionLevel = iota
	LevelRead
	LevelWrite
	LevelAdmin
)

var levelNames = map[PermissionLevel]string{
	LevelNone:  "none",
	LevelRead:  "read",
	LevelWrite: "write",
	LevelAdmin: "admin",
}

func (l PermissionLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Satisfies reports whether a held level grants a required level.
func (l PermissionLevel) Satisfies(required PermissionLevel) bool {
	return l >= required
}

// ParseLevel maps a level name ("read", "write", ...) to its PermissionLevel.
func ParseLevel(s string) (PermissionLevel, bool) {
	switch strings.ToLower(s) {
	case "none":
		return LevelNone, true
	case "read":
		return LevelRead, true
	case "write":
		return LevelWrite, true
	case "admin":
		return LevelAdmin, true
	default:
		return LevelNone, false
	}
}

func (l PermissionLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *PermissionLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid permission level: %s", string(data))
		}
		*l = PermissionLevel(n)
		return nil
	}
	level, ok := ParseLevel(s)
	if !ok {
		return fmt.Errorf("unknown permission level %q", s)
	}
	*l = level
	return nil
}

// WildcardResource matches every resource.
const WildcardResource = "*"

// Permission is a single normalized grant. Instances are immutable once
// built; the evaluator rebuilds lists instead of mutating entries in place.
type Permission struct {
	Resource   string                 `json:"resource"`
	Level      PermissionLevel        `json:"level"`
	Conditions map[string]interface{} `json:"conditions,omitempty"`
}

// IsWildcard reports whether the permission applies to every resource.
func (p Permission) IsWildcard() bool {
	return p.Resource == WildcardResource
}

// Matches reports whether the permission covers the requested resource,
// either exactly or via the resource's top-level segment (the substring
// before the first '.').
func (p Permission) Matches(resource string) bool {
	if p.Resource == resource {
		return true
	}
	if idx := strings.Index(resource, "."); idx > 0 {
		return p.Resource == resource[:idx]
	}
	return false
}

// ConditionsMet reports whether every condition key is present in the
// supplied context with an equal value. Empty conditions always pass.
func (p Permission) ConditionsMet(evalCtx map[string]interface{}) bool {
	for key, want := range p.Conditions {
		got, ok := evalCtx[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// RawPermission is a persona permission entry as stored in the directory:
// either a plain string ("resource" or "resource.level") or a structured
// object. Parsing into a Permission happens at the ingestion boundary so
// the evaluator only ever sees structured data.
type RawPermission struct {
	Shorthand  string
	Structured *Permission
}

func (r *RawPermission) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Shorthand = s
		r.Structured = nil
		return nil
	}
	var p Permission
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid permission entry: %s", string(data))
	}
	r.Structured = &p
	return nil
}

func (r RawPermission) MarshalJSON() ([]byte, error) {
	if r.Structured != nil {
		return json.Marshal(r.Structured)
	}
	return json.Marshal(r.Shorthand)
}

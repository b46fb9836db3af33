package helper_util

import "time"

// TimeProp reads a timestamp property from a graph node's property map.
// The driver hands timestamps back either as time.Time or as the RFC3339
// string we stored; anything else resolves to the zero time.
func TimeProp(props map[string]interface{}, key string) time.Time {
	switch v := props[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

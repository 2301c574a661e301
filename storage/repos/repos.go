// Package docrepos implements the core repositories over the document
// store. Field names match the documents the original deployment already
// holds, so the Go services and the hosted data stay interchangeable.
package docrepos

import "time"

func stringAt(data map[string]interface{}, field string) string {
	s, _ := data[field].(string)
	return s
}

func timeAt(data map[string]interface{}, field string) time.Time {
	switch v := data[field].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	}
	return time.Time{}
}

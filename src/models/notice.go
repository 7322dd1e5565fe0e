package models

// SyncNotice is the structured push message the backend broadcasts after a write.
// Clients must not depend on it: any frame on the push channel means "data changed".
type SyncNotice struct {
	Type      string         `json:"type"`
	Resource  string         `json:"resource"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
}

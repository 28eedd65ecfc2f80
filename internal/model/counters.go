package model

// IDCounters is the lastIDs.json document: the last id handed out for each
// collection.
type IDCounters struct {
	LastTaskID int64 `json:"lastTaskId"`
	LastUserID int64 `json:"lastUserId"`
}

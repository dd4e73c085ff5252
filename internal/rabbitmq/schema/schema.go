package schema

import (
	"encoding/json"
	"time"
)

// DueReminder is published by the scheduler engine when a delivery job
// fires. FireTime identifies the occurrence, the consumer drops messages
// whose fire time no longer matches the stored record.
type DueReminder struct {
	ID       int64
	FireTime time.Time
}

func (r *DueReminder) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func (r *DueReminder) Unmarshal(data []byte) error {
	return json.Unmarshal(data, r)
}

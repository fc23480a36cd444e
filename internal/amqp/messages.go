package amqp

import (
	"encoding/json"
	"time"
)

// MirrorSyncMessage asks the worker to mirror one expense to the
// off-site sheet. It carries only the row ID; the worker fetches the
// full expense from the database.
type MirrorSyncMessage struct {
	ExpenseID int64     `json:"expense_id"`
	Attempt   int64     `json:"attempt"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMirrorSyncMessage(expenseID, attempt int64) *MirrorSyncMessage {
	return &MirrorSyncMessage{
		ExpenseID: expenseID,
		Attempt:   attempt,
		Timestamp: time.Now(),
	}
}

func (m *MirrorSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MirrorSyncMessageFromJSON(data []byte) (*MirrorSyncMessage, error) {
	var msg MirrorSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

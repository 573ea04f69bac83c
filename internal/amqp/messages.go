package amqp

import (
	"encoding/json"
	"time"
)

// SessionSyncMessage carries only the ID and version of a locally stored
// session. The worker fetches the full row from the database before
// pushing it to the remote ledger.
type SessionSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSessionSyncMessage(id, version int64) *SessionSyncMessage {
	return &SessionSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *SessionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SessionSyncMessageFromJSON(data []byte) (*SessionSyncMessage, error) {
	var msg SessionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SessionDeleteMessage identifies a remote ledger row to remove. The
// local row is already gone when this is published, so the message
// carries the full identifying tuple instead of a database ID.
type SessionDeleteMessage struct {
	Date         string    `json:"date"`
	Player       string    `json:"player"`
	BuyInCents   int64     `json:"buyin_cents"`
	CashOutCents int64     `json:"cashout_cents"`
	Club         string    `json:"club"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewSessionDeleteMessage(date, player string, buyInCents, cashOutCents int64, club string) *SessionDeleteMessage {
	return &SessionDeleteMessage{
		Date:         date,
		Player:       player,
		BuyInCents:   buyInCents,
		CashOutCents: cashOutCents,
		Club:         club,
		Timestamp:    time.Now(),
	}
}

func (m *SessionDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SessionDeleteMessageFromJSON(data []byte) (*SessionDeleteMessage, error) {
	var msg SessionDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package feed

import (
	"encoding/json"
	"fmt"

	"github.com/lox/setgame/internal/display"
)

// MessageType identifies the payload of a feed message
type MessageType string

const (
	MessageTypeSnapshot    MessageType = "snapshot"
	MessageTypePlaceCard   MessageType = "place_card"
	MessageTypeRemoveCard  MessageType = "remove_card"
	MessageTypePlaceToken  MessageType = "place_token"
	MessageTypeRemoveToken MessageType = "remove_token"
	MessageTypeScore       MessageType = "score"
	MessageTypeFreeze      MessageType = "freeze"
	MessageTypeCountdown   MessageType = "countdown"
	MessageTypeWinners     MessageType = "winners"
)

// Message is the envelope for everything sent to spectators
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage wraps data in an envelope of the given type
func NewMessage(msgType MessageType, data any) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", msgType, err)
	}
	return &Message{Type: msgType, Data: raw}, nil
}

// CardData is sent with place_card and remove_card. Card is omitted on removal.
type CardData struct {
	Slot int  `json:"slot"`
	Card *int `json:"card,omitempty"`
}

// TokenData is sent with place_token and remove_token
type TokenData struct {
	Player int `json:"player"`
	Slot   int `json:"slot"`
}

type ScoreData struct {
	Player int `json:"player"`
	Score  int `json:"score"`
}

type FreezeData struct {
	Player      int   `json:"player"`
	RemainingMS int64 `json:"remaining_ms"`
}

type CountdownData struct {
	RemainingMS int64 `json:"remaining_ms"`
	Warn        bool  `json:"warn"`
}

type WinnersData struct {
	Players []int `json:"players"`
}

// SnapshotData is the full board, sent to each spectator when it connects
type SnapshotData struct {
	Players     []string `json:"players"`
	Cards       []int    `json:"cards"`
	Tokens      [][]int  `json:"tokens"` // players with a token, per slot
	Scores      []int    `json:"scores"`
	CountdownMS int64    `json:"countdown_ms"`
	Warn        bool     `json:"warn"`
	Winners     []int    `json:"winners,omitempty"`
	Over        bool     `json:"over"`
}

func newSnapshotData(names []string, s display.Snapshot) SnapshotData {
	tokens := make([][]int, len(s.Tokens))
	for slot, players := range s.Tokens {
		tokens[slot] = []int{}
		for player, on := range players {
			if on {
				tokens[slot] = append(tokens[slot], player)
			}
		}
	}
	return SnapshotData{
		Players:     names,
		Cards:       s.Cards,
		Tokens:      tokens,
		Scores:      s.Scores,
		CountdownMS: s.Countdown.Milliseconds(),
		Warn:        s.Warn,
		Winners:     s.Winners,
		Over:        s.Over,
	}
}

// Package model defines the core conversation data types.
package model

import "time"

// State is everything a conversation carries from one reply to the next.
type State struct {
	Counter  int            `json:"counter"`
	Memories []string       `json:"memories,omitempty"`
	Cursors  map[string]int `json:"cursors,omitempty"` // "KEYWORD/n" -> next reassembly of transform n
}

// Session is a stored conversation.
type Session struct {
	ID        string     `json:"id"`
	Script    string     `json:"script"`
	Greeting  string     `json:"greeting"`
	State     State      `json:"state"`
	Turns     int        `json:"turns"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Turn is one exchange: what the user typed and what came back.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Input     string    `json:"input"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"created_at"`
}

// Transcript is a session together with all of its turns, the unit of
// export and import.
type Transcript struct {
	Session Session `json:"session"`
	Turns   []Turn  `json:"turns"`
}

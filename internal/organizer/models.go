// Package organizer holds the subject's personal lists: tasks, notes,
// shopping items, expenses and the saved weather location.
//
// Item ids are positional: 1-based, dense, and re-assigned on every deletion.
// Deleting item k renumbers all later items down by one. They are not durable
// handles; clients must re-fetch a list after any deletion before referencing
// an id again.
package organizer

import "time"

type Task struct {
	ID      int       `json:"id"`
	Text    string    `json:"text"`
	Done    bool      `json:"done"`
	Created time.Time `json:"created"`
}

type Note struct {
	ID      int       `json:"id"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

type ShoppingItem struct {
	ID     int       `json:"id"`
	Item   string    `json:"item"`
	Bought bool      `json:"bought"`
	Added  time.Time `json:"added"`
}

type Expense struct {
	ID          int       `json:"id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
}

// Package models defines client-side data models used by the NoteHub CLI.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UserID identifies a user. The API has sent both numeric and string ids
// over time, so both are accepted on input; it is always emitted as a string.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid user id %s: %w", b, err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("invalid user id %s: %w", b, err)
	}
	*id = UserID(n.String())
	return nil
}

// Favorites lists ids of items a user marked as favourite.
type Favorites struct {
	Notes    []int64 `json:"notes"`
	Exams    []int64 `json:"exams"`
	Articles []int64 `json:"articles"`
}

// User is a snapshot of the authenticated identity.
//
// A User value is replaced wholesale whenever the server sends a newer one;
// callers must not mutate a User they did not create.
type User struct {
	ID         UserID     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Avatar     string     `json:"avatar,omitempty"`
	Bio        string     `json:"bio,omitempty"`
	University string     `json:"university,omitempty"`
	Department string     `json:"department,omitempty"`
	JoinDate   string     `json:"joinDate,omitempty"`
	Favorites  *Favorites `json:"favorites,omitempty"`
	Followers  int        `json:"followers"`
	Following  int        `json:"following"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Favorites != nil {
		f := Favorites{
			Notes:    append([]int64(nil), u.Favorites.Notes...),
			Exams:    append([]int64(nil), u.Favorites.Exams...),
			Articles: append([]int64(nil), u.Favorites.Articles...),
		}
		c.Favorites = &f
	}
	return &c
}

// DisplayName is what the CLI prompt shows for u.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

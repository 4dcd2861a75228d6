package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// KV is local device storage: string values under string keys, scoped to one device profile.
//
// Implementations are read and written synchronously; concurrent writers elsewhere win by writing last.
type KV interface {
	// Get returns ok=false for a missing key.
	Get(key string) (value string, ok bool, err error)

	// Set creates or replaces the value at key.
	Set(key, value string) error

	// Remove deletes key. Missing keys are not an error.
	Remove(key string) error
}

// Status is the reading status of a [UserBook].
type Status string

const (
	StatusWantToRead Status = "WANT_TO_READ"
	StatusReading    Status = "READING"
	StatusRead       Status = "READ"
	StatusDropped    Status = "DROPPED"
)

// Book is a catalog entry.
type Book struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Annotation  string     `json:"annotation,omitempty"`
	PageCount   int        `json:"pageCount,omitempty"`
	ISBN        string     `json:"isbn,omitempty"`
	CoverURL    string     `json:"coverUrl,omitempty"`
	PublishedAt *Timestamp `json:"publishedDate,omitempty"`
	AddedAt     *Timestamp `json:"addedAt,omitempty"`
}

// UserBook is the caller's shelf record for a book.
type UserBook struct {
	ID          int64      `json:"id"`
	Book        *Book      `json:"book,omitempty"`
	Progress    int        `json:"progress"`
	CurrentPage int        `json:"currentPage"`
	Status      Status     `json:"status"`
	Rating      int        `json:"rating,omitempty"`
	AddedAt     *Timestamp `json:"addedAt,omitempty"`
	UpdatedAt   *Timestamp `json:"updatedAt,omitempty"`
}

// RecordID returns the identifier used for progress updates.
func (u *UserBook) RecordID() string {
	return fmt.Sprintf("%d", u.ID)
}

// DetailKind discriminates [BookDetail] records.
type DetailKind int

const (
	CatalogOnly DetailKind = iota // the book is not on the caller's shelf
	Shelved                       // the caller has a UserBook for it
)

func (k DetailKind) String() string {
	switch k {
	case Shelved:
		return "shelved"
	default:
		return "catalog"
	}
}

// BookDetail is a catalog book together with the caller's shelf record, if any.
type BookDetail struct {
	Book     Book      `json:"book"`
	UserBook *UserBook `json:"userBook"`
}

// Kind reports whether the detail carries a shelf record.
func (d *BookDetail) Kind() DetailKind {
	if d.UserBook != nil {
		return Shelved
	}
	return CatalogOnly
}

// ShelfPage is one page of the caller's shelf listing.
type ShelfPage struct {
	Content       []UserBook `json:"content"`
	TotalElements int        `json:"totalElements"`
	TotalPages    int        `json:"totalPages"`
	Number        int        `json:"number"`
}

// BookContent is the full text of a book edition.
type BookContent struct {
	Content string `json:"content"`
}

// User is the authenticated account as returned by /users/me.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Roles    []Role `json:"roles,omitempty"`
}

// Role is a granted authority. The API sends either a bare name or an object with a name.
type Role string

// UnmarshalJSON accepts "ROLE_USER" and {"name": "ROLE_USER"}.
func (r *Role) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*r = Role(name)
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid role: %s", data)
	}
	*r = Role(obj.Name)
	return nil
}

// HasRole reports whether the user holds role, ignoring a "ROLE_" prefix on either side.
func (u *User) HasRole(role string) bool {
	want := strings.TrimPrefix(strings.ToUpper(role), "ROLE_")
	for _, r := range u.Roles {
		if strings.TrimPrefix(strings.ToUpper(string(r)), "ROLE_") == want {
			return true
		}
	}
	return false
}

// ProgressUpdate is the body of a reading position update.
type ProgressUpdate struct {
	CurrentPage int `json:"currentPage"` // 1-based page number
	TotalPages  int `json:"totalPages"`
	Progress    int `json:"progress"` // percent, 0..100
}

// ReadingPosition is the reader's place in a paginated book.
type ReadingPosition struct {
	CurrentPageIndex int // 0-based
	PageCount        int
	ProgressPercent  int
}

// Timestamp decodes the API's ISO-8601 local date-times, which carry no zone offset.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON accepts RFC 3339 and zone-less local date-times.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON writes RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

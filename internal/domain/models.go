package domain

import "time"

// Group is the trust level of a user. Groups are ordered: guest < trusted < admin.
type Group string

const (
	GroupGuest   Group = "guest"
	GroupTrusted Group = "trusted"
	GroupAdmin   Group = "admin"
)

var groupRank = map[Group]int{
	GroupGuest:   0,
	GroupTrusted: 1,
	GroupAdmin:   2,
}

// AtLeast reports whether g carries at least the trust of other.
func (g Group) AtLeast(other Group) bool {
	return groupRank[g] >= groupRank[other]
}

// Valid reports whether g is a known group.
func (g Group) Valid() bool {
	_, ok := groupRank[g]
	return ok
}

// User is a requesting identity. Username is the stable primary key.
type User struct {
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Group        Group     `json:"group" db:"group_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Book is a search hit from the external catalog. Transient; nothing is
// persisted until the book is requested.
type Book struct {
	ASIN           string      `json:"asin"`
	Title          string      `json:"title"`
	Subtitle       string      `json:"subtitle,omitempty"`
	Authors        StringSlice `json:"authors"`
	Narrators      StringSlice `json:"narrators"`
	CoverURL       string      `json:"cover_url,omitempty"`
	ReleaseDate    string      `json:"release_date,omitempty"`
	RuntimeMinutes int         `json:"runtime_minutes,omitempty"`

	// AlreadyRequested is set by the dedup filter, per requesting user.
	AlreadyRequested bool `json:"already_requested"`
}

// BookRequest is a persisted request for a catalog book. ID is generated at
// creation and independent of the ASIN so the same book can be re-requested
// after deletion. At most one row exists per (asin, username).
type BookRequest struct {
	ID         string      `json:"id" db:"id"`
	ASIN       string      `json:"asin" db:"asin"`
	Username   string      `json:"username" db:"username"`
	Title      string      `json:"title" db:"title"`
	Subtitle   string      `json:"subtitle,omitempty" db:"subtitle"`
	Authors    StringSlice `json:"authors" db:"authors"`
	Narrators  StringSlice `json:"narrators" db:"narrators"`
	CoverURL   string      `json:"cover_url,omitempty" db:"cover_url"`
	Downloaded bool        `json:"downloaded" db:"downloaded"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}

// ManualBookRequest is a request created without a catalog lookup.
type ManualBookRequest struct {
	ID             string      `json:"id" db:"id"`
	Username       string      `json:"username" db:"username"`
	Title          string      `json:"title" db:"title"`
	Subtitle       string      `json:"subtitle,omitempty" db:"subtitle"`
	Authors        StringSlice `json:"authors" db:"authors"`
	Narrators      StringSlice `json:"narrators" db:"narrators"`
	PublishDate    string      `json:"publish_date,omitempty" db:"publish_date"`
	AdditionalInfo string      `json:"additional_info,omitempty" db:"additional_info"`
	Downloaded     bool        `json:"downloaded" db:"downloaded"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// EventKind enumerates the events subscribers can register for.
type EventKind string

const (
	EventOnNewRequest    EventKind = "on_new_request"
	EventOnFailedRequest EventKind = "on_failed_request"
)

// Notification is a subscription record: which event to deliver, and where.
// Created and deleted by admins; read-only to the request pipeline.
type Notification struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Event         EventKind `json:"event" db:"event"`
	URL           string    `json:"url" db:"url"`
	TitleTemplate string    `json:"title_template" db:"title_template"`
	BodyTemplate  string    `json:"body_template" db:"body_template"`
	Headers       StringMap `json:"headers" db:"headers"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// RequestSnapshot is the plain data handed to background jobs. It is a
// detached copy: background delivery runs after the originating request's
// store handle is gone.
type RequestSnapshot struct {
	Event     EventKind   `json:"event"`
	ASIN      string      `json:"asin,omitempty"`
	Title     string      `json:"title"`
	Authors   StringSlice `json:"authors,omitempty"`
	Narrators StringSlice `json:"narrators,omitempty"`
	Requester string      `json:"requester"`
	Manual    bool        `json:"manual"`
}

type JobType string

const (
	JobTypeDownload JobType = "download"
	JobTypeNotify   JobType = "notify"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job is a unit of background work.
type Job struct {
	ID        string    `json:"id" db:"id"`
	Type      JobType   `json:"type" db:"type"`
	Status    JobStatus `json:"status" db:"status"`
	SourceID  string    `json:"source_id" db:"source_id"`
	Payload   []byte    `json:"-" db:"payload"`
	Error     *string   `json:"error,omitempty" db:"error"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

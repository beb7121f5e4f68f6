package model

import (
	"strings"
	"time"
)

// UnitKind distinguishes submissions from top-level comments.
type UnitKind string

const (
	KindSubmission UnitKind = "submission"
	KindComment    UnitKind = "comment"
)

// ParseKind maps a raw kind label to a UnitKind. Missing or unrecognized
// labels are inferred: Reddit fullname prefixes ("t3_" submission, "t1_"
// comment) win, otherwise a unit carrying a title is a submission.
func ParseKind(raw, id, title string) UnitKind {
	switch k := UnitKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindSubmission, KindComment:
		return k
	}
	switch {
	case strings.HasPrefix(id, "t3_"):
		return KindSubmission
	case strings.HasPrefix(id, "t1_"):
		return KindComment
	case strings.TrimSpace(title) != "":
		return KindSubmission
	}
	return KindComment
}

// TextUnit is one discussion item: a submission (title+body) or a top-level comment.
type TextUnit struct {
	ID        string    `json:"id"`
	Subreddit string    `json:"subreddit"`
	Kind      UnitKind  `json:"kind,omitempty"`
	Title     string    `json:"title"` // submission title; for comments, the parent submission's
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Permalink string    `json:"permalink"`
}

// Candidate is an unvalidated ticker-shaped token pulled from a TextUnit.
type Candidate struct {
	Symbol    string
	Dollar    bool // token carried a "$" marker
	SourceID  string
	Timestamp time.Time
}

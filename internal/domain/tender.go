// Package domain provides domain models used across the application.
package domain

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Priority classifies how urgently a tender should be reviewed.
type Priority string

const (
	// PriorityHigh marks tenders that score at or above the high cutoff.
	PriorityHigh Priority = "high"
	// PriorityMedium marks tenders that score at or above the medium cutoff.
	PriorityMedium Priority = "medium"
	// PriorityLow marks everything else that passed relevance filtering.
	PriorityLow Priority = "low"
)

// MaxMatchingCourses caps the matching_courses list on a tender.
const MaxMatchingCourses = 5

// Tender represents one procurement opportunity extracted from a portal.
// (Portal, TenderID) is the identity key; ContentHash is the sole signal
// for whether a persisted row needs updating.
type Tender struct {
	Portal          string     `db:"portal"           json:"portal"`
	TenderID        string     `db:"tender_id"        json:"tender_id"`
	Title           string     `db:"title"            json:"title"`
	Organization    string     `db:"organization"     json:"organization"`
	Value           float64    `db:"value"            json:"value"`
	ClosingDate     *time.Time `db:"closing_date"     json:"closing_date,omitempty"`
	PostedDate      *time.Time `db:"posted_date"      json:"posted_date,omitempty"`
	Description     string     `db:"description"      json:"description"`
	Location        string     `db:"location"         json:"location"`
	Categories      StringList `db:"categories"       json:"categories"`
	Keywords        StringList `db:"keywords"         json:"keywords"`
	MatchingCourses StringList `db:"matching_courses" json:"matching_courses"`
	Priority        Priority   `db:"priority"         json:"priority"`
	URL             string     `db:"url"              json:"url"`
	DocumentsURL    string     `db:"documents_url"    json:"documents_url,omitempty"`
	ContentHash     string     `db:"content_hash"     json:"content_hash"`
	IsActive        bool       `db:"is_active"        json:"is_active"`
	LastUpdated     time.Time  `db:"last_updated"     json:"last_updated"`
}

// Key identifies a tender within the store.
type Key struct {
	Portal   string
	TenderID string
}

// Key returns the tender's identity key.
func (t *Tender) Key() Key {
	return Key{Portal: t.Portal, TenderID: t.TenderID}
}

// hashPayload is the canonical serialization used for change detection.
// Set-valued fields are sorted so the digest is order-independent, and
// bookkeeping fields (hash, active flag, timestamps the store owns) are
// excluded.
type hashPayload struct {
	Portal          string   `json:"portal"`
	TenderID        string   `json:"tender_id"`
	Title           string   `json:"title"`
	Organization    string   `json:"organization"`
	Value           float64  `json:"value"`
	ClosingDate     string   `json:"closing_date"`
	PostedDate      string   `json:"posted_date"`
	Description     string   `json:"description"`
	Location        string   `json:"location"`
	Categories      []string `json:"categories"`
	Keywords        []string `json:"keywords"`
	MatchingCourses []string `json:"matching_courses"`
	Priority        string   `json:"priority"`
	URL             string   `json:"url"`
	DocumentsURL    string   `json:"documents_url"`
}

// ComputeContentHash returns a deterministic digest over the tender's
// mutable fields. Two tenders with the same content produce the same
// hash regardless of the order of their category or keyword sets.
func (t *Tender) ComputeContentHash() string {
	payload := hashPayload{
		Portal:          t.Portal,
		TenderID:        t.TenderID,
		Title:           t.Title,
		Organization:    t.Organization,
		Value:           t.Value,
		ClosingDate:     formatHashTime(t.ClosingDate),
		PostedDate:      formatHashTime(t.PostedDate),
		Description:     t.Description,
		Location:        t.Location,
		Categories:      sortedCopy(t.Categories),
		Keywords:        sortedCopy(t.Keywords),
		MatchingCourses: append([]string(nil), t.MatchingCourses...),
		Priority:        string(t.Priority),
		URL:             t.URL,
		DocumentsURL:    t.DocumentsURL,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Marshalling a struct of strings and floats cannot fail.
		return ""
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// SynthesizeTenderID derives a stable identifier for sources that do not
// publish one. The same (title, url) pair always yields the same ID, which
// change detection depends on across scans.
func SynthesizeTenderID(title, url string) string {
	sum := md5.Sum([]byte(title + "\x00" + url))
	return hex.EncodeToString(sum[:])[:8]
}

func formatHashTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

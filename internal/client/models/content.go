// Package models defines the content records exchanged with the Caminho
// backend.
package models

import "time"

// ContentType classifies a content item.
type ContentType string

const (
	ContentTypeDevocional ContentType = "Devocional"
	ContentTypeLive       ContentType = "Live"
	ContentTypePodcast    ContentType = "Podcast"
	ContentTypeEstudo     ContentType = "Estudo"
	ContentTypeMentoria   ContentType = "Mentoria"
)

// ContentItem is a persisted content record as returned by the backend.
type ContentItem struct {
	ID                  string      `json:"id"`
	Title               string      `json:"title"`
	Subtitle            string      `json:"subtitle"`
	Description         string      `json:"description"`
	Type                ContentType `json:"type"`
	ImageURL            string      `json:"imageUrl"`
	AudioURL            string      `json:"audioUrl"`
	Duration            int         `json:"duration"` // seconds
	ActionURL           string      `json:"actionUrl"`
	DownloadResourceURL string      `json:"downloadResourceUrl"`
	ContentBody         string      `json:"contentBody"`
	CreatedAt           time.Time   `json:"createdAt"`
}

// ContentFields is the writable portion of a ContentItem. ImageURL and
// AudioURL must already be durable references; staged local payloads never
// appear here.
type ContentFields struct {
	Title               string      `json:"title"`
	Subtitle            string      `json:"subtitle"`
	Description         string      `json:"description"`
	Type                ContentType `json:"type"`
	ImageURL            string      `json:"imageUrl"`
	AudioURL            string      `json:"audioUrl"`
	Duration            int         `json:"duration"`
	ActionURL           string      `json:"actionUrl"`
	DownloadResourceURL string      `json:"downloadResourceUrl"`
	ContentBody         string      `json:"contentBody"`
}

// Package chat contains core concepts of the chat store.
// This file defines comments, attachments and shared products.
// Comments are immutable once appended to a dataset.
package chat

type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentVideo AttachmentType = "video"
	AttachmentPDF   AttachmentType = "pdf"
	AttachmentFile  AttachmentType = "file"
)

// Comment types besides the attachment ones.
const (
	CommentText    = "text"
	CommentProduct = "product"
)

type Attachment struct {
	ID           string         `json:"id" validate:"required"`
	Type         AttachmentType `json:"type" validate:"oneof=image video pdf file"`
	Filename     string         `json:"filename" validate:"required"`
	URL          string         `json:"url" validate:"required"`
	Size         int64          `json:"size" validate:"gte=0"`
	MimeType     string         `json:"mime_type" validate:"required"`
	ThumbnailURL *string        `json:"thumbnail_url,omitempty"`
	// Duration in seconds, videos only.
	Duration *float64 `json:"duration,omitempty" validate:"omitempty,gte=0"`
	// PageCount is set for pdf documents only.
	PageCount *int `json:"page_count,omitempty" validate:"omitempty,gte=0"`
}

// Comment is one message of a room history.
type Comment struct {
	ID          int64        `json:"id"`
	Type        string       `json:"type" validate:"required"`
	Message     string       `json:"message"`
	Sender      string       `json:"sender" validate:"required"`
	Timestamp   string       `json:"timestamp" validate:"required"`
	Attachments []Attachment `json:"attachments" validate:"dive"`
}

// ProductMessage is the transient input used when a product is shared.
type ProductMessage struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

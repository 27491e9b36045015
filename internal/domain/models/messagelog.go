// internal/domain/models/messagelog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outcome of one delivery attempt. Stored values are Spanish, matching
// the rest of the operator-facing vocabulary.
const (
	MessageStatusSuccessful = "exitoso"
	MessageStatusError      = "error"
	MessageStatusCancelled  = "cancelado"
)

// Message payload kinds, derived from the attached media's MIME type.
const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeVideo    = "video"
	MessageTypeAudio    = "audio"
	MessageTypeDocument = "document"
)

// MessageContent is the payload sent for one contact: personalized text
// plus optional media.
type MessageContent struct {
	Text     string `bson:"text" json:"text"`
	MediaURL string `bson:"media_url,omitempty" json:"mediaUrl,omitempty"`
	MimeType string `bson:"mime_type,omitempty" json:"mimeType,omitempty"`
	FileName string `bson:"file_name,omitempty" json:"fileName,omitempty"`
}

// MessageLog is the append-only record of one delivery attempt. One
// document is written per contact per batch, whatever the outcome; logs
// are never updated after insert.
type MessageLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BatchID      string             `bson:"batch_id" json:"batchId"`
	ToNumber     string             `bson:"to_number" json:"toNumber"`
	Phone        string             `bson:"phone" json:"phone"`
	FirstName    string             `bson:"first_name" json:"firstName"`
	LastName     string             `bson:"last_name" json:"lastName"`
	MessageType  string             `bson:"message_type" json:"messageType"`
	Content      MessageContent     `bson:"content" json:"content"`
	Status       string             `bson:"status" json:"status"`
	ErrorMessage string             `bson:"error_message,omitempty" json:"errorMessage,omitempty"`
	DelaySeconds int                `bson:"delay_seconds" json:"delaySeconds"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}

// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactSubmission is one visitor contact-form submission. FormData keys
// follow whatever field names the form was configured with at submit time,
// so the shape varies across submissions as the form evolves.
type ContactSubmission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FormData    map[string]string  `bson:"form_data" json:"formData"`
	SubmittedAt time.Time          `bson:"submitted_at" json:"submittedAt"`
	Read        bool               `bson:"read" json:"read"`
}

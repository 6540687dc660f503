package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BoundingBox locates a detected face inside the analyzed image.
type BoundingBox struct {
	X      int `json:"x" bson:"x"`
	Y      int `json:"y" bson:"y"`
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
}

// Detection is a single classification result from the inference service.
type Detection struct {
	Emotion     string      `json:"emotion" bson:"emotion"`
	Confidence  float64     `json:"confidence" bson:"confidence"`
	BoundingBox BoundingBox `json:"bounding_box" bson:"bounding_box"`
}

// ImageRecord links an uploaded object to its detected emotion. Emotion and
// Confidence are nil until inference returns at least one result; a record
// without them is still valid.
type ImageRecord struct {
	ID         primitive.ObjectID `json:"id"          bson:"_id,omitempty"`
	UserID     string             `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Filename   string             `json:"filename"    bson:"filename"`
	URL        string             `json:"url"         bson:"url"`
	StorageKey string             `json:"public_id"   bson:"public_id"`
	MimeType   string             `json:"mimetype"    bson:"mimetype"`
	Size       int64              `json:"size"        bson:"size"`
	Emotion    *string            `json:"emotion,omitempty"    bson:"emotion,omitempty"`
	Confidence *float64           `json:"confidence,omitempty" bson:"confidence,omitempty"`
	CreatedAt  time.Time          `json:"created_at"  bson:"created_at"`
}

// UploadResponse is returned by POST /api/images. Emotion and Confidence
// always carry values; "Unknown" stands in when inference produced nothing.
type UploadResponse struct {
	Message    string      `json:"message"`
	Image      ImageRecord `json:"image"`
	Emotion    string      `json:"emotion"`
	Confidence any         `json:"emotionConfidence"`
}

package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NoteType is the closed set of note variants.
type NoteType string

const (
	TypeText  NoteType = "text"
	TypeFile  NoteType = "file"
	TypeAudio NoteType = "audio"
)

func (t NoteType) Valid() bool {
	switch t {
	case TypeText, TypeFile, TypeAudio:
		return true
	}
	return false
}

// Transcription status values persisted alongside audio notes, so downstream
// code never has to guess whether the transcription text is a real transcript
// or a failure narrative.
const (
	TranscriptionSucceeded = "succeeded"
	TranscriptionFailed    = "failed"
)

// Note is a user-owned record of text, file-derived, or audio-derived
// content. FileRef is a path-free stored filename under the upload root;
// it is set only for file and audio notes.
type Note struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Title               string             `bson:"title"`
	Content             string             `bson:"content"`
	Type                NoteType           `bson:"note_type"`
	FileRef             string             `bson:"file_ref,omitempty"`
	Transcription       string             `bson:"transcription,omitempty"`
	TranscriptionStatus string             `bson:"transcription_status,omitempty"`
	Category            string             `bson:"category"`
	Tags                string             `bson:"tags"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
	UserID              primitive.ObjectID `bson:"user_id"`
	IsShared            bool               `bson:"is_shared"`
	SharedWith          string             `bson:"shared_with,omitempty"`
}

// CreateInput is the input for creating a note. Content, FileRef and
// transcription fields are filled by the web layer before insert.
type CreateInput struct {
	Title               string
	Content             string
	Type                NoteType
	Category            string
	Tags                string
	FileRef             string
	Transcription       string
	TranscriptionStatus string
	UserID              primitive.ObjectID
}

// UpdateInput carries the owner-editable fields.
type UpdateInput struct {
	Title    string
	Content  string
	Category string
	Tags     string
}

// TypeCounts aggregates how many notes of each type a user owns.
type TypeCounts struct {
	Text  int64
	File  int64
	Audio int64
}

func (c TypeCounts) Total() int64 { return c.Text + c.File + c.Audio }

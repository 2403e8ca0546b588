package notes

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultCategory = "General"

// Service enforces ownership and validation on top of a Repository.
type Service struct {
	repo Repository
	md   goldmark.Markdown
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		md:   goldmark.New(),
	}
}

// Create validates and persists a new note. Category defaults to "General".
func (s *Service) Create(ctx context.Context, input CreateInput) (*Note, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("invalid note type %q", input.Type)
	}
	if input.UserID.IsZero() {
		return nil, fmt.Errorf("owner is required")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = DefaultCategory
	}

	note := &Note{
		Title:               input.Title,
		Content:             input.Content,
		Type:                input.Type,
		FileRef:             input.FileRef,
		Transcription:       input.Transcription,
		TranscriptionStatus: input.TranscriptionStatus,
		Category:            category,
		Tags:                input.Tags,
		UserID:              input.UserID,
	}

	if err := s.repo.Insert(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// GetOwned retrieves a note and verifies the caller owns it.
func (s *Service) GetOwned(ctx context.Context, userID primitive.ObjectID, id string) (*Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	note, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, ErrForbidden
	}
	return note, nil
}

func (s *Service) ListByOwner(ctx context.Context, userID primitive.ObjectID) ([]*Note, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Update applies the owner-editable fields and refreshes updated_at.
func (s *Service) Update(ctx context.Context, userID primitive.ObjectID, id string, input UpdateInput) (*Note, error) {
	note, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	note.Title = input.Title
	note.Content = input.Content
	note.Category = strings.TrimSpace(input.Category)
	if note.Category == "" {
		note.Category = DefaultCategory
	}
	note.Tags = input.Tags
	note.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes an owned note and returns it so the caller can clean up
// any stored file.
func (s *Service) Delete(ctx context.Context, userID primitive.ObjectID, id string) (*Note, error) {
	note, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, note.ID); err != nil {
		return nil, err
	}
	return note, nil
}

// Share marks an owned note as shared with a free-text recipient list.
// The list carries no access-control semantics.
func (s *Service) Share(ctx context.Context, userID primitive.ObjectID, id, sharedWith string) (*Note, error) {
	note, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	note.IsShared = true
	note.SharedWith = sharedWith
	note.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Search returns the owner's notes matching query as a case-insensitive
// substring, optionally restricted to an exact category.
func (s *Service) Search(ctx context.Context, userID primitive.ObjectID, query, category string) ([]*Note, error) {
	return s.repo.Search(ctx, userID, query, category)
}

func (s *Service) DistinctCategories(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return s.repo.DistinctCategories(ctx, userID)
}

func (s *Service) CountByType(ctx context.Context, userID primitive.ObjectID) (TypeCounts, error) {
	return s.repo.CountByType(ctx, userID)
}

// RenderMarkdown converts markdown content to HTML for display.
func (s *Service) RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return content // Return raw content on error
	}
	return buf.String()
}

package notes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testService() *Service {
	return NewService(NewMemoryRepo())
}

func mustCreate(t *testing.T, svc *Service, input CreateInput) *Note {
	t.Helper()
	n, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	return n
}

func TestCreate_Defaults(t *testing.T) {
	svc := testService()
	owner := primitive.NewObjectID()

	n := mustCreate(t, svc, CreateInput{Title: "T", Content: "C", Type: TypeText, UserID: owner})

	require.Equal(t, DefaultCategory, n.Category)
	require.Equal(t, TypeText, n.Type)
	require.False(t, n.CreatedAt.IsZero())
	require.False(t, n.UpdatedAt.Before(n.CreatedAt))

	listed, err := svc.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "T", listed[0].Title)
	require.Equal(t, "C", listed[0].Content)
}

func TestCreate_RejectsInvalidType(t *testing.T) {
	svc := testService()

	_, err := svc.Create(context.Background(), CreateInput{
		Title:  "T",
		Type:   NoteType("video"),
		UserID: primitive.NewObjectID(),
	})
	require.Error(t, err)
}

func TestCreate_RequiresOwnerAndTitle(t *testing.T) {
	svc := testService()

	_, err := svc.Create(context.Background(), CreateInput{Title: "T", Type: TypeText})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateInput{Type: TypeText, UserID: primitive.NewObjectID()})
	require.Error(t, err)
}

func TestOwnership(t *testing.T) {
	svc := testService()
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	n := mustCreate(t, svc, CreateInput{Title: "mine", Type: TypeText, UserID: owner})
	id := n.ID.Hex()

	_, err := svc.GetOwned(context.Background(), other, id)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(context.Background(), other, id, UpdateInput{Title: "stolen"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Delete(context.Background(), other, id)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Share(context.Background(), other, id, "bob")
	require.ErrorIs(t, err, ErrForbidden)

	// Owner still sees the untouched note.
	got, err := svc.GetOwned(context.Background(), owner, id)
	require.NoError(t, err)
	require.Equal(t, "mine", got.Title)
}

func TestUpdate_RefreshesTimestamp(t *testing.T) {
	svc := testService()
	owner := primitive.NewObjectID()

	n := mustCreate(t, svc, CreateInput{Title: "T", Type: TypeText, UserID: owner})

	updated, err := svc.Update(context.Background(), owner, n.ID.Hex(), UpdateInput{
		Title:    "T2",
		Content:  "C2",
		Category: "Work",
		Tags:     "a,b",
	})
	require.NoError(t, err)
	require.Equal(t, "T2", updated.Title)
	require.Equal(t, "Work", updated.Category)
	require.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	require.True(t, updated.UpdatedAt.After(n.UpdatedAt) || updated.UpdatedAt.Equal(n.UpdatedAt))
}

func TestDelete_SecondDeleteNotFound(t *testing.T) {
	svc := testService()
	owner := primitive.NewObjectID()

	n := mustCreate(t, svc, CreateInput{Title: "T", Type: TypeText, UserID: owner})

	_, err := svc.Delete(context.Background(), owner, n.ID.Hex())
	require.NoError(t, err)

	_, err = svc.Delete(context.Background(), owner, n.ID.Hex())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetOwned_MalformedID(t *testing.T) {
	svc := testService()

	_, err := svc.GetOwned(context.Background(), primitive.NewObjectID(), "zzz")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	svc := testService()
	owner := primitive.NewObjectID()

	mustCreate(t, svc, CreateInput{Title: "greeting", Content: "say hello world", Type: TypeText, UserID: owner})
	mustCreate(t, svc, CreateInput{Title: "other", Content: "nothing here", Type: TypeText, UserID: owner})

	for _, q := range []string{"hello", "HELLO", "Hello"} {
		got, err := svc.Search(context.Background(), owner, q, "")
		require.NoError(t, err)
		require.Len(t, got, 1, "query %q", q)
		require.Equal(t, "greeting", got[0].Title)
	}
}

func TestSearch_MatchesTagsAndTranscription(t *testing.T) {
	svc := testService()
	owner := primitive.NewObjectID()

	mustCreate(t, svc, CreateInput{
		Title: "memo", Type: TypeAudio, UserID: owner,
		Transcription: "remember the milk", Tags: "errands,shopping",
	})

	got, err := svc.Search(context.Background(), owner, "MILK", "")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = svc.Search(context.Background(), owner, "errands", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSearch_CategoryFilter(t *testing.T) {
	svc := testService()
	owner := primitive.NewObjectID()

	mustCreate(t, svc, CreateInput{Title: "a", Content: "hello", Category: "Work", Type: TypeText, UserID: owner})
	mustCreate(t, svc, CreateInput{Title: "b", Content: "hello", Category: "Home", Type: TypeText, UserID: owner})

	got, err := svc.Search(context.Background(), owner, "hello", "Work")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].Title)

	// Empty query returns everything in the category.
	got, err = svc.Search(context.Background(), owner, "", "Home")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "b", got[0].Title)
}

func TestSearch_ScopedToOwner(t *testing.T) {
	svc := testService()
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	mustCreate(t, svc, CreateInput{Title: "mine", Content: "hello", Type: TypeText, UserID: owner})
	mustCreate(t, svc, CreateInput{Title: "theirs", Content: "hello", Type: TypeText, UserID: other})

	got, err := svc.Search(context.Background(), owner, "hello", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "mine", got[0].Title)
}

func TestDistinctCategoriesAndCounts(t *testing.T) {
	svc := testService()
	owner := primitive.NewObjectID()

	mustCreate(t, svc, CreateInput{Title: "a", Category: "Work", Type: TypeText, UserID: owner})
	mustCreate(t, svc, CreateInput{Title: "b", Category: "Work", Type: TypeFile, UserID: owner})
	mustCreate(t, svc, CreateInput{Title: "c", Type: TypeAudio, UserID: owner})

	categories, err := svc.DistinctCategories(context.Background(), owner)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Work", DefaultCategory}, categories)

	counts, err := svc.CountByType(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts.Text)
	require.Equal(t, int64(1), counts.File)
	require.Equal(t, int64(1), counts.Audio)
	require.Equal(t, int64(3), counts.Total())
}

func TestShare(t *testing.T) {
	svc := testService()
	owner := primitive.NewObjectID()

	n := mustCreate(t, svc, CreateInput{Title: "T", Type: TypeText, UserID: owner})

	shared, err := svc.Share(context.Background(), owner, n.ID.Hex(), "bob, carol")
	require.NoError(t, err)
	require.True(t, shared.IsShared)
	require.Equal(t, "bob, carol", shared.SharedWith)
}

func TestRenderMarkdown(t *testing.T) {
	svc := testService()

	html := svc.RenderMarkdown("# Heading\n\nsome *text*")
	require.Contains(t, html, "<h1>")
	require.Contains(t, html, "<em>text</em>")
}

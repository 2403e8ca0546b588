// Package web is the request orchestrator: it composes the credential
// store, note service, upload store, transcriber, and export renderer into
// the session-authenticated HTML surface.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gorilla/sessions"

	"auranotes/internal/export"
	"auranotes/internal/notes"
	"auranotes/internal/transcribe"
	"auranotes/internal/uploads"
	"auranotes/internal/users"
	"auranotes/views"
	"auranotes/views/models"
)

// Transcriber converts an audio file into a transcription result. Satisfied
// by *transcribe.Transcriber; tests substitute fakes.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) transcribe.Result
}

type Handler struct {
	users       *users.Service
	notes       *notes.Service
	store       *uploads.Store
	transcriber Transcriber
	sessions    sessions.Store
	maxUpload   int64
	log         *slog.Logger
}

func NewHandler(
	userSvc *users.Service,
	noteSvc *notes.Service,
	store *uploads.Store,
	transcriber Transcriber,
	sessionStore sessions.Store,
	maxUpload int64,
	log *slog.Logger,
) *Handler {
	return &Handler{
		users:       userSvc,
		notes:       noteSvc,
		store:       store,
		transcriber: transcriber,
		sessions:    sessionStore,
		maxUpload:   maxUpload,
		log:         log,
	}
}

// NewSessionStore builds the cookie store used for login sessions and
// flash messages.
func NewSessionStore(secret string) sessions.Store {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
	}
	return store
}

// Register wires every route onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /", h.Index)
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /signup", h.SignupPage)
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("GET /logout", h.Logout)

	mux.HandleFunc("GET /dashboard", h.requireUser(h.Dashboard))
	mux.HandleFunc("POST /create_note", h.requireUser(h.CreateNote))
	mux.HandleFunc("GET /edit_note/{id}", h.requireUser(h.EditNotePage))
	mux.HandleFunc("POST /edit_note/{id}", h.requireUser(h.EditNote))
	mux.HandleFunc("GET /delete_note/{id}", h.requireUser(h.DeleteNote))
	mux.HandleFunc("GET /search", h.requireUser(h.SearchPage))
	mux.HandleFunc("POST /share_note/{id}", h.requireUser(h.ShareNote))
	mux.HandleFunc("GET /export_note/{id}", h.requireUser(h.ExportNote))
	mux.HandleFunc("GET /uploads/{filename}", h.requireUser(h.ServeUpload))
}

// --- Auth handlers ---

// Index handles GET /: landing page, or the dashboard for signed-in users.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := h.currentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	views.Index(models.LandingData{Flashes: h.popFlashes(w, r)}).Render(r.Context(), w)
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	views.Login(models.AuthData{Flashes: h.popFlashes(w, r)}).Render(r.Context(), w)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if errors.Is(err, users.ErrInvalidCredentials) {
		h.flash(w, r, "Invalid username or password")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.log.Error("login failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.signIn(w, r, u)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	views.Signup(models.AuthData{Flashes: h.popFlashes(w, r)}).Render(r.Context(), w)
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Register(r.Context(),
		r.FormValue("username"), r.FormValue("email"), r.FormValue("password"))
	if errors.Is(err, users.ErrConflict) {
		h.flash(w, r, "Username or email already exists")
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.flash(w, r, "Could not create account: "+err.Error())
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	h.signIn(w, r, u)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.signOut(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// --- Note handlers ---

// Dashboard handles GET /dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request, u *users.User) {
	noteList, err := h.notes.ListByOwner(r.Context(), u.ID)
	if err != nil {
		h.log.Error("failed to list notes", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	categories, err := h.notes.DistinctCategories(r.Context(), u.ID)
	if err != nil {
		h.log.Error("failed to list categories", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	counts, err := h.notes.CountByType(r.Context(), u.ID)
	if err != nil {
		h.log.Error("failed to count notes", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	noteViews := h.notesToViews(noteList)
	views.Dashboard(models.DashboardData{
		Username:   u.Username,
		Notes:      noteViews,
		Rendered:   h.renderContent(noteList),
		Categories: categories,
		Counts: models.CountsView{
			Total: counts.Total(),
			Text:  counts.Text,
			File:  counts.File,
			Audio: counts.Audio,
		},
		Flashes: h.popFlashes(w, r),
	}).Render(r.Context(), w)
}

// CreateNote handles POST /create_note. Upload and transcription failures
// are absorbed: the note is always saved, possibly with diagnostic content.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request, u *users.User) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.flash(w, r, "Upload rejected: file too large or malformed request")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	input := notes.CreateInput{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		Type:     notes.NoteType(r.FormValue("note_type")),
		Category: r.FormValue("category"),
		Tags:     r.FormValue("tags"),
		UserID:   u.ID,
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		h.attachUpload(r.Context(), &input, header.Filename, file)
	}

	if _, err := h.notes.Create(r.Context(), input); err != nil {
		h.flash(w, r, "Could not create note: "+err.Error())
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	h.flash(w, r, "Note created successfully!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// attachUpload stores the file part and derives content for file and audio
// notes. Failures leave diagnostics in the note instead of aborting it.
func (h *Handler) attachUpload(ctx context.Context, input *notes.CreateInput, filename string, file io.Reader) {
	ref, err := h.store.Save(filename, file)
	if err != nil {
		h.log.Warn("failed to store upload", "filename", filename, "error", err)
		return
	}
	input.FileRef = ref

	switch input.Type {
	case notes.TypeFile:
		input.Content = h.store.ReadText(ref)

	case notes.TypeAudio:
		path, err := h.store.Path(ref)
		if err != nil {
			return
		}
		res := h.transcriber.Transcribe(ctx, path)
		input.Transcription = res.Text
		if res.Succeeded() {
			input.TranscriptionStatus = notes.TranscriptionSucceeded
			input.Content = fmt.Sprintf("Audio file: %s\n\nTranscription:\n%s", filename, res.Text)
		} else {
			input.TranscriptionStatus = notes.TranscriptionFailed
			input.Content = fmt.Sprintf(
				"Audio file: %s\n\nNote: Transcription could not be completed. "+
					"You can try uploading again or add manual notes below.", filename)
		}
	}
}

// EditNotePage handles GET /edit_note/{id}.
func (h *Handler) EditNotePage(w http.ResponseWriter, r *http.Request, u *users.User) {
	note, err := h.notes.GetOwned(r.Context(), u.ID, r.PathValue("id"))
	if err != nil {
		h.redirectNoteErr(w, r, err, "edit")
		return
	}

	views.EditNote(models.EditData{
		Username: u.Username,
		Note:     h.noteToView(note),
		Flashes:  h.popFlashes(w, r),
	}).Render(r.Context(), w)
}

// EditNote handles POST /edit_note/{id}.
func (h *Handler) EditNote(w http.ResponseWriter, r *http.Request, u *users.User) {
	_, err := h.notes.Update(r.Context(), u.ID, r.PathValue("id"), notes.UpdateInput{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		Category: r.FormValue("category"),
		Tags:     r.FormValue("tags"),
	})
	if err != nil {
		h.redirectNoteErr(w, r, err, "edit")
		return
	}

	h.flash(w, r, "Note updated successfully!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// DeleteNote handles GET /delete_note/{id}: removes the record, then any
// stored file.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request, u *users.User) {
	note, err := h.notes.Delete(r.Context(), u.ID, r.PathValue("id"))
	if err != nil {
		h.redirectNoteErr(w, r, err, "delete")
		return
	}

	if note.FileRef != "" {
		if err := h.store.Remove(note.FileRef); err != nil {
			h.log.Warn("failed to remove stored file", "ref", note.FileRef, "error", err)
		}
	}

	h.flash(w, r, "Note deleted successfully!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// SearchPage handles GET /search?q=&category=.
func (h *Handler) SearchPage(w http.ResponseWriter, r *http.Request, u *users.User) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	noteList, err := h.notes.Search(r.Context(), u.ID, query, category)
	if err != nil {
		h.log.Error("failed to search notes", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	categories, err := h.notes.DistinctCategories(r.Context(), u.ID)
	if err != nil {
		h.log.Error("failed to list categories", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	views.Search(models.SearchData{
		Username:   u.Username,
		Notes:      h.notesToViews(noteList),
		Rendered:   h.renderContent(noteList),
		Categories: categories,
		Query:      query,
		Category:   category,
		Flashes:    h.popFlashes(w, r),
	}).Render(r.Context(), w)
}

// ShareNote handles POST /share_note/{id}.
func (h *Handler) ShareNote(w http.ResponseWriter, r *http.Request, u *users.User) {
	_, err := h.notes.Share(r.Context(), u.ID, r.PathValue("id"), r.FormValue("shared_with"))
	if err != nil {
		h.redirectNoteErr(w, r, err, "share")
		return
	}

	h.flash(w, r, "Note shared successfully!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ExportNote handles GET /export_note/{id}: streams the note as a PDF
// attachment named after its title.
func (h *Handler) ExportNote(w http.ResponseWriter, r *http.Request, u *users.User) {
	note, err := h.notes.GetOwned(r.Context(), u.ID, r.PathValue("id"))
	if err != nil {
		h.redirectNoteErr(w, r, err, "export")
		return
	}

	data, err := export.NotePDF(note)
	if err != nil {
		h.log.Error("failed to render pdf", "note", note.ID.Hex(), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	filename := uploads.Sanitize(note.Title)
	if filename == "" {
		filename = "note"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".pdf"))
	w.Write(data)
}

// ServeUpload handles GET /uploads/{filename}. The reference is sanitized
// to its base name before resolution, so requests can never escape the
// upload root.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request, _ *users.User) {
	ref := r.PathValue("filename")

	f, err := h.store.Open(ref)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, filepath.Base(f.Name()), fi.ModTime(), f)
}

// --- Helpers ---

// redirectNoteErr maps service failures onto flash messages and sends the
// user back to the dashboard.
func (h *Handler) redirectNoteErr(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, notes.ErrForbidden):
		h.flash(w, r, "You can only "+action+" your own notes")
	case errors.Is(err, notes.ErrNotFound):
		h.flash(w, r, "Note not found")
	default:
		h.log.Error("note operation failed", "action", action, "error", err)
		h.flash(w, r, "Something went wrong, please try again")
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) noteToView(n *notes.Note) models.NoteView {
	return models.NoteView{
		ID:                  n.ID.Hex(),
		Title:               n.Title,
		Type:                string(n.Type),
		Category:            n.Category,
		Tags:                n.Tags,
		Content:             n.Content,
		FileRef:             n.FileRef,
		TranscriptionStatus: n.TranscriptionStatus,
		IsShared:            n.IsShared,
		SharedWith:          n.SharedWith,
		CreatedAt:           n.CreatedAt,
		UpdatedAt:           n.UpdatedAt,
	}
}

func (h *Handler) notesToViews(noteList []*notes.Note) []models.NoteView {
	viewList := make([]models.NoteView, len(noteList))
	for i, n := range noteList {
		viewList[i] = h.noteToView(n)
	}
	return viewList
}

// renderContent converts each note body from markdown to HTML for display.
func (h *Handler) renderContent(noteList []*notes.Note) map[string]template.HTML {
	rendered := make(map[string]template.HTML, len(noteList))
	for _, n := range noteList {
		rendered[n.ID.Hex()] = template.HTML(h.notes.RenderMarkdown(n.Content))
	}
	return rendered
}

package web

import (
	"net/http"

	"auranotes/internal/users"
)

const sessionName = "auranotes_session"

// currentUser resolves the session cookie to an account. A stale or missing
// session simply reports no user; the caller decides whether to redirect.
func (h *Handler) currentUser(r *http.Request) (*users.User, bool) {
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return nil, false
	}
	id, ok := sess.Values["user_id"].(string)
	if !ok || id == "" {
		return nil, false
	}
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		return nil, false
	}
	return u, true
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u *users.User) {
	sess, _ := h.sessions.Get(r, sessionName)
	sess.Values["user_id"] = u.ID.Hex()
	if err := sess.Save(r, w); err != nil {
		h.log.Error("failed to save session", "error", err)
	}
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.sessions.Get(r, sessionName)
	delete(sess.Values, "user_id")
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		h.log.Error("failed to clear session", "error", err)
	}
}

// flash queues a one-shot message shown on the next rendered page.
func (h *Handler) flash(w http.ResponseWriter, r *http.Request, msg string) {
	sess, _ := h.sessions.Get(r, sessionName)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		h.log.Error("failed to save flash", "error", err)
	}
}

// popFlashes drains queued flash messages for rendering.
func (h *Handler) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	// Flashes are consumed on read; persist the removal.
	if err := sess.Save(r, w); err != nil {
		h.log.Error("failed to save session", "error", err)
	}

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}

// requireUser guards authenticated routes.
func (h *Handler) requireUser(next func(http.ResponseWriter, *http.Request, *users.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := h.currentUser(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, u)
	}
}

package view

import (
	"fmt"
	"net/http"

	"github.com/finboard/finboard/internal/session"
	"github.com/finboard/finboard/internal/shared"
)

// Page assembles the layout fields every page needs: CSRF token, pending
// flash, signed-in user and the menu for the user's capabilities. An error
// means no CSRF token could be issued and the page must not be rendered.
func Page(r *http.Request, csrf *shared.CSRFManager, title string) (TemplateData, error) {
	data := TemplateData{Title: title, CurrentPath: r.URL.Path}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if csrf != nil {
			token, err := csrf.EnsureToken(sess)
			if err != nil {
				return data, fmt.Errorf("issue csrf token: %w", err)
			}
			data.CSRFToken = token
		}
		data.Flash = sess.PopFlash()
	}
	if mgr := session.FromContext(r.Context()); mgr != nil {
		state := mgr.State()
		data.User = state.User
		data.Nav = Navigation(state)
	}
	return data, nil
}

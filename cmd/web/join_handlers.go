package main

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"digitalgeosciences.com/geo-web/internal/content"
	"digitalgeosciences.com/geo-web/internal/join"
	mw "digitalgeosciences.com/geo-web/internal/middleware"
	"digitalgeosciences.com/geo-web/internal/observability"
)

// JoinFormFrag returns an empty join section, used by "Submit another proposal".
func JoinFormFrag(w http.ResponseWriter, r *http.Request) {
	view, ok := loadJoinView(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	renderTemplate(w, r, "section_join", view)
}

// JoinSubmitHandler validates a proposal and relays it to the form endpoint.
// Validation and endpoint failures re-render the form with the draft intact.
func JoinSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if joinMode != join.ModeForm {
		NotFoundHandler(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	view, ok := loadJoinView(r)
	if !ok {
		mw.WriteError(w, r, http.StatusServiceUnavailable, "join form unavailable")
		return
	}

	ids := make([]string, 0, len(view.Doc.Form.Fields))
	for _, f := range view.Doc.Form.Fields {
		ids = append(ids, f.ID)
	}
	draft := join.DraftFromForm(r.PostForm, ids)
	view.Draft = draft

	if errs := join.Validate(draft); errs != nil {
		view.Errors = errs
		n := join.MissingFieldsNotification()
		view.Notice = &n
		respondJoin(w, r, view)
		return
	}

	log := observability.FromContext(r.Context())
	if _, err := joinClient.Submit(r.Context(), draft.Proposal()); err != nil {
		log.Warn("join proposal not accepted", zap.Error(err))
		n := join.FailureNotification(err)
		view.Notice = &n
		respondJoin(w, r, view)
		return
	}

	log.Info("join proposal submitted")
	view.Submitted = true
	view.Email = draft["email"]
	view.Draft = join.Draft{}
	if raw, err := json.Marshal(map[string]any{"join:submitted": map[string]string{"email": view.Email}}); err == nil {
		w.Header().Set("HX-Trigger", string(raw))
	}
	respondJoin(w, r, view)
}

// respondJoin swaps the join section for htmx requests and re-renders the
// whole home page for plain form posts.
func respondJoin(w http.ResponseWriter, r *http.Request, view JoinView) {
	if mw.IsHTMX(r.Context()) {
		renderTemplate(w, r, "section_join", view)
		return
	}
	home := buildHomeView(r.Context(), nil, view.CSRFToken)
	home.Join = &view
	renderHome(w, r, home)
}

func loadJoinView(r *http.Request) (JoinView, bool) {
	doc, err := contentLoader.Join(r.Context())
	if err != nil {
		return JoinView{}, false
	}
	var site *content.SiteConfig
	if s, err := contentLoader.SiteConfig(r.Context()); err == nil {
		site = &s
	}
	return newJoinView(doc, site, mw.CSRFToken(r.Context())), true
}

package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/daybrief/internal/errors"
	"github.com/hpungsan/daybrief/internal/ops"
	"github.com/hpungsan/daybrief/internal/section"
)

// maxTicketBody caps the JSON body accepted by POST /api/tickets.
const maxTicketBody = 1 << 20

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	dash     *ops.Dashboard
	renderer *Renderer
}

func (h *Handlers) pageData(r *http.Request, title, nav string) PageData {
	return PageData{
		Title:    title,
		Version:  h.renderer.version,
		Nav:      nav,
		Theme:    themeFrom(r),
		NavItems: section.Nav(),
		Schedule: h.dash.Scheduler.State(),
		Refresh:  h.dash.Refresher.Last(),
	}
}

// HandleSection handles GET /sections/{id}: render one dashboard section.
func (h *Handlers) HandleSection(w http.ResponseWriter, r *http.Request) {
	out := h.dash.ViewSection(r.Context(), r.PathValue("id"))

	data := SectionPageData{
		PageData:    h.pageData(r, out.Title, out.Section),
		View:        out,
		ContentHTML: renderMarkdown(out.Content),
	}
	if out.Kind == section.KindChat {
		s, err := ops.Session(h.dash.Chats, out.Panel)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Chat = chatData(s, "")
		data.Title = s.Panel().Title
	}

	h.renderer.renderPage(w, r, "section", data)
}

// HandleRefresh handles POST /summary/refresh: fetch and store the summary now.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	out, err := h.dash.Refresher.Refresh(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	h.redirect(w, r, sectionPath(r.FormValue("section")))
}

// HandleMode handles POST /summary/mode: switch between immediate and scheduled.
func (h *Handlers) HandleMode(w http.ResponseWriter, r *http.Request) {
	mode, err := ops.ParseMode(r.FormValue("mode"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.dash.Scheduler.SetMode(mode)
	h.respondSchedule(w, r)
}

// HandleSchedule handles POST /summary/schedule: arm a one-shot refresh.
func (h *Handlers) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	at, err := ops.ParseScheduleTime(r.FormValue("date"), r.FormValue("time"), time.Local)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if err := h.dash.Scheduler.Schedule(at); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.respondSchedule(w, r)
}

func (h *Handlers) respondSchedule(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, h.dash.Scheduler.State())
		return
	}
	h.redirect(w, r, sectionPath(r.FormValue("section")))
}

// HandleChatSend handles POST /chat/{panel}/messages: send a chat message.
func (h *Handlers) HandleChatSend(w http.ResponseWriter, r *http.Request) {
	input := ops.ChatInput{
		Panel:    r.PathValue("panel"),
		Message:  r.FormValue("message"),
		Mode:     r.FormValue("mode"),
		TicketID: r.FormValue("ticket_id"),
	}

	// The reply is kept even if the browser goes away mid-request.
	ctx := context.WithoutCancel(r.Context())
	out, err := ops.Chat(ctx, h.dash.Chats, input)
	if err != nil {
		h.chatError(w, r, input.Panel, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	h.respondChat(w, r, input.Panel, "")
}

// HandleChatMode handles POST /chat/{panel}/mode: set mode and ticket id.
func (h *Handlers) HandleChatMode(w http.ResponseWriter, r *http.Request) {
	panel := r.PathValue("panel")
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	_, setTicket := r.PostForm["ticket_id"]

	s, err := ops.ConfigureChat(h.dash.Chats, panel, r.PostFormValue("mode"), r.PostFormValue("ticket_id"), setTicket)
	if err != nil {
		h.chatError(w, r, panel, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, s.Snapshot())
		return
	}
	h.respondChat(w, r, panel, "")
}

// HandleChatClear handles POST /chat/{panel}/clear: reset a conversation.
func (h *Handlers) HandleChatClear(w http.ResponseWriter, r *http.Request) {
	panel := r.PathValue("panel")
	if err := ops.ClearChat(h.dash.Chats, panel); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"cleared": true, "panel": panel})
		return
	}
	h.respondChat(w, r, panel, "")
}

// chatError reports a chat validation failure. htmx clients get the panel
// back with the message inline; others get a regular error response.
func (h *Handlers) chatError(w http.ResponseWriter, r *http.Request, panel string, err error) {
	if !isHTMX(r) || errors.Is(err, errors.ErrNotFound) {
		h.renderer.renderError(w, r, err)
		return
	}
	h.respondChat(w, r, panel, errors.As(err).Message)
}

func (h *Handlers) respondChat(w http.ResponseWriter, r *http.Request, panel, errMsg string) {
	if !isHTMX(r) {
		h.redirect(w, r, "/sections/"+panel)
		return
	}
	s, err := ops.Session(h.dash.Chats, panel)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderBlock(w, http.StatusOK, "section", "chat-panel", chatData(s, errMsg))
}

// HandleTheme handles POST /theme: toggle the light/dark theme cookie.
func (h *Handlers) HandleTheme(w http.ResponseWriter, r *http.Request) {
	next := "dark"
	if themeFrom(r) == "dark" {
		next = "light"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]string{"theme": next})
		return
	}
	h.redirect(w, r, sectionPath(r.FormValue("section")))
}

// HandleAPISummary handles GET /api/summary: the stored document as JSON.
func (h *Handlers) HandleAPISummary(w http.ResponseWriter, r *http.Request) {
	doc, err := ops.GetSummary(r.Context(), h.dash.Store)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, doc)
}

// HandleAPICreateTicket handles POST /api/tickets: create a Jira ticket.
func (h *Handlers) HandleAPICreateTicket(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	dec := json.NewDecoder(io.LimitReader(r.Body, maxTicketBody))
	if err := dec.Decode(&payload); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("request body must be a JSON object"))
		return
	}

	out, err := ops.CreateTicket(r.Context(), h.dash.Client, payload)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusCreated, out)
}

// HandleAPISummarizeTicket handles GET /api/tickets/{id}/summary.
func (h *Handlers) HandleAPISummarizeTicket(w http.ResponseWriter, r *http.Request) {
	out, err := ops.SummarizeTicket(r.Context(), h.dash.Client, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// redirect sends htmx clients an HX-Redirect and everyone else a 303.
func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, to string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

const themeCookie = "theme"

// themeFrom returns the theme cookie value, defaulting to light.
func themeFrom(r *http.Request) string {
	if r == nil {
		return "light"
	}
	c, err := r.Cookie(themeCookie)
	if err != nil || c.Value != "dark" {
		return "light"
	}
	return "dark"
}

// sectionPath returns the page for a section id, falling back to home so a
// form value can't redirect off-site.
func sectionPath(id string) string {
	id = strings.TrimSpace(id)
	if !section.Known(id) {
		id = section.Home
	}
	return "/sections/" + id
}

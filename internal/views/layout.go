package views

import (
	"context"

	"github.com/a-h/templ"

	"moodlift/internal/viewmodel"
)

// Page wraps body in the document shell. scripts are paths under /static/.
func Page(l viewmodel.Layout, body templ.Component, scripts ...string) templ.Component {
	all := append([]string{"theme.js"}, scripts...)
	return component(func(ctx context.Context, h *html) {
		h.raw(`<!DOCTYPE html><html lang="en"`)
		h.attr("data-theme", l.Theme)
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(l.Title)
		h.raw(`</title>`)
		h.raw(`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bulma@0.9.4/css/bulma.min.css">`)
		h.raw(`<link rel="stylesheet" href="/static/app.css">`)
		h.raw(`</head><body class="theme-`, templ.EscapeString(l.Theme), `">`)
		h.raw(`<nav class="navbar is-transparent"><div class="navbar-brand">`)
		h.raw(`<a class="navbar-item has-text-weight-bold" href="/">🙂 Moodlift</a>`)
		h.raw(`<a class="navbar-item" href="/games">🎮 Games</a></div>`)
		h.raw(`<div class="navbar-end"><form id="theme-form" class="navbar-item" method="POST" action="/theme/toggle">`)
		h.raw(`<button class="button is-small" type="submit">`)
		if l.Theme == "dark" {
			h.raw(`☀️ Light mode`)
		} else {
			h.raw(`🌙 Dark mode`)
		}
		h.raw(`</button></form></div></nav>`)
		h.raw(`<section class="section"><div class="container">`)
		h.render(ctx, body)
		h.raw(`</div></section>`)
		for _, s := range all {
			h.raw(`<script src="/static/`, templ.EscapeString(s), `"></script>`)
		}
		h.raw(`</body></html>`)
	})
}

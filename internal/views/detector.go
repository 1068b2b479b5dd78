package views

import (
	"context"

	"github.com/a-h/templ"

	"moodlift/internal/viewmodel"
)

// DetectorPage is the mood-check page: camera preview, presence indicator,
// capture button and the result panel.
func DetectorPage(vm viewmodel.DetectorPage) templ.Component {
	body := component(func(ctx context.Context, h *html) {
		h.raw(`<div id="detector"`)
		h.attr("data-view", vm.ViewID)
		h.attr("data-interval", itoa(vm.FrameIntervalMs))
		h.raw(`>`)
		h.raw(`<h1 class="title">How are you feeling today?</h1>`)
		h.raw(`<div class="columns"><div class="column">`)
		h.raw(`<video id="camera" autoplay playsinline muted width="480" height="360"></video>`)
		h.raw(`<canvas id="snapshot" width="480" height="360" hidden></canvas>`)
		h.raw(`<div id="presence" class="mt-2">`)
		h.render(ctx, PresenceFragment(vm.Presence))
		h.raw(`</div></div><div class="column">`)
		h.raw(`<form id="capture-form" method="POST"`)
		h.attr("action", "/view/"+vm.ViewID+"/capture")
		h.raw(`><button class="button is-primary is-medium" type="submit">📸 Capture Emotion</button></form>`)
		h.raw(`<div id="session" class="mt-4">`)
		h.render(ctx, SessionFragment(vm.Session))
		h.raw(`</div></div></div></div>`)
	})
	return Page(vm.Layout, body, "detector.js")
}

// SessionFragment renders the capture result panel.
func SessionFragment(vm viewmodel.SessionFragment) templ.Component {
	return component(func(_ context.Context, h *html) {
		if vm.Loading {
			h.raw(`<div class="notification is-info">🔍 Detecting...</div>`)
			return
		}
		if vm.ErrorMessage != "" {
			h.raw(`<div class="notification is-warning">`)
			h.text(vm.ErrorMessage)
			h.raw(`</div>`)
		}
		if vm.EmotionLabel == "" {
			if vm.ErrorMessage == "" {
				h.raw(`<p class="has-text-grey">Press capture when you are ready.</p>`)
			}
			return
		}
		h.raw(`<div class="box"><p class="is-size-4">Detected Emotion: <strong>`)
		h.text(vm.EmotionLabel)
		h.raw(`</strong> <span class="is-size-2">`)
		h.text(vm.Glyph)
		h.raw(`</span></p>`)
		if len(vm.Suggestions) > 0 {
			h.raw(`<h2 class="subtitle mt-3">Suggestions for you</h2><ul>`)
			for _, s := range vm.Suggestions {
				h.raw(`<li>`)
				h.text(s)
				h.raw(`</li>`)
			}
			h.raw(`</ul>`)
		}
		if vm.ShowGames {
			h.raw(`<a class="button is-link mt-4" href="/games">🎮 Play a game to lift your mood</a>`)
		}
		h.raw(`</div>`)
	})
}

// PresenceFragment renders the face indicator.
func PresenceFragment(vm viewmodel.PresenceFragment) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<span`)
		h.attr("class", "tag is-medium presence-"+vm.State)
		h.raw(`>`)
		h.text(vm.Label)
		h.raw(`</span>`)
	})
}

package table

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/leapgrid/internal/render"
	"github.com/leapstack-labs/leapgrid/internal/ui/resources"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Element ids patched by the handlers.
const (
	appID     = "grid-app"
	statusID  = "grid-status"
	contentID = "grid-content"
)

// htmlWriter writes markup and keeps the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, a ...any) {
	h.raw(fmt.Sprintf(format, a...))
}

func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(h)
		return h.err
	})
}

// action builds a datastar POST expression for an attribute value.
func action(path string) string {
	return templ.EscapeString("@post('" + path + "')")
}

// GridPage is the full document: toolbar, status line and grid content.
func GridPage(title string, isDev bool, v grid.View, layout render.Layout) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw("<!doctype html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">",
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		h.raw("<title>")
		h.text(title)
		h.raw(" - LeapGrid</title>")
		h.rawf("<link rel=\"stylesheet\" href=\"%s\">", resources.StaticPath("grid.css"))
		h.rawf("<script type=\"module\" src=\"%s\"></script>", datastarScript)
		h.raw("</head><body>")
		if isDev {
			h.raw("<div data-init=\"@get('/reload')\"></div>")
		}

		signals := fmt.Sprintf("{query: %s}", jsString(v.LiveQuery))
		h.rawf("<main id=\"%s\" data-signals=\"%s\" data-init=\"@get('/updates')\">", appID, templ.EscapeString(signals))

		h.raw("<header class=\"grid-toolbar\"><h1>")
		h.text(title)
		h.raw("</h1>")
		h.rawf("<input type=\"search\" placeholder=\"Search\" data-bind:query data-on:input=\"%s\">", action("/api/grid/search"))
		h.raw("<nav class=\"grid-export\">")
		for _, format := range []string{"csv", "json", "markdown", "html"} {
			h.rawf("<a href=\"/export?format=%s\">%s</a>", format, format)
		}
		h.raw("</nav></header>")

		renderStatus(h, v)
		renderContent(h, v, layout)
		h.raw("</main></body></html>")
	})
}

// GridStatus is the line that tells whether a search is still settling.
func GridStatus(v grid.View) templ.Component {
	return component(func(h *htmlWriter) { renderStatus(h, v) })
}

// GridContent is the patched part of the page: layout switch, rows and
// pager.
func GridContent(v grid.View, layout render.Layout) templ.Component {
	return component(func(h *htmlWriter) { renderContent(h, v, layout) })
}

func renderStatus(h *htmlWriter, v grid.View) {
	h.rawf("<div id=\"%s\" class=\"grid-status\">", statusID)
	if v.LiveQuery != v.Query {
		h.raw("<span class=\"pending\">filtering…</span>")
	}
	h.raw("</div>")
}

func renderContent(h *htmlWriter, v grid.View, layout render.Layout) {
	h.rawf("<section id=\"%s\" class=\"grid-%s\">", contentID, layout)

	h.raw("<div class=\"grid-layouts\">")
	for _, l := range []render.Layout{render.LayoutDense, render.LayoutCards} {
		h.rawf("<button data-on:click=\"%s\"", action("/api/grid/layout/"+string(l)))
		if l == layout {
			h.raw(" class=\"active\" disabled")
		}
		h.rawf(">%s</button>", l)
	}
	h.raw("</div>")

	switch {
	case v.Len() == 0:
		h.raw("<p class=\"grid-empty\">")
		if v.Query != "" {
			h.text(fmt.Sprintf("No rows match %q.", v.Query))
		} else {
			h.raw("No rows.")
		}
		h.raw("</p>")
	case layout == render.LayoutCards:
		renderCards(h, v)
	default:
		renderDense(h, v)
	}

	renderPager(h, v)
	h.raw("</section>")
}

func renderDense(h *htmlWriter, v grid.View) {
	cols := render.DisplayColumns(v)

	h.raw("<table class=\"grid\"><thead><tr><th class=\"select\">")
	h.rawf("<input type=\"checkbox\" aria-label=\"Select page\" data-on:click=\"%s\"", action("/api/grid/select-all"))
	switch {
	case v.AllSelected:
		h.raw(" checked")
	case v.SomeSelected:
		h.raw(" data-indeterminate")
	}
	h.raw("></th>")

	for _, c := range cols {
		label := render.HeaderLabel(c, v.Sort)
		if !c.Sortable && len(v.Columns) > 0 {
			h.raw("<th>")
			h.text(label)
			h.raw("</th>")
			continue
		}
		h.rawf("<th class=\"sortable\" data-on:click=\"%s\">", action("/api/grid/sort/"+url.PathEscape(c.Key)))
		h.text(label)
		h.raw("</th>")
	}
	h.raw("</tr></thead><tbody>")

	for i := range v.Len() {
		row, id, selected := v.RowAt(i)
		h.raw("<tr")
		if selected {
			h.raw(" class=\"selected\"")
		}
		h.raw(" data-key=\"")
		h.text(id)
		h.raw("\"><td class=\"select\">")
		renderRowCheckbox(h, id, selected)
		h.raw("</td>")
		for _, c := range cols {
			h.raw("<td>")
			h.text(c.Cell(row))
			h.raw("</td>")
		}
		h.raw("</tr>")
	}
	h.raw("</tbody></table>")
}

func renderCards(h *htmlWriter, v grid.View) {
	cols := render.DisplayColumns(v)

	h.raw("<div class=\"grid-cards\">")
	for i := range v.Len() {
		row, id, selected := v.RowAt(i)
		h.raw("<article class=\"card")
		if selected {
			h.raw(" selected")
		}
		h.raw("\" data-key=\"")
		h.text(id)
		h.raw("\"><header>")
		renderRowCheckbox(h, id, selected)
		h.raw("<strong>")
		h.text(id)
		h.raw("</strong></header><dl>")
		for _, c := range cols {
			h.raw("<dt>")
			h.text(c.Title())
			h.raw("</dt><dd>")
			h.text(c.Cell(row))
			h.raw("</dd>")
		}
		h.raw("</dl></article>")
	}
	h.raw("</div>")
}

func renderRowCheckbox(h *htmlWriter, id grid.RowID, selected bool) {
	h.rawf("<input type=\"checkbox\" data-on:click=\"%s\"", action("/api/grid/select/"+url.PathEscape(id)))
	if selected {
		h.raw(" checked")
	}
	h.raw(">")
}

func renderPager(h *htmlWriter, v grid.View) {
	h.raw("<footer class=\"grid-pager\">")
	pagerButton(h, "prev", "Previous", v.CanPrevious())
	h.raw("<span class=\"summary\">")
	h.text(render.Summary(v))
	h.raw("</span>")
	pagerButton(h, "next", "Next", v.CanNext())
	h.raw("</footer>")
}

func pagerButton(h *htmlWriter, dir, label string, enabled bool) {
	h.rawf("<button data-on:click=\"%s\"", action("/api/grid/page/"+dir))
	if !enabled {
		h.raw(" disabled")
	}
	h.rawf(">%s</button>", label)
}

// jsString quotes s as a single-quoted JavaScript string literal.
func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

// Package templates holds the HTML views of the roster UI as templ
// components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/ShuffleRoster/internal/core"
)

// PageParams is everything the main page shows.
type PageParams struct {
	FileName     string
	Status       string
	Loaded       bool
	Grouped      bool
	Groups       int
	GroupSize    int
	MaxGroupSize int
	Shuffle      bool
	Format       core.Format
	Formats      []core.Format
	Grid         core.Grid
	Flash        *core.Notification
}

// htmlWriter collects the first write error so components can write
// fragments without checking each one.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

// Layout wraps body in the HTML document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><link rel="stylesheet" href="/static/app.css"></head><body><main class="container">`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</main><script src="/static/app.js" defer></script></body></html>`)
		return h.err
	})
}

// Page renders the full roster page.
func Page(p PageParams) templ.Component {
	return Layout("Student Group Maker", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Student Group Maker</h1>`)
		if h.err != nil {
			return h.err
		}
		if err := Flash(p.Flash).Render(ctx, w); err != nil {
			return err
		}
		if err := Controls(p).Render(ctx, w); err != nil {
			return err
		}
		return GridTable(p.Grid).Render(ctx, w)
	}))
}

// Controls renders the file, grouping and export forms.
func Controls(p PageParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<section class="panel" id="file-panel">`)
		h.raw(`<form method="post" action="/file" enctype="multipart/form-data" class="row">`)
		h.raw(`<label class="button">Select File<input type="file" name="file" accept=".csv,.xlsx,.xls" data-autosubmit hidden></label>`)
		h.raw(`<span class="file-label">`)
		if p.FileName != "" {
			h.text(p.FileName)
		} else {
			h.raw(`No file selected`)
		}
		h.raw(`</span><noscript><button type="submit">Load</button></noscript></form>`)
		h.raw(`<form method="post" action="/clear" class="row"><button type="submit"`)
		if !p.Loaded {
			h.raw(` disabled`)
		}
		h.raw(`>Clear File</button></form>`)
		h.raw(`<p class="status" id="status">`)
		h.text(p.Status)
		h.raw(`</p></section>`)

		h.raw(`<section class="panel" id="group-panel"><form method="post" action="/groups" class="row">`)
		h.raw(`<label>Students per group <input type="number" name="group_size" min="1"`)
		h.rawf(` max="%d" value="%d" required></label>`, p.MaxGroupSize, p.GroupSize)
		h.raw(`<button type="submit" formaction="/size" formnovalidate name="delta" value="-1" aria-label="Smaller groups">-</button>`)
		h.raw(`<button type="submit" formaction="/size" formnovalidate name="delta" value="1" aria-label="Larger groups">+</button>`)
		h.raw(`<label><input type="checkbox" name="shuffle" value="true"`)
		if p.Shuffle {
			h.raw(` checked`)
		}
		h.raw(`> Shuffle students</label>`)
		h.raw(`<button type="submit" class="primary">Create Groups</button></form></section>`)

		h.raw(`<section class="panel" id="export-panel"><form method="post" action="/format" class="row">`)
		h.raw(`<select name="format" data-autosubmit>`)
		for _, f := range p.Formats {
			h.rawf(`<option value="%s"`, templ.EscapeString(string(f)))
			if f == p.Format {
				h.raw(` selected`)
			}
			h.raw(`>`)
			h.text(strings.ToUpper(string(f)))
			h.raw(`</option>`)
		}
		h.raw(`</select><noscript><button type="submit">Set</button></noscript></form>`)
		h.raw(`<a class="button" id="save" href="/export" data-download>`)
		h.text(p.Format.Label())
		h.raw(`</a>`)
		if p.Grouped {
			h.raw(`<span class="groups-count">`)
			h.text(strconv.Itoa(p.Groups) + " groups")
			h.raw(`</span>`)
		}
		h.raw(`</section>`)
		return h.err
	})
}

// Flash renders a notification that the page script removes after its TTL.
func Flash(n *core.Notification) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div id="notifications">`)
		if n != nil {
			h.rawf(`<div class="notification %s" role="status" data-ttl="%d">`,
				templ.EscapeString(string(n.Level)), n.TTL.Milliseconds())
			h.text(n.Message)
			h.raw(`</div>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// GridTable renders a display grid. An empty grid renders a placeholder.
func GridTable(g core.Grid) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="panel table-wrap" id="table">`)
		if g.Empty() {
			h.raw(`<p class="empty">Load a roster to see students here.</p></section>`)
			return h.err
		}

		groupCol := -1
		h.raw(`<table><thead><tr>`)
		for i, col := range g.Headers {
			if col == core.GroupColumn {
				groupCol = i
			}
			h.raw(`<th>`)
			h.text(col)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, row := range g.Rows {
			if groupCol >= 0 {
				h.rawf(`<tr data-group="%s">`, templ.EscapeString(row[groupCol]))
			} else {
				h.raw(`<tr>`)
			}
			for _, cell := range row {
				h.raw(`<td>`)
				h.text(cell)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></section>`)
		return h.err
	})
}

// ErrorAlert renders an error with its suggested action and support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="notification error" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<small>Code: `)
			h.text(code)
			h.raw(`</small>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

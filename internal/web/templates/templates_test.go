package templates

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ShuffleRoster/internal/core"
)

func TestGridTable_EscapesCells(t *testing.T) {
	var buf bytes.Buffer
	g := core.Grid{
		Headers: []string{"name", core.GroupColumn},
		Rows:    [][]string{{"<script>alert(1)</script>", "2"}},
	}
	require.NoError(t, GridTable(g).Render(context.Background(), &buf))

	html := buf.String()
	assert.NotContains(t, html, "<script>alert")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, `<tr data-group="2">`)
	assert.Contains(t, html, "<th>GROUP</th>")
}

func TestGridTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GridTable(core.Grid{}).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "Load a roster")
	assert.NotContains(t, buf.String(), "<table>")
}

func TestFlash(t *testing.T) {
	var buf bytes.Buffer
	n := &core.Notification{Level: core.LevelWarning, Message: "Please create groups first", TTL: 3 * time.Second}
	require.NoError(t, Flash(n).Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), `class="notification warning"`)
	assert.Contains(t, buf.String(), `data-ttl="3000"`)
	assert.Contains(t, buf.String(), "Please create groups first")

	buf.Reset()
	require.NoError(t, Flash(nil).Render(context.Background(), &buf))
	assert.Equal(t, `<div id="notifications"></div>`, buf.String())
}

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	p := PageParams{
		FileName:     "class & co.csv",
		Status:       "Loaded 5 students",
		Loaded:       true,
		GroupSize:    3,
		MaxGroupSize: 5,
		Shuffle:      true,
		Format:       core.FormatCSV,
		Formats:      core.Formats,
		Grid:         core.Grid{Headers: []string{"name"}, Rows: [][]string{{"Ada"}}},
	}
	require.NoError(t, Page(p).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "class &amp; co.csv")
	assert.Contains(t, html, `max="5" value="3"`)
	assert.Contains(t, html, `value="true" checked`)
	assert.Contains(t, html, `formaction="/size" formnovalidate name="delta" value="1"`)
	assert.Contains(t, html, `<option value="csv" selected>CSV</option>`)
	assert.Contains(t, html, "Save as CSV")
	assert.Contains(t, html, "<td>Ada</td>")
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert("File is empty", "Pick another", "FILE004").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "Code: FILE004")
	assert.Contains(t, buf.String(), "<p>Pick another</p>")
}

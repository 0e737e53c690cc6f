package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

const displayTime = "2006-01-02 15:04:05"

var (
	tplOnce sync.Once
	tpl     *pongo2.Template
	tplErr  error

	markdown = goldmark.New()
	policy   = messagePolicy()
)

func messagePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	return p
}

// renderMessage turns a markdown message into sanitized HTML. Markup in the
// message is escaped first so element names in driver errors stay readable.
func renderMessage(msg string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(html.EscapeString(msg)), &buf); err != nil {
		return policy.Sanitize(msg)
	}
	return policy.Sanitize(buf.String())
}

type lineView struct {
	Status   string
	Label    string
	Time     string
	HTML     string
	ImageSrc string
	ImageAlt string
}

type entryView struct {
	ID          string
	Name        string
	Description string
	Status      string
	Label       string
	Started     string
	Duration    string
	Lines       []lineView
}

func template() (*pongo2.Template, error) {
	tplOnce.Do(func() {
		tpl, tplErr = pongo2.FromString(htmlTemplate)
	})
	return tpl, tplErr
}

func (r *Report) renderHTML() (string, error) {
	t, err := template()
	if err != nil {
		return "", fmt.Errorf("parse report template: %w", err)
	}

	entries := make([]entryView, 0, len(r.entries))
	for _, e := range r.entries {
		status := e.statusLocked()
		ev := entryView{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Status:      status.String(),
			Label:       status.Label(),
			Started:     e.Started.Format(displayTime),
			Duration:    e.durationLocked().Round(time.Millisecond).String(),
		}
		for _, l := range e.lines {
			lv := lineView{
				Status: l.Status.String(),
				Label:  l.Status.Label(),
				Time:   l.Time.Format("15:04:05.000"),
				HTML:   renderMessage(l.Message),
			}
			if l.Image != nil {
				lv.ImageAlt = l.Image.Title
				switch {
				case l.Image.Base64 != "":
					lv.ImageSrc = "data:image/png;base64," + l.Image.Base64
				case l.Image.Path != "":
					lv.ImageSrc = l.Image.Path
				}
			}
			ev.Lines = append(ev.Lines, lv)
		}
		entries = append(entries, ev)
	}

	out, err := t.Execute(pongo2.Context{
		"id":      r.ID,
		"title":   r.Title,
		"name":    r.Name,
		"started": r.Started.Format(displayTime),
		"summary": r.summaryLocked(),
		"entries": entries,
	})
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return strings.TrimSpace(out) + "\n", nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ title }}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
.summary span { margin-right: 1.5em; }
.entry { border: 1px solid #ddd; border-radius: 4px; margin: 1em 0; padding: .5em 1em; }
.entry h2 { font-size: 1.1em; }
.line { display: flex; gap: 1em; border-top: 1px solid #eee; padding: .3em 0; }
.line .msg p { margin: 0; }
.line img { max-width: 640px; display: block; margin-top: .3em; }
.pass { color: #1a7f37; } .fail { color: #cf222e; } .skip { color: #9a6700; }
.warning { color: #bc4c00; } .info { color: #0969da; }
</style>
</head>
<body>
<h1>{{ title }}</h1>
<p class="meta">Run {{ id }} &middot; started {{ started }}</p>
<div class="summary">
<span>Total: {{ summary.Total }}</span>
<span class="pass">Passed: {{ summary.Passed }}</span>
<span class="fail">Failed: {{ summary.Failed }}</span>
<span class="skip">Skipped: {{ summary.Skipped }}</span>
<span class="warning">Warnings: {{ summary.Warnings }}</span>
</div>
{% for e in entries %}
<div class="entry {{ e.Status }}" id="entry-{{ e.ID }}">
<h2><span class="{{ e.Status }}">[{{ e.Label }}]</span> {{ e.Name }}</h2>
{% if e.Description %}<p>{{ e.Description }}</p>{% endif %}
<p class="meta">{{ e.Started }} &middot; {{ e.Duration }}</p>
{% for l in e.Lines %}
<div class="line">
<span class="time">{{ l.Time }}</span>
<span class="{{ l.Status }}">{{ l.Label }}</span>
<div class="msg">{{ l.HTML|safe }}{% if l.ImageSrc %}<img src="{{ l.ImageSrc }}" alt="{{ l.ImageAlt }}">{% endif %}</div>
</div>
{% endfor %}
</div>
{% endfor %}
</body>
</html>
`

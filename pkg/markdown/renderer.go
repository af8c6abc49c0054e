package markdown

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"

	"taskfile/pkg/bodykind"
	"taskfile/pkg/task"
)

// policy is shared; bluemonday policies are safe for concurrent use once built.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	// UGCPolicy allows user-generated content with safe HTML tags
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span", "div", "dl", "time")
	p.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("datetime").OnElements("time")
	return p
}

// RenderToHTML converts markdown text to sanitized HTML.
// It uses blackfriday for markdown parsing and bluemonday for HTML sanitization.
func RenderToHTML(markdown string) string {
	unsafeHTML := blackfriday.Run(
		[]byte(markdown),
		blackfriday.WithExtensions(
			blackfriday.CommonExtensions|
				blackfriday.AutoHeadingIDs|
				blackfriday.Footnotes,
		),
	)
	return string(policy.SanitizeBytes(unsafeHTML))
}

// RenderTask renders the header fields as a definition list followed by the body.
// Markdown bodies go through blackfriday, text bodies are preformatted, and
// binary bodies are summarized.
func RenderTask(t *task.Task) string {
	var b strings.Builder

	b.WriteString(`<div class="task">`)
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(t.Title))
	b.WriteString(`<dl class="task-header">`)
	for _, a := range t.Authors {
		fmt.Fprintf(&b, "<dt>Author</dt><dd>%s</dd>", html.EscapeString(a))
	}
	fmt.Fprintf(&b, "<dt>Time Frame</dt><dd>%s</dd>", renderTimeFrame(t.TimeFrame))
	b.WriteString("</dl>\n")

	kind, _ := bodykind.Detect(t.Body)
	switch kind {
	case bodykind.KindMarkdown:
		b.WriteString(`<div class="task-body">`)
		b.WriteString(RenderToHTML(string(t.Body)))
		b.WriteString("</div>")
	case bodykind.KindText:
		fmt.Fprintf(&b, `<pre class="task-body">%s</pre>`, html.EscapeString(string(t.Body)))
	case bodykind.KindBinary:
		fmt.Fprintf(&b, `<p class="task-body">binary body, %d bytes</p>`, len(t.Body))
	}
	b.WriteString("</div>\n")

	return policy.Sanitize(b.String())
}

func renderTimeFrame(tf task.TimeFrame) string {
	stamp := func(ts task.Timestamp) string {
		return fmt.Sprintf(`<time datetime="%04d-%02d-%02dT%02d:%02d">%s</time>`,
			ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts)
	}
	switch tf.Kind {
	case task.KindAfter:
		return "After " + stamp(tf.Start)
	case task.KindUntil:
		return "Until " + stamp(tf.End)
	case task.KindOn:
		return "On " + stamp(tf.Start)
	case task.KindFrom:
		return "From " + stamp(tf.Start) + " to " + stamp(tf.End)
	}
	return ""
}

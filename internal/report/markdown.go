package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/chris00234/web-crawler/internal/model"
)

// maxChartSlices caps the subdomain pie chart; the rest are folded into "other".
const maxChartSlices = 10

// MarkdownWriter outputs the crawl report as Markdown, with a mermaid pie
// chart of the busiest subdomains.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...Option) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output, opts)}
}

// Write outputs the report in Markdown.
func (w *MarkdownWriter) Write(snap *model.Snapshot) (int, error) {
	snap = snapshotOrEmpty(snap)

	md := markdown.NewMarkdown(io.Discard)

	md.H1("Crawl Report")
	md.PlainText("")
	w.writeExtremes(md, snap)
	w.writeWords(md, snap)
	w.writeSubdomains(md, snap)
	w.writeURLList(md, "URLs Considered a Trap", snap.Traps)
	w.writeURLList(md, "URLs Identified", snap.Accepted)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*%d URLs identified, %d traps filtered.*", len(snap.Accepted), len(snap.Traps))

	return w.emit([]byte(md.String()))
}

func (w *MarkdownWriter) writeExtremes(md *markdown.Markdown, snap *model.Snapshot) {
	md.Table(markdown.TableSet{
		Header: []string{"Statistic", "URL", "Count"},
		Rows: [][]string{
			{"Most links", cell(snap.BestLinkPage.URL), strconv.Itoa(snap.BestLinkPage.Count)},
			{"Most words", cell(snap.BestWordPage.URL), strconv.Itoa(snap.BestWordPage.Count)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeWords(md *markdown.Markdown, snap *model.Snapshot) {
	md.H2("The " + strconv.Itoa(w.top) + " Most Common Words")
	md.PlainText("")

	words := TopWords(snap, w.top)
	if len(words) == 0 {
		md.PlainText("No words recorded.")
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Count"},
		Rows:   countRows(words, true),
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSubdomains(md *markdown.Markdown, snap *model.Snapshot) {
	md.H2("Subdomains")
	md.PlainText("")

	subs := Subdomains(snap)
	if len(subs) == 0 {
		md.PlainText("No subdomains recorded.")
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{
		Header: []string{"Subdomain", "URLs"},
		Rows:   countRows(subs, false),
	})
	md.PlainText("")
	w.writePieChart(md, subs)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, subs []model.Count) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("URLs per Subdomain"),
		piechart.WithShowData(true),
	)

	ranked := TopCounts(subs, 0)
	var other uint64
	for i, c := range ranked {
		if i < maxChartSlices {
			chart.LabelAndIntValue(c.Key, uint64(c.Count))
			continue
		}
		other += uint64(c.Count)
	}
	if other > 0 {
		chart.LabelAndIntValue("other", other)
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeURLList(md *markdown.Markdown, title string, urls []string) {
	md.H2(title)
	md.PlainText("")
	if len(urls) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}
	md.BulletList(urls...)
	md.PlainText("")
}

func countRows(counts []model.Count, ranked bool) [][]string {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		if ranked {
			rows[i] = []string{strconv.Itoa(i + 1), c.Key, strconv.Itoa(c.Count)}
			continue
		}
		rows[i] = []string{c.Key, strconv.Itoa(c.Count)}
	}
	return rows
}

// cell renders a URL table cell, or a dash when no page was recorded.
func cell(u string) string {
	if u == "" {
		return "-"
	}
	return "`" + u + "`"
}

// Package describe turns permanode attribute values, which may hold HTML
// fragments, into wrapped terminal lines.
package describe

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	nethtml "golang.org/x/net/html"
)

var (
	reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	reTag       = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b4befe"))
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fab387"))
)

type renderer struct {
	width int
}

// Lines renders value at width. Values without markup are wrapped as
// plain text. A width below 1 disables wrapping.
func Lines(value string, width int) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !reTag.MatchString(value) {
		return trimBlankLines(wrapText(html.UnescapeString(value), width))
	}
	doc, err := nethtml.Parse(strings.NewReader("<html><body>" + value + "</body></html>"))
	if err != nil {
		return wrapText(html.UnescapeString(value), width)
	}
	body := findBodyNode(doc)
	if body == nil {
		return wrapText(html.UnescapeString(value), width)
	}
	r := renderer{width: width}
	return trimBlankLines(r.renderNodes(elementChildren(body)))
}

// Text flattens value to a single line of plain text.
func Text(value string) string {
	lines := Lines(value, 0)
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(stripANSI(line))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

func (r renderer) renderNodes(nodes []*nethtml.Node) []string {
	lines := make([]string, 0, len(nodes)*2)
	inlineParts := make([]string, 0, 4)
	flushInline := func() {
		text := normalizeInlineText(strings.Join(inlineParts, " "))
		inlineParts = inlineParts[:0]
		if text == "" {
			return
		}
		lines = appendBlock(lines, wrapText(text, r.width))
	}

	for _, node := range nodes {
		switch node.Type {
		case nethtml.TextNode:
			inlineParts = append(inlineParts, node.Data)
		case nethtml.ElementNode:
			if isBlockElement(node.Data) {
				flushInline()
				lines = appendBlock(lines, r.renderBlock(node))
				continue
			}
			inlineParts = append(inlineParts, r.renderInlineNode(node))
		}
	}
	flushInline()
	return trimBlankLines(lines)
}

func (r renderer) renderBlock(node *nethtml.Node) []string {
	tag := strings.ToLower(node.Data)
	switch tag {
	case "script", "style", "noscript":
		return nil
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := normalizeInlineText(r.renderInlineChildren(node))
		if text == "" {
			return nil
		}
		out := wrapText(text, r.width)
		for i, line := range out {
			out[i] = headingStyle.Render(line)
		}
		return out
	case "hr":
		rule := 40
		if r.width > 0 {
			rule = min(r.width, rule)
		}
		return []string{strings.Repeat("─", rule)}
	case "pre":
		return strings.Split(strings.Trim(collectRawText(node), "\n"), "\n")
	case "ul", "ol":
		var out []string
		n := 0
		for _, child := range elementChildren(node) {
			if child.Type != nethtml.ElementNode || !strings.EqualFold(child.Data, "li") {
				continue
			}
			n++
			marker := "• "
			if tag == "ol" {
				marker = strconv.Itoa(n) + ". "
			}
			out = append(out, wrapPrefixed(normalizeInlineText(r.renderInlineChildren(child)), r.width, marker)...)
		}
		return out
	default:
		if hasBlockChild(node) {
			return r.renderNodes(elementChildren(node))
		}
		text := normalizeInlineText(r.renderInlineChildren(node))
		if text == "" {
			return nil
		}
		return wrapText(text, r.width)
	}
}

func (r renderer) renderInlineChildren(node *nethtml.Node) string {
	parts := make([]string, 0, 4)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		parts = append(parts, r.renderInlineNode(child))
	}
	return strings.Join(parts, " ")
}

func (r renderer) renderInlineNode(node *nethtml.Node) string {
	if node == nil {
		return ""
	}
	switch node.Type {
	case nethtml.TextNode:
		return node.Data
	case nethtml.ElementNode:
		switch strings.ToLower(node.Data) {
		case "script", "style", "noscript", "img":
			return ""
		case "br":
			return "\n"
		case "a":
			text := normalizeInlineText(r.renderInlineChildren(node))
			href := nodeAttr(node, "href")
			switch {
			case href == "":
				return text
			case text == "" || strings.EqualFold(text, href):
				return href
			default:
				return text + " (" + href + ")"
			}
		case "code", "kbd", "samp":
			text := normalizeInlineText(r.renderInlineChildren(node))
			if text == "" {
				return ""
			}
			return codeStyle.Render("`" + text + "`")
		default:
			return r.renderInlineChildren(node)
		}
	default:
		return ""
	}
}

func appendBlock(lines, block []string) []string {
	if len(block) == 0 {
		return lines
	}
	if len(lines) > 0 && lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return append(lines, block...)
}

func normalizeInlineText(s string) string {
	s = html.UnescapeString(s)
	parts := strings.Split(s, "\n")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Join(strings.Fields(part), " ")
		if part != "" {
			out = append(out, part)
		}
	}
	replacer := strings.NewReplacer(
		" .", ".",
		" ,", ",",
		" ;", ";",
		" :", ":",
		" !", "!",
		" ?", "?",
		" )", ")",
		"( ", "(",
	)
	return replacer.Replace(strings.Join(out, "\n"))
}

func wrapPrefixed(text string, width int, prefix string) []string {
	if text == "" {
		return nil
	}
	indent := strings.Repeat(" ", runewidth.StringWidth(prefix))
	if width > 0 {
		width = max(1, width-runewidth.StringWidth(prefix))
	}
	wrapped := wrapText(text, width)
	for i, line := range wrapped {
		if i == 0 {
			wrapped[i] = prefix + line
		} else {
			wrapped[i] = indent + line
		}
	}
	return wrapped
}

// wrapText breaks text into lines at most width cells wide. Words wider
// than width are split.
func wrapText(text string, width int) []string {
	if width < 1 {
		return strings.Split(text, "\n")
	}
	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		words := strings.Fields(p)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range words {
			for visibleLen(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					head = string([]rune(word)[:1])
				}
				out = append(out, head)
				word = word[len(head):]
			}
			switch {
			case word == "":
			case line == "":
				line = word
			case visibleLen(line)+1+visibleLen(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func trimBlankLines(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines) - 1
	for end >= start && strings.TrimSpace(lines[end]) == "" {
		end--
	}
	if end < start {
		return nil
	}
	out := make([]string, 0, end-start+1)
	prevBlank := false
	for i := start; i <= end; i++ {
		blank := strings.TrimSpace(lines[i]) == ""
		if blank && prevBlank {
			continue
		}
		out = append(out, lines[i])
		prevBlank = blank
	}
	return out
}

func visibleLen(s string) int {
	return runewidth.StringWidth(stripANSI(s))
}

func stripANSI(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}

func findBodyNode(node *nethtml.Node) *nethtml.Node {
	if node == nil {
		return nil
	}
	if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, "body") {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findBodyNode(child); found != nil {
			return found
		}
	}
	return nil
}

func elementChildren(node *nethtml.Node) []*nethtml.Node {
	children := make([]*nethtml.Node, 0, 4)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.TextNode && strings.TrimSpace(child.Data) == "" {
			continue
		}
		children = append(children, child)
	}
	return children
}

func nodeAttr(node *nethtml.Node, name string) string {
	for _, attr := range node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

func collectRawText(node *nethtml.Node) string {
	if node == nil {
		return ""
	}
	if node.Type == nethtml.TextNode {
		return node.Data
	}
	var b strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(collectRawText(child))
	}
	return b.String()
}

func isBlockElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "h1", "h2", "h3", "h4", "h5", "h6",
		"p", "div", "section", "article", "header", "footer",
		"blockquote", "ul", "ol", "li", "pre", "hr", "figure":
		return true
	default:
		return false
	}
}

func hasBlockChild(node *nethtml.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.ElementNode && isBlockElement(child.Data) {
			return true
		}
	}
	return false
}

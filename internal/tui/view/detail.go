package view

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/glabrego/pkbrowse/internal/perkeep"
	"github.com/glabrego/pkbrowse/internal/render/describe"
)

type DetailInput struct {
	Ref        string
	Blob       perkeep.DescribedBlob
	Described  bool
	Title      string
	Members    []string
	URL        string
	Selected   bool
	CurrentSet bool
}

// DetailLines lays out the detail pane for one item.
func DetailLines(in DetailInput, width int, wrap WrapFunc) []string {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.Ref
	}
	lines := make([]string, 0, 24)
	lines = append(lines, wrap(title, width)...)
	lines = append(lines, strings.Repeat("=", max(1, min(width, visibleLen(title)))))
	lines = append(lines, "")
	lines = append(lines, wrap("Ref: "+in.Ref, width)...)

	var marks []string
	if in.Selected {
		marks = append(marks, "selected")
	}
	if in.CurrentSet {
		marks = append(marks, "current set")
	}
	if len(marks) > 0 {
		lines = append(lines, "State: "+strings.Join(marks, ", "))
	}

	if !in.Described {
		lines = append(lines, "", "Not described in the current results.")
		return appendURL(lines, in.URL, width, wrap)
	}

	b := in.Blob
	if b.CamliType != "" {
		lines = append(lines, "Type: "+b.CamliType)
	}
	if b.IsPermanode() && b.IsDynamicCollection() {
		lines = append(lines, "Collection: yes")
	}
	if b.Permanode != nil && !b.Permanode.ModTime.IsZero() {
		lines = append(lines, "Modified: "+b.Permanode.ModTime.UTC().Format(time.RFC3339))
	}
	if b.File != nil {
		lines = append(lines, wrap(fileLine(b.File), width)...)
	}
	if b.Image != nil {
		lines = append(lines, fmt.Sprintf("Image: %dx%d", b.Image.Width, b.Image.Height))
	}

	if b.Permanode != nil && len(b.Permanode.Attr) > 0 {
		names := make([]string, 0, len(b.Permanode.Attr))
		for name := range b.Permanode.Attr {
			switch name {
			case perkeep.AttrDescription, perkeep.AttrMember:
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) > 0 {
			lines = append(lines, "", "Attributes:")
			for _, name := range names {
				lines = append(lines, wrap("  "+name+": "+strings.Join(b.Permanode.Attr[name], ", "), width)...)
			}
		}
	}

	if desc := b.Attr(perkeep.AttrDescription); desc != "" {
		lines = append(lines, "", "Description:")
		for _, line := range describe.Lines(desc, width-2) {
			lines = append(lines, "  "+line)
		}
	}

	if len(in.Members) > 0 {
		lines = append(lines, "", fmt.Sprintf("Members (%d):", len(in.Members)))
		for _, m := range in.Members {
			lines = append(lines, "  - "+truncate(m, width-4))
		}
	}
	return appendURL(lines, in.URL, width, wrap)
}

func fileLine(f *perkeep.FileInfo) string {
	parts := []string{fmt.Sprintf("%d bytes", f.Size)}
	if f.MIMEType != "" {
		parts = append(parts, f.MIMEType)
	}
	name := f.FileName
	if name == "" {
		name = "(unnamed)"
	}
	return "File: " + name + " (" + strings.Join(parts, ", ") + ")"
}

func appendURL(lines []string, url string, width int, wrap WrapFunc) []string {
	if url == "" {
		return lines
	}
	return append(append(lines, ""), wrap("URL: "+url, width)...)
}

func DetailMaxTop(linesLen, bodyHeight int) int {
	return max(0, linesLen-bodyHeight)
}

func RenderDetailLines(lines []string, top, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	top = min(max(0, top), len(lines)-1)
	end := len(lines)
	if maxLines > 0 && top+maxLines < end {
		end = top + maxLines
	}
	return strings.Join(lines[top:end], "\n") + "\n"
}

// Package markdown implements core.Parser for markdown documents with optional
// YAML frontmatter.
//
// A document is split into headings, fenced code blocks, list items and
// paragraphs. Code blocks keep their fences and list items keep their marker,
// so serializing the parsed blocks reproduces the document modulo blank-line
// normalization. Block ids are derived from type and content, which keeps them
// stable across re-parses of unchanged blocks.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/blockedit/pkg/core"
)

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.*?)(?:\s+#+)?\s*$`)
	listItemRe = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s+`)
	fenceRe    = regexp.MustCompile("^\\s*(```+|~~~+)")
)

// Parser is the markdown core.Parser.
type Parser struct{}

// New returns a markdown parser.
func New() *Parser {
	return &Parser{}
}

var _ core.MetadataParser = (*Parser)(nil)

// Parse splits content into blocks. Frontmatter, if any, is skipped.
func (p *Parser) Parse(content string) ([]core.Block, error) {
	_, blocks, err := p.ParseDocument(content)
	return blocks, err
}

// ParseDocument splits content into frontmatter metadata and blocks.
func (p *Parser) ParseDocument(content string) (core.Metadata, []core.Block, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	meta, body, offset, err := splitFrontmatter(content)
	if err != nil {
		return nil, nil, err
	}
	return meta, parseBody(body, offset), nil
}

type builder struct {
	blocks []core.Block
	seen   map[string]int
}

func (b *builder) add(typ core.BlockType, content string, level, start, end int) {
	seed := fmt.Sprintf("%s\x00%s", typ, content)
	n := b.seen[seed]
	b.seen[seed] = n + 1
	b.blocks = append(b.blocks, core.Block{
		ID:        core.StableID("blk", fmt.Sprintf("%s\x00%d", seed, n)),
		Type:      typ,
		Content:   content,
		Level:     level,
		Order:     len(b.blocks),
		LineStart: start,
		LineEnd:   end,
	})
}

// parseBody scans body line by line. offset is the number of lines that
// precede body in the original document.
func parseBody(body string, offset int) []core.Block {
	lines := strings.Split(body, "\n")
	b := &builder{seen: make(map[string]int)}

	var (
		para      []string
		paraStart int
		item      []string
		itemStart int
	)
	flushPara := func(end int) {
		if len(para) > 0 {
			b.add(core.BlockParagraph, strings.Join(para, "\n"), 0, paraStart, end)
			para = nil
		}
	}
	flushItem := func(end int) {
		if len(item) > 0 {
			b.add(core.BlockListItem, strings.Join(item, "\n"), 0, itemStart, end)
			item = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		lineNo := offset + i + 1

		if m := fenceRe.FindStringSubmatch(line); m != nil {
			flushPara(lineNo - 1)
			flushItem(lineNo - 1)
			fence := m[1]
			j := i + 1
			for j < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[j]), fence) {
				j++
			}
			if j == len(lines) {
				// Unclosed fence runs to the end of the document.
				j = len(lines) - 1
			}
			b.add(core.BlockCode, strings.Join(lines[i:j+1], "\n"), 0, lineNo, offset+j+1)
			i = j
			continue
		}

		if strings.TrimSpace(line) == "" {
			flushPara(lineNo - 1)
			flushItem(lineNo - 1)
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			flushPara(lineNo - 1)
			flushItem(lineNo - 1)
			b.add(core.BlockHeading, m[2], len(m[1]), lineNo, lineNo)
			continue
		}

		if listItemRe.MatchString(line) {
			flushPara(lineNo - 1)
			flushItem(lineNo - 1)
			item = []string{line}
			itemStart = lineNo
			continue
		}

		// Indented continuation of the current list item.
		if len(item) > 0 && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			item = append(item, line)
			continue
		}

		flushItem(lineNo - 1)
		if len(para) == 0 {
			paraStart = lineNo
		}
		para = append(para, line)
	}
	end := offset + len(lines)
	flushPara(end)
	flushItem(end)
	return b.blocks
}

// Serialize renders blocks as markdown. Blocks are separated by a blank line,
// except consecutive list items which form one list.
func (p *Parser) Serialize(blocks []core.Block) (string, error) {
	var sb strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			sb.WriteString("\n")
			if !(blk.Type == core.BlockListItem && blocks[i-1].Type == core.BlockListItem) {
				sb.WriteString("\n")
			}
		}
		sb.WriteString(render(blk))
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// SerializeDocument renders metadata as frontmatter followed by the blocks.
func (p *Parser) SerializeDocument(meta core.Metadata, blocks []core.Block) (string, error) {
	body, err := p.Serialize(blocks)
	if err != nil {
		return "", err
	}
	return joinFrontmatter(meta, body)
}

// render writes one block so that parsing the output yields the same block
// type: unclosed fences are closed, and paragraph lines that would open a
// heading, list item or fence are escaped with a backslash.
func render(b core.Block) string {
	content := strings.TrimRight(b.Content, "\n")
	switch b.Type {
	case core.BlockHeading:
		level := b.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return strings.Repeat("#", level) + " " + strings.TrimSpace(strings.ReplaceAll(content, "\n", " "))
	case core.BlockCode:
		if m := fenceRe.FindStringSubmatch(content); m != nil {
			if !closesFence(content, m[1]) {
				return content + "\n" + m[1]
			}
			return content
		}
		fence := fenceFor(content)
		return fence + "\n" + content + "\n" + fence
	case core.BlockListItem:
		lines := strings.Split(content, "\n")
		if !listItemRe.MatchString(lines[0]) {
			lines[0] = "- " + lines[0]
		}
		for i := 1; i < len(lines); i++ {
			if lines[i] != "" && !strings.HasPrefix(lines[i], " ") && !strings.HasPrefix(lines[i], "\t") {
				lines[i] = "  " + lines[i]
			}
		}
		return strings.Join(lines, "\n")
	default:
		lines := strings.Split(content, "\n")
		for i, line := range lines {
			lines[i] = escapeLine(line)
		}
		return strings.Join(lines, "\n")
	}
}

// closesFence reports whether a line after the first one closes fence.
func closesFence(content, fence string) bool {
	lines := strings.Split(content, "\n")
	for _, line := range lines[1:] {
		if strings.HasPrefix(strings.TrimSpace(line), fence) {
			return true
		}
	}
	return false
}

// fenceFor returns a backtick fence longer than any backtick run that starts
// a line of content.
func fenceFor(content string) string {
	n := 3
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		run := len(trimmed) - len(strings.TrimLeft(trimmed, "`"))
		if run >= n {
			n = run + 1
		}
	}
	return strings.Repeat("`", n)
}

func escapeLine(line string) string {
	if m := listItemRe.FindStringSubmatchIndex(line); m != nil {
		at := m[2]
		if marker := line[m[2]:m[3]]; marker[0] >= '0' && marker[0] <= '9' {
			at = m[3] - 1
		}
		return line[:at] + "\\" + line[at:]
	}
	if headingRe.MatchString(line) || fenceRe.MatchString(line) {
		at := len(line) - len(strings.TrimLeft(line, " \t"))
		return line[:at] + "\\" + line[at:]
	}
	return line
}

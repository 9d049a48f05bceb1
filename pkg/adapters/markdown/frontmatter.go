package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/blockedit/pkg/core"
)

const delimiter = "---"

// splitFrontmatter separates a leading YAML block delimited by "---" lines.
// It returns the metadata, the remaining body and the number of lines consumed.
func splitFrontmatter(content string) (core.Metadata, string, int, error) {
	if !strings.HasPrefix(content, delimiter+"\n") {
		return nil, content, 0, nil
	}

	rest := content[len(delimiter)+1:]
	var yamlPart, body string
	switch {
	case strings.HasPrefix(rest, delimiter+"\n") || rest == delimiter:
		body = strings.TrimPrefix(rest, delimiter)
	default:
		idx := strings.Index(rest, "\n"+delimiter+"\n")
		if idx < 0 {
			if !strings.HasSuffix(rest, "\n"+delimiter) {
				return nil, "", 0, errors.New("frontmatter started but no closing delimiter found")
			}
			idx = len(rest) - len(delimiter) - 1
		}
		yamlPart = rest[:idx+1]
		body = rest[idx+1+len(delimiter):]
	}
	body = strings.TrimPrefix(body, "\n")

	meta := make(core.Metadata)
	if err := yaml.Unmarshal([]byte(yamlPart), &meta); err != nil {
		return nil, "", 0, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	consumed := strings.Count(content[:len(content)-len(body)], "\n")
	return meta, body, consumed, nil
}

// joinFrontmatter prefixes body with meta encoded as YAML frontmatter.
// Empty metadata produces no frontmatter.
func joinFrontmatter(meta core.Metadata, body string) (string, error) {
	if len(meta) == 0 {
		return body, nil
	}
	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(meta); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}
	buf.WriteString(delimiter + "\n")
	buf.WriteString(body)
	return buf.String(), nil
}

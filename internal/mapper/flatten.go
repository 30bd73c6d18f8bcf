package mapper

import (
	"strings"

	"github.com/adrycodes/anthro-bridge/internal/wire"
)

// flattenBlocks concatenates text blocks and renders placeholders for
// image/unknown/tool blocks, per §4.1's system-prompt and message-text
// flattening rule.
func flattenBlocks(blocks []wire.ContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		switch b.Type {
		case wire.ContentBlockText:
			sb.WriteString(b.Text)
		case wire.ContentBlockImage:
			sb.WriteString("[image omitted]")
		default:
			sb.WriteString("[unsupported content omitted]")
		}
	}
	return sb.String()
}

// flattenSystem renders the Request.System field to plain text.
func flattenSystem(s *wire.SystemField) string {
	if s == nil {
		return ""
	}
	if s.Blocks != nil {
		return flattenBlocks(s.Blocks)
	}
	return s.Text
}

// flattenMessageText concatenates only the text blocks of a message's
// content (used for the Chat Completions base-message text and the
// Responses API per-message leading text item).
func flattenMessageText(c wire.MessageContent) string {
	if c.IsText {
		return c.Text
	}
	var sb strings.Builder
	for _, b := range c.Blocks {
		if b.Type == wire.ContentBlockText {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// flattenToolResultContent renders a tool_result's content to text, per the
// §10.7(2) resolution: string content passes through, nested blocks are
// flattened the same way top-level content is.
func flattenToolResultContent(c *wire.ToolResultBody) string {
	if c == nil {
		return ""
	}
	if c.IsText {
		return c.Text
	}
	return flattenBlocks(c.Blocks)
}

// contentBlocks normalizes a message's content into a block slice, wrapping
// bare-string content as a single text block.
func contentBlocks(c wire.MessageContent) []wire.ContentBlock {
	if c.IsText {
		if c.Text == "" {
			return nil
		}
		return []wire.ContentBlock{{Type: wire.ContentBlockText, Text: c.Text}}
	}
	return c.Blocks
}

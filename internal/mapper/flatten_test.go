package mapper

import (
	"testing"

	"github.com/adrycodes/anthro-bridge/internal/wire"
)

func TestFlattenBlocks_TextImageAndUnsupported(t *testing.T) {
	blocks := []wire.ContentBlock{
		{Type: wire.ContentBlockText, Text: "hello "},
		{Type: wire.ContentBlockImage},
		{Type: wire.ContentBlockToolUse},
	}
	got := flattenBlocks(blocks)
	want := "hello [image omitted][unsupported content omitted]"
	if got != want {
		t.Errorf("flattenBlocks = %q, want %q", got, want)
	}
}

func TestFlattenSystem_NilAndVariants(t *testing.T) {
	if got := flattenSystem(nil); got != "" {
		t.Errorf("flattenSystem(nil) = %q, want empty", got)
	}
	if got := flattenSystem(&wire.SystemField{Text: "be terse"}); got != "be terse" {
		t.Errorf("flattenSystem(text) = %q", got)
	}
	blockField := &wire.SystemField{Blocks: []wire.ContentBlock{{Type: wire.ContentBlockText, Text: "be terse"}}}
	if got := flattenSystem(blockField); got != "be terse" {
		t.Errorf("flattenSystem(blocks) = %q", got)
	}
}

func TestFlattenMessageText_TextVsBlocks(t *testing.T) {
	textContent := wire.MessageContent{IsText: true, Text: "hi"}
	if got := flattenMessageText(textContent); got != "hi" {
		t.Errorf("flattenMessageText(text) = %q", got)
	}

	blockContent := wire.MessageContent{Blocks: []wire.ContentBlock{
		{Type: wire.ContentBlockText, Text: "hi "},
		{Type: wire.ContentBlockToolUse, Name: "ignored"},
		{Type: wire.ContentBlockText, Text: "there"},
	}}
	if got := flattenMessageText(blockContent); got != "hi there" {
		t.Errorf("flattenMessageText(blocks) = %q, want only text blocks concatenated", got)
	}
}

func TestFlattenToolResultContent_NilStringAndBlocks(t *testing.T) {
	if got := flattenToolResultContent(nil); got != "" {
		t.Errorf("flattenToolResultContent(nil) = %q", got)
	}
	if got := flattenToolResultContent(&wire.ToolResultBody{IsText: true, Text: "72F"}); got != "72F" {
		t.Errorf("flattenToolResultContent(text) = %q", got)
	}
	blocks := &wire.ToolResultBody{Blocks: []wire.ContentBlock{{Type: wire.ContentBlockText, Text: "72F"}}}
	if got := flattenToolResultContent(blocks); got != "72F" {
		t.Errorf("flattenToolResultContent(blocks) = %q", got)
	}
}

func TestContentBlocks_WrapsAndEmptyString(t *testing.T) {
	if got := contentBlocks(wire.MessageContent{IsText: true, Text: ""}); got != nil {
		t.Errorf("contentBlocks(empty text) = %+v, want nil", got)
	}
	got := contentBlocks(wire.MessageContent{IsText: true, Text: "hi"})
	if len(got) != 1 || got[0].Type != wire.ContentBlockText || got[0].Text != "hi" {
		t.Errorf("contentBlocks(text) = %+v", got)
	}
	blocks := []wire.ContentBlock{{Type: wire.ContentBlockToolUse}}
	if got := contentBlocks(wire.MessageContent{Blocks: blocks}); len(got) != 1 {
		t.Errorf("contentBlocks(blocks) = %+v, want passthrough", got)
	}
}

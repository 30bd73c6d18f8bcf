package mapper

import (
	"encoding/json"
	"testing"

	"github.com/adrycodes/anthro-bridge/internal/wire"
)

func TestToResponsesRequest_BasicTextTurn(t *testing.T) {
	req := wire.Request{
		Model:     "gpt-5",
		MaxTokens: 256,
		System:    &wire.SystemField{Text: "be terse"},
		Messages: []wire.Message{
			{Role: wire.RoleUser, Content: wire.MessageContent{Text: "hi", IsText: true}},
		},
	}

	out := ToResponsesRequest(req)

	if out.Model != "gpt-5" {
		t.Errorf("Model = %q, want gpt-5", out.Model)
	}
	if out.MaxOutputTokens == nil || *out.MaxOutputTokens != 256 {
		t.Fatalf("MaxOutputTokens = %v, want 256", out.MaxOutputTokens)
	}
	if out.Instructions != "be terse" {
		t.Errorf("Instructions = %q, want be terse", out.Instructions)
	}
	if out.Store {
		t.Error("Store should be false (this proxy never asks OpenAI to retain state)")
	}
	if len(out.Input) != 1 || out.Input[0].Role != "user" || out.Input[0].Content != "hi" {
		t.Fatalf("Input = %+v", out.Input)
	}
}

func TestToResponsesRequest_ToolUseAndToolResultExpandToItems(t *testing.T) {
	req := wire.Request{
		Model: "gpt-5",
		Messages: []wire.Message{
			{
				Role: wire.RoleAssistant,
				Content: wire.MessageContent{Blocks: []wire.ContentBlock{
					{Type: wire.ContentBlockToolUse, ID: "call_1", Name: "get_weather", Input: json.RawMessage(`{"city":"ny"}`)},
				}},
			},
			{
				Role: wire.RoleUser,
				Content: wire.MessageContent{Blocks: []wire.ContentBlock{
					{Type: wire.ContentBlockToolResult, ToolUseID: "call_1", Content: &wire.ToolResultBody{Text: "72F", IsText: true}},
				}},
			},
		},
	}

	out := ToResponsesRequest(req)

	if len(out.Input) != 2 {
		t.Fatalf("Input = %+v, want 2 items (no leading text item since neither turn has plain text)", out.Input)
	}
	fc := out.Input[0]
	if fc.Type != "function_call" || fc.CallID != "call_1" || fc.Name != "get_weather" || fc.Arguments != `{"city":"ny"}` {
		t.Errorf("function_call item = %+v", fc)
	}
	fo := out.Input[1]
	if fo.Type != "function_call_output" || fo.CallID != "call_1" || fo.Output != "72F" {
		t.Errorf("function_call_output item = %+v", fo)
	}
}

func TestToResponsesRequest_ToolErrorPrefixesOutput(t *testing.T) {
	req := wire.Request{
		Model: "gpt-5",
		Messages: []wire.Message{
			{
				Role: wire.RoleUser,
				Content: wire.MessageContent{Blocks: []wire.ContentBlock{
					{Type: wire.ContentBlockToolResult, ToolUseID: "call_1", IsError: true, Content: &wire.ToolResultBody{Text: "boom", IsText: true}},
				}},
			},
		},
	}

	out := ToResponsesRequest(req)
	if len(out.Input) != 1 || out.Input[0].Output != "[tool_error] boom" {
		t.Fatalf("Input = %+v", out.Input)
	}
}

func TestResponseToolsFrom_SkipsUnnamedTools(t *testing.T) {
	tools := []wire.Tool{
		{Name: "get_weather", Description: "fetch weather"},
		{Name: ""},
	}
	out := responseToolsFrom(tools)
	if len(out) != 1 || out[0].Type != "function" || out[0].Name != "get_weather" {
		t.Errorf("responseToolsFrom = %+v", out)
	}
}

func TestResponsesToolChoiceFrom_NamedAndModes(t *testing.T) {
	named := responsesToolChoiceFrom(wire.ToolChoice{IsNamed: true, Name: "get_weather"})
	var namedObj map[string]string
	if err := json.Unmarshal(named, &namedObj); err != nil {
		t.Fatalf("unmarshal named: %v", err)
	}
	if namedObj["type"] != "function" || namedObj["name"] != "get_weather" {
		t.Errorf("named = %+v", namedObj)
	}

	auto := responsesToolChoiceFrom(wire.ToolChoice{Mode: wire.ToolChoiceAuto})
	if string(auto) != `"auto"` {
		t.Errorf("auto = %s", auto)
	}

	fallback := responsesToolChoiceFrom(wire.ToolChoice{Mode: "bogus"})
	if string(fallback) != `"auto"` {
		t.Errorf("fallback = %s, want auto for an unrecognized mode", fallback)
	}
}

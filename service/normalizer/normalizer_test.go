package normalizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cwlpack/cwlpack/internal/yml"
	"github.com/cwlpack/cwlpack/model"
)

func parse(t *testing.T, text string) *yml.Node {
	node, err := yml.Parse([]byte(text))
	assert.NoError(t, err)
	return node
}

func TestNormalize(t *testing.T) {
	graph := model.NewGraph()

	root := &model.Node{
		Location: model.Location{URL: "/flows/wf.cwl"},
		Kind:     model.KindProcess,
		Class:    "Workflow",
		Content:  parse(t, "class: Workflow\nsteps:\n  - id: s1\n    run: /a/tool.cwl\n  - id: s2\n    run: /b/tool.cwl\n"),
	}
	toolA := &model.Node{
		Location: model.Location{URL: "/a/tool.cwl"},
		Kind:     model.KindProcess,
		Class:    "CommandLineTool",
		Content:  parse(t, "class: CommandLineTool\ninputs:\n  - id: x\n    type: Rec\n"),
	}
	toolB := &model.Node{
		Location: model.Location{URL: "/b/tool.cwl"},
		Kind:     model.KindProcess,
		Class:    "CommandLineTool",
		Content:  parse(t, "class: CommandLineTool\n"),
	}
	rec := &model.Node{
		Location: model.Location{URL: "/a/types.yml", Fragment: "Rec"},
		Kind:     model.KindSchemaType,
		Content:  parse(t, "name: Rec\ntype: record\nfields: []\n"),
	}
	graph.Add(root)
	graph.Add(toolA)
	graph.Add(rec)
	graph.Add(toolB)

	runValue := func(index int) *yml.Node {
		var value *yml.Node
		_ = root.Content.Lookup("steps").Items(func(i int, step *yml.Node) error {
			if i == index {
				value = step.Lookup("run")
			}
			return nil
		})
		return value
	}
	root.AddRef(&model.Reference{Kind: model.RefRun, Path: []string{"steps", "s1", "run"}, Node: toolA, Value: runValue(0)})
	root.AddRef(&model.Reference{Kind: model.RefRun, Path: []string{"steps", "s2", "run"}, Node: toolB, Value: runValue(1)})

	var typeValue *yml.Node
	_ = toolA.Content.Lookup("inputs").Items(func(i int, input *yml.Node) error {
		typeValue = input.Lookup("type")
		return nil
	})
	toolA.AddRef(&model.Reference{Kind: model.RefType, Path: []string{"inputs", "x", "type"}, Node: rec, Value: typeValue})

	result, err := Normalize(graph)
	assert.NoError(t, err)

	assert.EqualValues(t, RootID, root.ID)
	assert.EqualValues(t, "tool", toolA.ID)
	assert.EqualValues(t, "Rec", rec.ID)
	// same base name claimed later gets a numeric suffix
	assert.EqualValues(t, "tool_2", toolB.ID)

	assert.EqualValues(t, "#tool", runValue(0).Value)
	assert.EqualValues(t, "#tool_2", runValue(1).Value)
	assert.EqualValues(t, "Rec", typeValue.Value)

	assert.Len(t, result.Processes(), 2)
	assert.Len(t, result.Schemas(), 1)
	assert.Same(t, root, result.Root)
}

func TestNormalize_FallbackIdentifier(t *testing.T) {
	graph := model.NewGraph()
	root := &model.Node{Location: model.Location{URL: "/wf.cwl"}, Kind: model.KindProcess, Content: parse(t, "class: Workflow\n")}
	nameless := &model.Node{Location: model.Location{URL: "///"}, Kind: model.KindProcess, Content: parse(t, "class: CommandLineTool\n")}
	graph.Add(root)
	graph.Add(nameless)

	_, err := Normalize(graph)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(nameless.ID, "process_"), nameless.ID)
	assert.Greater(t, len(nameless.ID), len("process_"))
}

func TestNormalize_DanglingReference(t *testing.T) {
	graph := model.NewGraph()
	root := &model.Node{Location: model.Location{URL: "/wf.cwl"}, Kind: model.KindProcess, Content: parse(t, "class: Workflow\n")}
	graph.Add(root)
	root.AddRef(&model.Reference{Kind: model.RefRun, Raw: "tool.cwl", Path: []string{"steps", "s1", "run"}})

	_, err := Normalize(graph)
	var unresolved *model.UnresolvedReferenceError
	assert.ErrorAs(t, err, &unresolved)
}

func TestSanitize(t *testing.T) {
	assert.EqualValues(t, "align-v2.1", sanitize("align-v2.1"))
	assert.EqualValues(t, "my_tool_1_", sanitize("my tool(1)"))
}

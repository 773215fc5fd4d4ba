package dedup

import (
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

func fieldType(t *testing.T, rec *model.Node) *yml.Node {
	var value *yml.Node
	_ = rec.Content.Lookup("fields").Items(func(i int, field *yml.Node) error {
		value = field.Lookup("type")
		return nil
	})
	assert.NotNil(t, value)
	return value
}

func TestDedupe(t *testing.T) {
	graph := model.NewGraph()

	root := &model.Node{
		Location: model.Location{URL: "/wf.cwl"},
		Kind:     model.KindProcess,
		Content:  parse(t, "class: Workflow\ninputs:\n  - id: s\n    type: Sample\n  - id: o\n    type: Sample_2\n"),
	}
	sampleA := &model.Node{
		Location: model.Location{URL: "/a/types.yml", Fragment: "Sample"},
		Kind:     model.KindSchemaType,
		ID:       "Sample",
		Content:  parse(t, "name: Sample\ntype: record\nfields:\n  - name: prop\n    type: string\n"),
	}
	sampleB := &model.Node{
		Location: model.Location{URL: "/b/types.yml", Fragment: "Sample"},
		Kind:     model.KindSchemaType,
		ID:       "Sample_2",
		Content:  parse(t, "name: Sample\ntype: record\nfields:\n  - name: prop\n    type: string\n"),
	}
	graph.Add(root)
	graph.Add(sampleA)
	graph.Add(sampleB)

	var first, second *yml.Node
	_ = root.Content.Lookup("inputs").Items(func(i int, input *yml.Node) error {
		if i == 0 {
			first = input.Lookup("type")
		} else {
			second = input.Lookup("type")
		}
		return nil
	})
	root.AddRef(&model.Reference{Kind: model.RefType, Node: sampleA, Value: first})
	root.AddRef(&model.Reference{Kind: model.RefType, Node: sampleB, Value: second})

	defs := []model.Definition{
		{ID: "Sample", Node: sampleA},
		{ID: "Sample_2", Node: sampleB},
	}
	merged := Dedupe(graph, defs)

	assert.Len(t, merged, 1)
	assert.EqualValues(t, "Sample", merged[0].ID)
	assert.EqualValues(t, "Sample", second.Value)
	assert.Same(t, sampleA, root.Refs[1].Node)
}

// Two records only hash equal once the types they reference have been merged
// themselves; the pass has to iterate.
func TestDedupe_Chained(t *testing.T) {
	graph := model.NewGraph()

	root := &model.Node{
		Location: model.Location{URL: "/wf.cwl"},
		Kind:     model.KindProcess,
		Content:  parse(t, "class: Workflow\ninputs:\n  - id: x\n    type: Rec_2\n"),
	}
	pairA := &model.Node{
		Location: model.Location{URL: "/a/types.yml", Fragment: "Pair"},
		Kind:     model.KindSchemaType,
		ID:       "Pair",
		Content:  parse(t, "name: Pair\ntype: record\nfields:\n  - name: left\n    type: string\n"),
	}
	pairB := &model.Node{
		Location: model.Location{URL: "/b/types.yml", Fragment: "Pair"},
		Kind:     model.KindSchemaType,
		ID:       "Pair_2",
		Content:  parse(t, "name: Pair\ntype: record\nfields:\n  - name: left\n    type: string\n"),
	}
	recA := &model.Node{
		Location: model.Location{URL: "/a/types.yml", Fragment: "Rec"},
		Kind:     model.KindSchemaType,
		ID:       "Rec",
		Content:  parse(t, "name: Rec\ntype: record\nfields:\n  - name: p\n    type: Pair\n"),
	}
	recB := &model.Node{
		Location: model.Location{URL: "/b/types.yml", Fragment: "Rec"},
		Kind:     model.KindSchemaType,
		ID:       "Rec_2",
		Content:  parse(t, "name: Rec\ntype: record\nfields:\n  - name: p\n    type: Pair_2\n"),
	}
	for _, node := range []*model.Node{root, pairA, recA, pairB, recB} {
		graph.Add(node)
	}

	recA.AddRef(&model.Reference{Kind: model.RefType, Node: pairA, Value: fieldType(t, recA)})
	recB.AddRef(&model.Reference{Kind: model.RefType, Node: pairB, Value: fieldType(t, recB)})
	var rootType *yml.Node
	_ = root.Content.Lookup("inputs").Items(func(i int, input *yml.Node) error {
		rootType = input.Lookup("type")
		return nil
	})
	root.AddRef(&model.Reference{Kind: model.RefType, Node: recB, Value: rootType})

	defs := []model.Definition{
		{ID: "Pair", Node: pairA},
		{ID: "Rec", Node: recA},
		{ID: "Pair_2", Node: pairB},
		{ID: "Rec_2", Node: recB},
	}
	merged := Dedupe(graph, defs)

	assert.Len(t, merged, 2)
	assert.EqualValues(t, "Pair", merged[0].ID)
	assert.EqualValues(t, "Rec", merged[1].ID)
	assert.EqualValues(t, "Rec", rootType.Value)
	assert.Same(t, recA, root.Refs[0].Node)
}

func TestDedupe_KeepsDistinctTypes(t *testing.T) {
	graph := model.NewGraph()
	a := &model.Node{
		Location: model.Location{URL: "/a.yml", Fragment: "A"},
		Kind:     model.KindSchemaType,
		ID:       "A",
		Content:  parse(t, "name: A\ntype: record\nfields:\n  - name: x\n    type: string\n"),
	}
	b := &model.Node{
		Location: model.Location{URL: "/b.yml", Fragment: "B"},
		Kind:     model.KindSchemaType,
		ID:       "B",
		Content:  parse(t, "name: B\ntype: record\nfields:\n  - name: x\n    type: int\n"),
	}
	graph.Add(a)
	graph.Add(b)

	merged := Dedupe(graph, []model.Definition{{ID: "A", Node: a}, {ID: "B", Node: b}})
	assert.Len(t, merged, 2)
}

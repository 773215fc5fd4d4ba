package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraph(t *testing.T) {
	graph := NewGraph()
	root := &Node{Location: ParseLocation("/flows/wf.cwl"), Kind: KindProcess}
	tool := &Node{Location: ParseLocation("/flows/tool.cwl"), Kind: KindProcess}
	graph.Add(root)
	graph.Add(tool)

	assert.Same(t, root, graph.Root)
	assert.Same(t, tool, graph.Lookup(ParseLocation("/flows/tool.cwl")))
	assert.Nil(t, graph.Lookup(ParseLocation("/flows/other.cwl")))
	assert.Len(t, graph.Nodes(), 2)

	// re-adding an already registered location keeps the original node
	graph.Add(&Node{Location: ParseLocation("/flows/wf.cwl")})
	assert.Len(t, graph.Nodes(), 2)
	assert.Same(t, root, graph.Root)
}

func TestGraph_References(t *testing.T) {
	graph := NewGraph()
	root := &Node{Location: ParseLocation("/flows/wf.cwl")}
	tool := &Node{Location: ParseLocation("/flows/tool.cwl")}
	root.AddRef(&Reference{Kind: RefRun, Raw: "tool.cwl"})
	tool.AddRef(&Reference{Kind: RefType, Raw: "types.yml#Sample"})
	graph.Add(root)
	graph.Add(tool)

	refs := graph.References()
	assert.Len(t, refs, 2)
	assert.Same(t, root, refs[0].Owner)
	assert.Same(t, tool, refs[1].Owner)
}

package yml

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"reflect"
	"strconv"
	"strings"
)

type (
	Node yaml.Node
)

// Root unwraps a document node so that callers always operate on content.
func (n *Node) Root() *Node {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return (*Node)(n.Content[0])
	}
	return n
}

func (n *Node) Lookup(name string) *Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == name {
			return (*Node)(n.Content[i+1])
		}
	}
	return nil
}

// LookupString returns the scalar value of a mapping entry, or "".
func (n *Node) LookupString(name string) string {
	value := n.Lookup(name)
	if value == nil || value.Kind != yaml.ScalarNode {
		return ""
	}
	return value.Value
}

func (n *Node) Items(callback func(index int, node *Node) error) error {
	if n == nil {
		return nil
	}
	for i := 0; i < len(n.Content); i++ {
		value := n.Content[i]
		nodeValue := (*Node)(value)
		if err := callback(i, nodeValue); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) Pairs(callback func(key string, node *Node) error) error {
	if n == nil {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		value := n.Content[i+1]
		nodeValue := (*Node)(value)
		if err := callback(key, nodeValue); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) Interface() interface{} {
	switch n.Kind {
	case yaml.DocumentNode:
		return n.Root().Interface()
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!str":
			return n.Value
		case "!!bool":
			return parseBool(n.Value)
		case "!!null":
			return nil
		case "!!float":
			return parseFloat(n.Value)
		case "!!int":
			return parseInt(n.Value)
		default:
			return n.Value
		}
	case yaml.MappingNode:
		var aMap = make(map[string]interface{})
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			value := (*Node)(n.Content[i+1])
			aMap[key] = value.Interface()
		}
		return aMap
	case yaml.SequenceNode:
		var aSlice = make([]interface{}, 0)
		for i := 0; i < len(n.Content); i++ {
			value := (*Node)(n.Content[i])
			aSlice = append(aSlice, value.Interface())
		}
		return aSlice
	}
	return nil
}

func (n *Node) Append(value interface{}) {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
	default:
		panic("not a sequence node")
	}
	n.Content = append(n.Content, ValueNode(value))
}

func (n *Node) Put(key string, value interface{}) {
	if n.Kind != yaml.MappingNode { //sanity check
		panic("not a map node")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content[i+1] = ValueNode(value)
			return
		}
	}
	n.Content = append(n.Content, newScalar(key))
	n.Content = append(n.Content, ValueNode(value))
}

// PutFirst inserts or moves a mapping entry to the front, preserving the
// declared order of the remaining entries.
func (n *Node) PutFirst(key string, value interface{}) {
	if n.Kind != yaml.MappingNode {
		panic("not a map node")
	}
	n.Delete(key)
	content := make([]*yaml.Node, 0, len(n.Content)+2)
	content = append(content, newScalar(key), ValueNode(value))
	content = append(content, n.Content...)
	n.Content = content
}

// Delete removes a mapping entry, returning true when the key was present.
func (n *Node) Delete(key string) bool {
	if n == nil || n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content = append(n.Content[:i], n.Content[i+2:]...)
			return true
		}
	}
	return false
}

// Replace substitutes the value node at the given sequence index.
func (n *Node) Replace(index int, value interface{}) {
	if n.Kind != yaml.SequenceNode {
		panic("not a sequence node")
	}
	n.Content[index] = ValueNode(value)
}

// SetScalar rewrites the receiver in place into a string scalar. It is used
// when a reference has to be replaced without disturbing the position of the
// node within its parent.
func (n *Node) SetScalar(value string) {
	n.Kind = yaml.ScalarNode
	n.Tag = "!!str"
	n.Value = value
	n.Content = nil
	n.Anchor = ""
	n.Alias = nil
}

// SetFrom rewrites the receiver in place with the content of another node.
func (n *Node) SetFrom(other *Node) {
	n.Kind = other.Kind
	n.Style = 0
	n.Tag = other.Tag
	n.Value = other.Value
	n.Content = other.Content
	n.Anchor = ""
	n.Alias = nil
}

// Clone returns a deep copy. Packing mutates document trees and the fetcher
// cache must never observe those mutations.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &yaml.Node{
		Kind:   n.Kind,
		Style:  n.Style,
		Tag:    n.Tag,
		Value:  n.Value,
		Anchor: n.Anchor,
	}
	if len(n.Content) > 0 {
		clone.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			clone.Content[i] = (*yaml.Node)((*Node)(child).Clone())
		}
	}
	return (*Node)(clone)
}

func ValueNode(value interface{}) *yaml.Node {
	if value == nil {
		return newScalar(nil)
	}
	switch actual := value.(type) {
	case *Node:
		return (*yaml.Node)(actual)
	case yaml.Node:
		return &actual
	case *yaml.Node:
		return actual
	case Node:
		n := &actual
		return (*yaml.Node)(n)
	case string, []byte, int, int64, uint64, float64, float32, bool:
		return newScalar(value)
	case map[string]interface{}:
		aMap := (*Node)(NewMap())
		for k, v := range actual {
			aMap.Put(k, v)
		}
		return (*yaml.Node)(aMap)
	case map[string]string:
		aMap := (*Node)(NewMap())
		for k, v := range actual {
			aMap.Put(k, v)
		}
		return (*yaml.Node)(aMap)
	case []interface{}:
		aSlice := (*Node)(NewSlice())
		for j := range actual {
			aSlice.Append(actual[j])
		}
		return (*yaml.Node)(aSlice)
	case []string:
		aSlice := (*Node)(NewSlice())
		for j := range actual {
			aSlice.Append(actual[j])
		}
		return (*yaml.Node)(aSlice)
	default:
		panic(fmt.Sprintf("not supported yaml.node put type %T", actual))
	}
}

func NewSlice() *yaml.Node {
	return &yaml.Node{
		Kind: yaml.SequenceNode,
		Tag:  "!!seq",
	}
}

func NewMap() *yaml.Node {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}
}

func NewDocument() *yaml.Node {
	return &yaml.Node{
		Kind: yaml.DocumentNode,
	}
}

// Parse unmarshals YAML text and returns the unwrapped content node.
func Parse(data []byte) (*Node, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return (*Node)(&node).Root(), nil
}

// Marshal serializes a node back to YAML text.
func Marshal(n *Node) ([]byte, error) {
	return yaml.Marshal((*yaml.Node)(n))
}

func newScalar(value interface{}) *yaml.Node {

	rType := reflect.TypeOf(value)
	if rType != nil && rType.Kind() == reflect.Ptr {
		rValue := reflect.ValueOf(value)
		if rValue.IsNil() {
			value = nil
		} else {
			value = reflect.ValueOf(value).Elem().Interface()
		}
	}
	if value == nil {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!null",
			Value: "",
		}

	}
	tag := ""

	switch value.(type) {
	case string, []byte:
		tag = "!!str"
	case int, int64, uint64:
		tag = "!!int"
	case float64, float32:
		tag = "!!float"
	case bool:
		tag = "!!bool"
	default:
		tag = "!!str"
	}
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   tag,
		Value: parseString(value),
	}
}

func parseString(value interface{}) string {
	text, ok := value.(string)
	if ok {
		return text
	}
	switch v := value.(type) {
	case []byte:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return v.String()
	default:
		if value == nil {
			return ""
		}
		if reflect.TypeOf(value).Kind() == reflect.Ptr && reflect.ValueOf(value).IsNil() {
			return ""
		}
		return fmt.Sprintf("%v", value)
	}
}

// parseBool converts a value to a boolean.
func parseBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.ToLower(v) == "true"
	default:
		return false
	}
}

// parseFloat converts a value to a float64.
func parseFloat(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0.0
		}
		return f
	default:
		return 0.0
	}
}

// parseInt converts a value to an int.
func parseInt(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

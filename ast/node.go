// Package ast models compiler-produced abstract syntax trees without committing to any single compiler's
// node schema. Nodes are recognized structurally: any JSON object carrying one of the configured type keys
// is a node, and everything else is opaque attribute data. This lets the same queries serve solc
// (`nodeType`) and vyper (`ast_type`) output alike.
package ast

import (
	"bytes"
	"encoding/json"

	"github.com/crytic/ethdebug/sourcemaps"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Classification is a generic classification of what kind of AST node a Node is.
type Classification int

const (
	// Unclassified is the default classification for nodes with no recognized role.
	Unclassified Classification = iota

	// Function classifies nodes whose type marks them as defining a function.
	Function
)

// Config determines how nodes are recognized within arbitrary compiler AST output.
type Config struct {
	// TypeKeys lists the attribute names probed, in order, to resolve a node's type.
	TypeKeys []string

	// FunctionNodeTypes lists the type values which classify a node as a function definition.
	FunctionNodeTypes []string
}

// DefaultConfig returns the node recognition configuration covering vyper (`ast_type`, `FunctionDef`) and
// solc (`nodeType`) AST output.
func DefaultConfig() Config {
	return Config{
		TypeKeys:          []string{"ast_type", "nodeType"},
		FunctionNodeTypes: []string{"FunctionDef"},
	}
}

// ErrNotANode indicates a value could not be interpreted as an AST node because no configured type key
// was present.
var ErrNotANode = errors.New("not a valid AST node")

// Node is a single node within a compiler AST. It wraps the node's raw attributes, preserving their
// declaration order, and discovers nested nodes lazily. A parsed tree is immutable; all queries are
// derived views over the decoded attribute data.
type Node struct {
	attributes *object
	config     Config

	classification Classification

	// children memoizes the recursive descendant scan; nil until the first Children call.
	children []*Node
	scanned  bool
}

// Parse decodes an AST JSON document into its root Node using the provided configuration.
// Returns an error if the document is not a JSON object or carries none of the configured type keys.
func Parse(data []byte, config Config) (*Node, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	value, err := decodeValue(decoder)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode AST")
	}

	obj, ok := value.(*object)
	if !ok || !isNodeShaped(obj, config) {
		return nil, errors.Wrap(ErrNotANode, "AST root")
	}
	return newNode(obj, config), nil
}

// newNode wraps a decoded attribute object, classifying it from its resolved type value.
func newNode(attributes *object, config Config) *Node {
	node := &Node{attributes: attributes, config: config}
	for _, key := range config.TypeKeys {
		if typeValue, ok := attributes.values[key].(string); ok && typeValue != "" {
			if slices.Contains(config.FunctionNodeTypes, typeValue) {
				node.classification = Function
			}
			break
		}
	}
	return node
}

// Type returns the compiler-given node type, such as "FunctionDef", resolved from the first configured
// type key present on the node.
func (n *Node) Type() (string, error) {
	for _, key := range n.config.TypeKeys {
		if typeValue, ok := n.attributes.values[key].(string); ok && typeValue != "" {
			return typeValue, nil
		}
	}
	return "", errors.Wrap(ErrNotANode, "missing node type")
}

// Classification returns the node's generic classification.
func (n *Node) Classification() Classification {
	return n.classification
}

// Name returns the node's name if it has one, such as a function name, or an empty string.
func (n *Node) Name() string {
	name, _ := n.attributes.values["name"].(string)
	return name
}

// Attribute returns the raw decoded value of the named attribute. Object-valued attributes are returned
// as map[string]any copies; callers wanting nested nodes should use Children.
func (n *Node) Attribute(key string) (any, bool) {
	value, ok := n.attributes.values[key]
	if obj, isObject := value.(*object); isObject {
		return obj.toMap(), ok
	}
	return value, ok
}

// Lineno returns the one-indexed line on which the node starts, or the unset sentinel.
func (n *Node) Lineno() int {
	return n.intAttribute("lineno")
}

// ColOffset returns the column offset at which the node starts, or the unset sentinel.
func (n *Node) ColOffset() int {
	return n.intAttribute("col_offset")
}

// EndLineno returns the line on which the node ends, or the unset sentinel.
func (n *Node) EndLineno() int {
	return n.intAttribute("end_lineno")
}

// EndColOffset returns the column offset at which the node ends, or the unset sentinel.
func (n *Node) EndColOffset() int {
	return n.intAttribute("end_col_offset")
}

// LineNumbers returns the node's line span in the form [lineno, colOffset, endLineno, endColOffset].
func (n *Node) LineNumbers() [4]int {
	return [4]int{n.Lineno(), n.ColOffset(), n.EndLineno(), n.EndColOffset()}
}

// Src resolves the node's `src` attribute into a source map element. Both the compact string descriptor
// ("95:42:0") and the structured record form are accepted.
func (n *Node) Src() (sourcemaps.SourceMapElement, error) {
	raw, ok := n.attributes.values["src"]
	if !ok {
		return sourcemaps.SourceMapElement{}, errors.New("node has no src attribute")
	}
	switch value := raw.(type) {
	case string:
		return sourcemaps.ParseSourceMapElement(value)
	case *object:
		element := sourcemaps.SourceMapElement{
			Offset: sourcemaps.Unset,
			Length: sourcemaps.Unset,
			FileID: sourcemaps.Unset,
		}
		element.Offset = objectInt(value, "start", element.Offset)
		element.Length = objectInt(value, "length", element.Length)
		element.FileID = objectInt(value, "source_id", element.FileID)
		if jump, ok := value.values["jump_code"].(string); ok {
			element.JumpType = sourcemaps.JumpType(jump)
		}
		return element, nil
	default:
		return sourcemaps.SourceMapElement{}, errors.Errorf("unsupported src attribute type %T", raw)
	}
}

// Children returns every node nested beneath this one, in a pre-order scan of the node's attributes.
// Attribute values which are not node-shaped are descended through transparently, so nodes buried inside
// plain containers (argument lists, body arrays) are still discovered. The scan is performed once and
// memoized.
func (n *Node) Children() []*Node {
	if n.scanned {
		return n.children
	}
	for _, key := range n.attributes.keys {
		n.collectChildren(n.attributes.values[key])
	}
	n.scanned = true
	return n.children
}

// collectChildren appends all nodes discoverable within the given attribute value, including the
// descendants of any discovered node.
func (n *Node) collectChildren(value any) {
	switch typed := value.(type) {
	case *object:
		if isNodeShaped(typed, n.config) {
			child := newNode(typed, n.config)
			n.children = append(n.children, child)
			n.children = append(n.children, child.Children()...)
			return
		}
		// Not a node, but it may still contain nodes.
		for _, key := range typed.keys {
			n.collectChildren(typed.values[key])
		}
	case []any:
		for _, item := range typed {
			n.collectChildren(item)
		}
	}
}

// Nodes returns the node itself followed by all of its descendants in pre-order.
func (n *Node) Nodes() []*Node {
	return append([]*Node{n}, n.Children()...)
}

// Functions returns the nodes beneath this one which are classified as function definitions.
func (n *Node) Functions() []*Node {
	var functions []*Node
	for _, child := range n.Children() {
		if child.classification == Function {
			functions = append(functions, child)
		}
	}
	return functions
}

// GetNode searches the subtree for the first node, in pre-order, whose byte range matches the query
// element's offset and length. A query length of zero or the unset sentinel matches on offset alone.
// Returns nil if no node matches.
func (n *Node) GetNode(query sourcemaps.SourceMapElement) *Node {
	for _, candidate := range n.Nodes() {
		src, err := candidate.Src()
		if err != nil {
			continue
		}
		if src.Offset != query.Offset {
			continue
		}
		if query.Length == 0 || query.Length == sourcemaps.Unset || normalizedLength(src.Length) == query.Length {
			return candidate
		}
	}
	return nil
}

// GetNodesAtLine returns every node in the subtree, including this one, whose line span exactly equals
// the query. The query must have exactly four elements: [lineno, colOffset, endLineno, endColOffset].
func (n *Node) GetNodesAtLine(lineNumbers []int) ([]*Node, error) {
	if len(lineNumbers) != 4 {
		return nil, errors.Errorf("line numbers should be given in the form [lineno, colOffset, endLineno, endColOffset], got %d elements", len(lineNumbers))
	}

	var matches []*Node
	query := [4]int{lineNumbers[0], lineNumbers[1], lineNumbers[2], lineNumbers[3]}
	for _, candidate := range n.Nodes() {
		if candidate.LineNumbers() == query {
			matches = append(matches, candidate)
		}
	}
	return matches, nil
}

// GetDefiningFunction returns the function definition beneath this node whose subtree contains a node
// matching the queried line span, or nil if the span falls outside every function.
func (n *Node) GetDefiningFunction(lineNumbers []int) (*Node, error) {
	for _, function := range n.Functions() {
		matches, err := function.GetNodesAtLine(lineNumbers)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			return function, nil
		}
	}
	return nil, nil
}

// intAttribute reads a numeric attribute, returning the unset sentinel when absent or non-numeric.
func (n *Node) intAttribute(key string) int {
	return objectInt(n.attributes, key, sourcemaps.Unset)
}

// isNodeShaped reports whether an object carries one of the configured type keys with a string value.
func isNodeShaped(obj *object, config Config) bool {
	for _, key := range config.TypeKeys {
		if typeValue, ok := obj.values[key].(string); ok && typeValue != "" {
			return true
		}
	}
	return false
}

// normalizedLength treats the unset sentinel as a zero length for byte-range comparisons.
func normalizedLength(length int) int {
	if length == sourcemaps.Unset {
		return 0
	}
	return length
}

func objectInt(obj *object, key string, fallback int) int {
	number, ok := obj.values[key].(json.Number)
	if !ok {
		return fallback
	}
	value, err := number.Int64()
	if err != nil {
		return fallback
	}
	return int(value)
}

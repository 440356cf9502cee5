package contracts

import (
	"strings"

	"github.com/crytic/ethdebug/abiutils"
	"github.com/crytic/ethdebug/ast"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// ErrFunctionNotFound indicates a location or program counter resolved to no function definition.
var ErrFunctionNotFound = errors.New("no function definition at location")

// Function describes a function located within a contract's source, split into its signature lines and
// the body lines following them.
type Function struct {
	// Name is the function's short name, e.g. "transfer".
	Name string

	// FullName is the function's unique display form: its ABI selector when the function was resolved
	// through a method identifier, otherwise its stripped signature text.
	FullName string

	// AST is the function's definition node.
	AST *ast.Node

	// Offset is the line number of the first line after the signature.
	Offset int

	// Content holds the function's source lines, keyed by their original file line numbers.
	Content Content
}

// GetContent returns the function's source lines restricted to the given [lineStart, columnStart,
// lineEnd, columnEnd] location, clamped to the function's own span.
func (f *Function) GetContent(location [4]int) Content {
	start := location[0]
	if begin := f.Content.BeginLineno(); begin > start {
		start = begin
	}
	stop := location[2] + 1

	lines := make(map[int]string)
	for _, number := range f.Content.Lines() {
		if number >= start && number < stop {
			line, _ := f.Content.Line(number)
			lines[number] = line
		}
	}
	return NewContent(lines)
}

// GetContentASTs returns the statement nodes within the function whose line span exactly matches the
// given location, excluding nested function definitions and anything starting before the location.
func (f *Function) GetContentASTs(location [4]int) ([]*ast.Node, error) {
	matches, err := f.AST.GetNodesAtLine(location[:])
	if err != nil {
		return nil, err
	}

	var nodes []*ast.Node
	for _, node := range matches {
		if node.Lineno() >= location[0] && node.Classification() != ast.Function {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// ContractSource correlates a contract type against its source text, resolving source locations and
// program counters back to named functions. It requires the contract type to carry a source ID, an AST,
// and a program counter map.
//
// The correlator memoizes method-identifier resolutions in an append-only cache for its lifetime; it is
// not internally synchronized, so concurrent callers must serialize access or use one correlator per
// worker.
type ContractSource struct {
	// Contract is the contract type being correlated.
	Contract *ContractType

	// Source holds the contract's source text by line number.
	Source Content

	// SourcePath optionally records where the source was loaded from.
	SourcePath string

	tree          *ast.Node
	functionCache map[string]*ast.Node
}

// NewContractSource builds a correlator over a contract type and its source text, validating that the
// contract carries the debug payloads correlation needs.
func NewContractSource(contract *ContractType, source Content, sourcePath string) (*ContractSource, error) {
	if contract.SourceID == "" {
		return nil, errors.Errorf("contract %q has no source ID", contract.Name)
	}
	if contract.PCMap == nil {
		return nil, errors.Errorf("contract %q has no pc map", contract.Name)
	}
	tree, err := contract.SyntaxTree()
	if err != nil {
		return nil, err
	}

	return &ContractSource{
		Contract:      contract,
		Source:        source,
		SourcePath:    sourcePath,
		tree:          tree,
		functionCache: make(map[string]*ast.Node),
	}, nil
}

// LookupFunction resolves the function defined at the given [lineStart, columnStart, lineEnd,
// columnEnd] location. A method identifier may be supplied to name the result from the ABI; on its
// first sighting the identifier is assumed to refer to the function at the location and is cached, so
// later lookups for the same identifier only take the ABI name when they land on the same definition.
// Returns ErrFunctionNotFound when the location falls outside every function.
func (s *ContractSource) LookupFunction(location [4]int, methodID []byte) (*Function, error) {
	definition, err := s.tree.GetDefiningFunction(location[:])
	if err != nil {
		return nil, err
	}
	if definition == nil {
		return nil, errors.Wrapf(ErrFunctionNotFound, "location %v", location)
	}

	signatureLines, bodyLines := s.splitFunction(definition)
	if len(signatureLines) == 0 || len(bodyLines) == 0 {
		return nil, errors.Wrapf(ErrFunctionNotFound, "function at location %v has no source lines", location)
	}

	signatureStart := definition.Lineno()
	offset := signatureStart + len(signatureLines)

	name, fullName := s.resolveName(definition, methodID, signatureLines)
	if name == "" {
		// Not resolvable through the ABI and unnamed in the AST, e.g. an internal helper in a schema
		// without name attributes. Fall back to the stripped signature text.
		fullName = stripSignature(signatureLines)
		name = fullName
		if open := strings.Index(name, "("); open != -1 && strings.LastIndex(name, ")") > open {
			name = name[:open]
		}
	}

	lines := make(map[int]string, len(signatureLines)+len(bodyLines))
	for i, line := range signatureLines {
		lines[signatureStart+i] = line
	}
	for i, line := range bodyLines {
		lines[offset+i] = line
	}

	return &Function{
		Name:     name,
		FullName: fullName,
		AST:      definition,
		Offset:   offset,
		Content:  NewContent(lines),
	}, nil
}

// FunctionAtPC resolves the function executing at the given program counter through the contract's pc
// map. Unknown program counters surface sourcemaps.ErrPCNotFound.
func (s *ContractSource) FunctionAtPC(pc int, methodID []byte) (*Function, error) {
	value, err := s.Contract.PCMap.Get(pc)
	if err != nil {
		return nil, err
	}
	if value == nil || len(value.Location) != 4 {
		return nil, errors.Wrapf(ErrFunctionNotFound, "pc %d has no location", pc)
	}

	var location [4]int
	for i, element := range value.Location {
		if element == nil {
			return nil, errors.Wrapf(ErrFunctionNotFound, "pc %d has a partial location", pc)
		}
		location[i] = *element
	}
	return s.LookupFunction(location, methodID)
}

// resolveName determines the located function's name, preferring the ABI method matched through the
// supplied identifier and falling back to the AST node's own name. Returns empty strings when neither
// source can name it.
func (s *ContractSource) resolveName(definition *ast.Node, methodID []byte, signatureLines []string) (string, string) {
	methods := s.Contract.Methods()

	if len(methodID) > 0 {
		key := hexutil.Encode(methodID)
		if cached, ok := s.functionCache[key]; ok {
			// Only trust the ABI name when the identifier still points at this same definition.
			if cached.Lineno() == definition.Lineno() && cached.EndLineno() == definition.EndLineno() {
				if entry, err := methods.Get(abiutils.ByHash(methodID)); err == nil {
					return abiutils.EntryName(entry), entry.Selector()
				}
			}
			return "", ""
		}

		if entry, err := methods.Get(abiutils.ByHash(methodID)); err == nil {
			// First sighting of this identifier; assume it refers to the function being located.
			s.functionCache[key] = definition
			return abiutils.EntryName(entry), entry.Selector()
		}
	}

	if name := definition.Name(); name != "" {
		return name, stripSignature(signatureLines)
	}
	return "", ""
}

// splitFunction divides a function's source lines into its signature lines and body lines. The body
// starts at the smallest child line after the definition line, skipping nested function definitions.
func (s *ContractSource) splitFunction(definition *ast.Node) ([]string, []string) {
	start := definition.Lineno()
	end := definition.EndLineno()
	lines := s.Source.Slice(start, end+1)

	contentStart := -1
	for _, child := range definition.Children() {
		lineno := child.Lineno()
		if lineno > start && child.Classification() != ast.Function && (contentStart == -1 || lineno < contentStart) {
			contentStart = lineno
		}
	}
	if contentStart == -1 {
		contentStart = start + 1
	}

	offset := contentStart - start
	if offset > len(lines) {
		offset = len(lines)
	}
	return lines[:offset], lines[offset:]
}

// stripSignature condenses a function's signature lines into a single display name, shedding the
// definition keyword and the trailing block or suite punctuation.
func stripSignature(signatureLines []string) string {
	var builder strings.Builder
	for _, line := range signatureLines {
		builder.WriteString(strings.TrimSpace(line))
	}
	name := builder.String()

	for _, prefix := range []string{"def ", "function ", "fn ", "func "} {
		if strings.HasPrefix(name, prefix) {
			parts := strings.Split(name, prefix)
			name = parts[len(parts)-1]
		}
	}
	return strings.TrimRight(name, ":{ \n")
}

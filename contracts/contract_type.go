package contracts

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/crytic/ethdebug/abiutils"
	"github.com/crytic/ethdebug/ast"
	"github.com/crytic/ethdebug/sourcemaps"
	"github.com/pkg/errors"
)

// Bytecode wraps one bytecode artifact of a contract type. Artifacts encode it either as a bare hex
// string or as an object carrying the hex under a `bytecode` or `object` key.
type Bytecode struct {
	// Object is the 0x-prefixed hex representation of the bytecode.
	Object string
}

// UnmarshalJSON decodes both artifact encodings of a bytecode field.
func (b *Bytecode) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		b.Object = plain
		return nil
	}

	var wrapped struct {
		Bytecode string `json:"bytecode"`
		Object   string `json:"object"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return errors.Wrap(err, "could not decode bytecode")
	}
	if wrapped.Bytecode != "" {
		b.Object = wrapped.Bytecode
	} else {
		b.Object = wrapped.Object
	}
	return nil
}

// MarshalJSON encodes the object form.
func (b Bytecode) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Bytecode string `json:"bytecode"`
	}{Bytecode: b.Object})
}

// Bytes decodes the bytecode hex into raw bytes.
func (b Bytecode) Bytes() ([]byte, error) {
	decoded, err := hex.DecodeString(strings.TrimPrefix(b.Object, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "could not decode bytecode hex")
	}
	return decoded, nil
}

// ContractType represents one compiled contract unit from an artifact: its ABI, bytecode, and the debug
// payloads the compiler emitted alongside them. Decoding keeps the debug payloads raw; accessors resolve
// them on demand.
//
// The derived identifier tables are built lazily on first access and are valid for the life of the
// value, since ABI entries are treated as immutable. Lazy state is not internally synchronized;
// concurrent users must either share a fully-initialized value or serialize access.
type ContractType struct {
	// Name is the contract name, e.g. "MyToken".
	Name string

	// SourceID identifies the source file this contract was compiled from.
	SourceID string

	// DeploymentBytecode is the bytecode used to deploy the contract, when present in the artifact.
	DeploymentBytecode *Bytecode

	// RuntimeBytecode is the bytecode expected at the deployed address, when present in the artifact.
	RuntimeBytecode *Bytecode

	// ABI holds the contract's decoded interface entries in declaration order.
	ABI []abiutils.ABIEntry

	// SourceMap is the compiler's compact source map string for the runtime bytecode.
	SourceMap string

	// PCMap is the raw program-counter-to-source-location map.
	PCMap sourcemaps.PCMap

	// DevMessages maps source line numbers to dev-comment annotations.
	DevMessages map[int]string

	// RawAST is the undecoded AST JSON for the contract's source unit, if the artifact carries one.
	RawAST json.RawMessage

	// ASTConfig controls node recognition when resolving RawAST. The zero value selects the default
	// solc/vyper configuration.
	ASTConfig ast.Config

	tree        *ast.Node
	identifiers []abiIdentifier
}

// abiIdentifier pairs an ABI entry with its hashed identifier hex, truncated per the entry kind.
type abiIdentifier struct {
	entry abiutils.ABIEntry
	id    string
}

// ParseContractType decodes a contract type from artifact JSON.
func ParseContractType(data []byte) (*ContractType, error) {
	var contract ContractType
	if err := json.Unmarshal(data, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

// UnmarshalJSON decodes the artifact encoding of a contract type, accepting both the camelCase manifest
// key names and their common aliases.
func (c *ContractType) UnmarshalJSON(data []byte) error {
	var raw struct {
		ContractName       string            `json:"contractName"`
		SourceID           string            `json:"sourceId"`
		DeploymentBytecode *Bytecode         `json:"deploymentBytecode"`
		RuntimeBytecode    *Bytecode         `json:"runtimeBytecode"`
		ABI                json.RawMessage   `json:"abi"`
		SourceMap          string            `json:"sourcemap"`
		PCMap              sourcemaps.PCMap  `json:"pcmap"`
		DevMessages        map[string]string `json:"devMessages"`
		AST                json.RawMessage   `json:"ast"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "could not decode contract type")
	}

	*c = ContractType{
		Name:               raw.ContractName,
		SourceID:           raw.SourceID,
		DeploymentBytecode: raw.DeploymentBytecode,
		RuntimeBytecode:    raw.RuntimeBytecode,
		SourceMap:          raw.SourceMap,
		PCMap:              raw.PCMap,
		RawAST:             raw.AST,
	}

	if len(raw.ABI) > 0 {
		entries, err := abiutils.ParseABI(raw.ABI)
		if err != nil {
			return errors.Wrapf(err, "contract %q", raw.ContractName)
		}
		c.ABI = entries
	}

	if len(raw.DevMessages) > 0 {
		c.DevMessages = make(map[int]string, len(raw.DevMessages))
		for key, message := range raw.DevMessages {
			lineno, err := strconv.Atoi(key)
			if err != nil {
				return errors.Errorf("dev message key %q is not a line number", key)
			}
			c.DevMessages[lineno] = message
		}
	}
	return nil
}

// SyntaxTree resolves the contract's AST payload into its root node, parsing it once and caching the
// result.
func (c *ContractType) SyntaxTree() (*ast.Node, error) {
	if c.tree != nil {
		return c.tree, nil
	}
	if len(c.RawAST) == 0 {
		return nil, errors.Errorf("contract %q has no AST", c.Name)
	}

	config := c.ASTConfig
	if len(config.TypeKeys) == 0 {
		config = ast.DefaultConfig()
	}
	tree, err := ast.Parse(c.RawAST, config)
	if err != nil {
		return nil, errors.Wrapf(err, "contract %q", c.Name)
	}
	c.tree = tree
	return tree, nil
}

// ParsedSourceMap decodes the contract's compact source map string.
func (c *ContractType) ParsedSourceMap() (sourcemaps.SourceMap, error) {
	return sourcemaps.ParseSourceMap(c.SourceMap)
}

// ParsedPCMap resolves the raw program counter map into integer-keyed items.
func (c *ContractType) ParsedPCMap() (map[int]sourcemaps.PCMapItem, error) {
	return c.PCMap.Parse()
}

// DeploymentBytes decodes the deployment bytecode, or returns nil when the artifact carries none.
func (c *ContractType) DeploymentBytes() ([]byte, error) {
	if c.DeploymentBytecode == nil {
		return nil, nil
	}
	return c.DeploymentBytecode.Bytes()
}

// RuntimeBytes decodes the runtime bytecode, or returns nil when the artifact carries none.
func (c *ContractType) RuntimeBytes() ([]byte, error) {
	if c.RuntimeBytecode == nil {
		return nil, nil
	}
	return c.RuntimeBytecode.Bytes()
}

// SelectorIdentifiers returns the mapping of every selector in the contract's interface to its hashed
// identifier hex: 4 bytes for methods and errors, the full 32 bytes otherwise.
func (c *ContractType) SelectorIdentifiers() map[string]string {
	pairs := c.abiIdentifiers()
	table := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		table[pair.entry.Selector()] = pair.id
	}
	return table
}

// IdentifierLookup returns the reverse mapping of hashed identifier hex to ABI entry.
func (c *ContractType) IdentifierLookup() map[string]abiutils.ABIEntry {
	pairs := c.abiIdentifiers()
	table := make(map[string]abiutils.ABIEntry, len(pairs))
	for _, pair := range pairs {
		table[pair.id] = pair.entry
	}
	return table
}

// MethodIdentifiers returns the selector-to-identifier mapping restricted to methods, matching the
// compiler's methodIdentifiers artifact output.
func (c *ContractType) MethodIdentifiers() map[string]string {
	table := make(map[string]string)
	for _, pair := range c.abiIdentifiers() {
		if _, ok := pair.entry.(*abiutils.MethodABI); ok {
			table[pair.entry.Selector()] = pair.id
		}
	}
	return table
}

// Constructor returns the contract's constructor, synthesizing an argumentless default when the ABI
// declares none.
func (c *ContractType) Constructor() *abiutils.ConstructorABI {
	for _, entry := range c.ABI {
		if constructor, ok := entry.(*abiutils.ConstructorABI); ok {
			return constructor
		}
	}
	return &abiutils.ConstructorABI{}
}

// Fallback returns the contract's fallback method, or nil when it has none.
func (c *ContractType) Fallback() *abiutils.FallbackABI {
	for _, entry := range c.ABI {
		if fallback, ok := entry.(*abiutils.FallbackABI); ok {
			return fallback
		}
	}
	return nil
}

// Receive returns the contract's receive method, or nil when it has none.
func (c *ContractType) Receive() *abiutils.ReceiveABI {
	for _, entry := range c.ABI {
		if receive, ok := entry.(*abiutils.ReceiveABI); ok {
			return receive
		}
	}
	return nil
}

// Methods returns the contract's methods as a list keyed by 4-byte identifiers.
func (c *ContractType) Methods() *abiutils.ABIList {
	return c.filteredList(abiutils.ShortIdentifierSize, func(entry abiutils.ABIEntry) bool {
		_, ok := entry.(*abiutils.MethodABI)
		return ok
	})
}

// ViewMethods returns the contract's read-only methods.
func (c *ContractType) ViewMethods() *abiutils.ABIList {
	return c.filteredList(abiutils.ShortIdentifierSize, func(entry abiutils.ABIEntry) bool {
		method, ok := entry.(*abiutils.MethodABI)
		return ok && !method.IsStateful()
	})
}

// MutableMethods returns the contract's state-changing methods.
func (c *ContractType) MutableMethods() *abiutils.ABIList {
	return c.filteredList(abiutils.ShortIdentifierSize, func(entry abiutils.ABIEntry) bool {
		method, ok := entry.(*abiutils.MethodABI)
		return ok && method.IsStateful()
	})
}

// Events returns the contract's events as a list keyed by full 32-byte topic identifiers.
func (c *ContractType) Events() *abiutils.ABIList {
	return c.filteredList(abiutils.LongIdentifierSize, func(entry abiutils.ABIEntry) bool {
		_, ok := entry.(*abiutils.EventABI)
		return ok
	})
}

// Errors returns the contract's custom errors as a list keyed by 4-byte identifiers.
func (c *ContractType) Errors() *abiutils.ABIList {
	return c.filteredList(abiutils.ShortIdentifierSize, func(entry abiutils.ABIEntry) bool {
		_, ok := entry.(*abiutils.ErrorABI)
		return ok
	})
}

// Structs returns the contract's struct definitions.
func (c *ContractType) Structs() *abiutils.ABIList {
	return c.filteredList(abiutils.LongIdentifierSize, func(entry abiutils.ABIEntry) bool {
		_, ok := entry.(*abiutils.StructABI)
		return ok
	})
}

func (c *ContractType) filteredList(selectorIDSize int, match func(abiutils.ABIEntry) bool) *abiutils.ABIList {
	var entries []abiutils.ABIEntry
	for _, entry := range c.ABI {
		if match(entry) {
			entries = append(entries, entry)
		}
	}
	return abiutils.NewABIList(entries, selectorIDSize)
}

// abiIdentifiers builds the identifier table over every entry with a selector, lazily and once.
func (c *ContractType) abiIdentifiers() []abiIdentifier {
	if c.identifiers != nil {
		return c.identifiers
	}

	pairs := make([]abiIdentifier, 0, len(c.ABI))
	for _, entry := range c.ABI {
		if entry.Selector() == "" {
			continue
		}
		size := abiutils.LongIdentifierSize
		switch entry.(type) {
		case *abiutils.MethodABI, *abiutils.ErrorABI:
			size = abiutils.ShortIdentifierSize
		}
		id, err := abiutils.Identifier(entry, size)
		if err != nil {
			continue
		}
		pairs = append(pairs, abiIdentifier{entry: entry, id: id})
	}
	c.identifiers = pairs
	return pairs
}

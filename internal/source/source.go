package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"flowshot/internal/naming"
)

// ErrNotWorkflow marks JSON files that parse cleanly but do not expose the
// name and node list a workflow definition requires. Discovery filters these
// out silently rather than reporting them as failures.
var ErrNotWorkflow = errors.New("not a workflow definition")

// Definition holds the engine-relevant parts of a workflow file. Fields the
// engine's intake rejects are dropped during parsing; the raw sections are
// kept unparsed so node internals pass through byte-for-byte.
type Definition struct {
	Name        string
	Nodes       json.RawMessage
	Connections json.RawMessage
	Settings    json.RawMessage
	StaticData  json.RawMessage
}

// Workflow is a discovered input item with its derived output identity.
// Immutable once read; it lives for one orchestration pass.
type Workflow struct {
	Path       string // relative to the scan root
	Name       string
	FileName   string // canonical artifact file name
	Category   string
	Definition Definition
}

// Invalid records a file that looked like a workflow but failed to parse.
// The orchestrator reports these as per-item failures.
type Invalid struct {
	Path string
	Err  error
}

// ParseDefinition extracts a Definition from raw file content. A JSON syntax
// error is returned as-is; structurally valid JSON lacking a name or node
// list returns ErrNotWorkflow.
func ParseDefinition(data []byte) (Definition, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Definition{}, fmt.Errorf("parse workflow JSON: %w", err)
	}

	var def Definition
	nameRaw, hasName := raw["name"]
	if hasName {
		if err := json.Unmarshal(nameRaw, &def.Name); err != nil {
			hasName = false
		}
	}
	nodes, hasNodes := raw["nodes"]
	if !hasName || def.Name == "" || !hasNodes || !isJSONArray(nodes) {
		return Definition{}, ErrNotWorkflow
	}

	def.Nodes = nodes
	def.Connections = raw["connections"]
	def.Settings = raw["settings"]
	def.StaticData = raw["staticData"]
	return def, nil
}

// Describe derives a Workflow from a parsed definition and its source path.
func Describe(relPath string, def Definition) Workflow {
	return Workflow{
		Path:       relPath,
		Name:       def.Name,
		FileName:   naming.FileName(def.Name),
		Category:   naming.Category(relPath),
		Definition: def,
	}
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

package applicator

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/opencode-ai/themekit/internal/models"
)

// OpKind identifies a recorded document operation.
type OpKind string

const (
	OpSetProperty OpKind = "set_property"
	OpInsertRule  OpKind = "insert_rule"
	OpRemoveRule  OpKind = "remove_rule"
	OpReflow      OpKind = "reflow"
)

// Op is one recorded document operation.
type Op struct {
	Kind  OpKind
	Name  string
	Value string
}

// MemoryDocument is an in-memory Document. It backs server-side rendering
// of the root stylesheet and records operations for inspection.
type MemoryDocument struct {
	mu      sync.Mutex
	style   map[string]string
	rules   map[string]string
	reflows int
	ops     []Op
}

// NewMemoryDocument creates an empty document.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{
		style: make(map[string]string),
		rules: make(map[string]string),
	}
}

// SetProperty implements Document.
func (d *MemoryDocument) SetProperty(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.style[name] = value
	d.ops = append(d.ops, Op{Kind: OpSetProperty, Name: name, Value: value})
}

// InsertRule implements Document.
func (d *MemoryDocument) InsertRule(id, css string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rules[id] = css
	d.ops = append(d.ops, Op{Kind: OpInsertRule, Name: id, Value: css})
}

// RemoveRule implements Document.
func (d *MemoryDocument) RemoveRule(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rules, id)
	d.ops = append(d.ops, Op{Kind: OpRemoveRule, Name: id})
}

// Reflow implements Document.
func (d *MemoryDocument) Reflow() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reflows++
	d.ops = append(d.ops, Op{Kind: OpReflow})
}

// Style returns a copy of the root inline style.
func (d *MemoryDocument) Style() models.VariableSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(models.VariableSet, len(d.style))
	for k, v := range d.style {
		out[k] = v
	}
	return out
}

// Property returns one inline property.
func (d *MemoryDocument) Property(name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.style[name]
	return v, ok
}

// HasRule reports whether a rule is active.
func (d *MemoryDocument) HasRule(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.rules[id]
	return ok
}

// Reflows returns the number of forced reflows.
func (d *MemoryDocument) Reflows() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reflows
}

// Ops returns the recorded operations in order.
func (d *MemoryDocument) Ops() []Op {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Op(nil), d.ops...)
}

// CSS renders the root style as a stylesheet, followed by active rules.
func (d *MemoryDocument) CSS() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]string, 0, len(d.style))
	for k := range d.style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s;\n", k, d.style[k])
	}
	b.WriteString("}\n")

	ids := make([]string, 0, len(d.rules))
	for id := range d.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(&b, "%s\n", d.rules[id])
	}
	return b.String()
}

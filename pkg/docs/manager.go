// Package docs holds the documents of an editing session and the lock that
// serializes switching between them.
package docs

import (
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/blockedit/pkg/core"
)

// Manager stores documents in insertion order and tracks which one is active.
//
// SetActive only moves the pointer. Resetting the guard, rebuilding the block
// index and swapping pending diffs is the caller's job (see session.Session).
type Manager struct {
	mu     sync.RWMutex
	parser core.Parser
	docs   map[string]*core.Document
	order  []string
	active string
}

// NewManager creates an empty manager that parses content with parser.
func NewManager(parser core.Parser) *Manager {
	if parser == nil {
		panic("docs: nil parser")
	}
	return &Manager{
		parser: parser,
		docs:   make(map[string]*core.Document),
	}
}

// Add parses content and stores a new document. The document becomes active
// when no other document is.
func (m *Manager) Add(name, typ, content string) (core.Document, error) {
	meta, blocks, err := m.parse(content)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	doc := &core.Document{
		ID:        core.NewID("doc"),
		Name:      name,
		Type:      typ,
		Content:   content,
		Blocks:    blocks,
		Metadata:  meta,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	m.order = append(m.order, doc.ID)
	if m.active == "" {
		m.active = doc.ID
	}
	return clone(doc), nil
}

func (m *Manager) parse(content string) (core.Metadata, []core.Block, error) {
	if mp, ok := m.parser.(core.MetadataParser); ok {
		return mp.ParseDocument(content)
	}
	blocks, err := m.parser.Parse(content)
	return nil, blocks, err
}

// Get returns a copy of the document.
func (m *Manager) Get(id string) (core.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return core.Document{}, fmt.Errorf("%w: %s", core.ErrDocumentNotFound, id)
	}
	return clone(doc), nil
}

// FindByName returns the first document with the given name.
func (m *Manager) FindByName(name string) (core.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if d := m.docs[id]; d.Name == name {
			return clone(d), true
		}
	}
	return core.Document{}, false
}

// List returns every document in insertion order.
func (m *Manager) List() []core.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.Document, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, clone(m.docs[id]))
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Active returns the active document, if any.
func (m *Manager) Active() (core.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == "" {
		return core.Document{}, false
	}
	return clone(m.docs[m.active]), true
}

// ActiveID returns the active document id or "".
func (m *Manager) ActiveID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// SetActive points the manager at an existing document.
func (m *Manager) SetActive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrDocumentNotFound, id)
	}
	m.active = id
	return nil
}

// Remove deletes a document. If it was active, the first remaining document
// becomes active, or none when the manager is empty.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrDocumentNotFound, id)
	}
	delete(m.docs, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.active == id {
		m.active = ""
		if len(m.order) > 0 {
			m.active = m.order[0]
		}
	}
	return nil
}

// UpdateContent replaces a document's content, re-parses its blocks and marks
// it dirty. Block ids are regenerated by the parser.
func (m *Manager) UpdateContent(id, content string) (core.Document, error) {
	meta, blocks, err := m.parse(content)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return core.Document{}, fmt.Errorf("%w: %s", core.ErrDocumentNotFound, id)
	}
	doc.Content = content
	doc.Blocks = blocks
	doc.Metadata = meta
	doc.Dirty = true
	return clone(doc), nil
}

// Serialize renders blocks back into content using the manager's parser,
// preserving the document's metadata when the parser supports it.
func (m *Manager) Serialize(id string, blocks []core.Block) (string, error) {
	doc, err := m.Get(id)
	if err != nil {
		return "", err
	}
	if mp, ok := m.parser.(core.MetadataParser); ok {
		return mp.SerializeDocument(doc.Metadata, blocks)
	}
	return m.parser.Serialize(blocks)
}

// MarkClean clears the dirty flag, typically after the content was persisted.
func (m *Manager) MarkClean(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrDocumentNotFound, id)
	}
	doc.Dirty = false
	return nil
}

func clone(d *core.Document) core.Document {
	out := *d
	out.Blocks = make([]core.Block, len(d.Blocks))
	copy(out.Blocks, d.Blocks)
	if d.Metadata != nil {
		out.Metadata = make(core.Metadata, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// ManagerState exposes internal state for observability.
type ManagerState struct {
	Documents []string `json:"documents"`
	Active    string   `json:"active"`
	Dirty     []string `json:"dirty,omitempty"`
}

// State implements introspection.Introspectable.
func (m *Manager) State() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := ManagerState{Documents: append([]string(nil), m.order...), Active: m.active}
	for _, id := range m.order {
		if m.docs[id].Dirty {
			st.Dirty = append(st.Dirty, id)
		}
	}
	return st
}

// ComponentType implements introspection.Component.
func (m *Manager) ComponentType() string {
	return "document-manager"
}

var _ introspection.Introspectable = (*Manager)(nil)
var _ introspection.Component = (*Manager)(nil)

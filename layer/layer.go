// Package layer implements Layer: the container that bundles an
// identifier, a resolved asset path, a file-format handle, an
// AbstractData store, a sublayer stack, and the permission/version
// metadata that govern edits, plus the scoped editing protocol that routes
// every mutation through a ChangeManager.Scope.
//
// The registry and lifecycle shape (identifier-keyed singleton cache,
// FindOrOpen vs. Find) is an interned-handle cache like the one path
// uses for its node graph; the scoped-edit protocol opens a change.Scope,
// mutates, and closes it, exactly as a real caller would.
package layer

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"scenedesc.dev/sdf/change"
	"scenedesc.dev/sdf/data"
	"scenedesc.dev/sdf/diag"
	"scenedesc.dev/sdf/fileversion"
	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/value"
)

// DefaultChangeManager is the process-wide ChangeManager: every Layer
// posts its mutation events here, tagged with itself as the
// change.LayerHandle, so a single listener can observe edits across every
// open layer.
var DefaultChangeManager = change.NewManager()

// sublayer pairs one entry in the sublayer stack with its layer offset.
type sublayer struct {
	identifier string
	offset     value.LayerOffsetValue
}

// Layer is the container that bundles a record store with its identity,
// file format, sublayer stack, and edit permissions.
type Layer struct {
	mu sync.RWMutex

	identifier   string
	resolvedPath string
	format       FileFormat
	store        data.AbstractData

	sublayers   []sublayer
	defaultPrim path.Path

	permissionToEdit bool
	permissionToSave bool

	version fileversion.FileVersion
	dirty   bool
	anon    bool
}

// Identifier satisfies change.LayerHandle.
func (l *Layer) Identifier() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.identifier
}

// ResolvedPath returns the asset path the layer was opened from, or "" for
// an anonymous layer never saved.
func (l *Layer) ResolvedPath() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.resolvedPath
}

// IsAnonymous reports whether l was created via CreateAnonymous/
// OpenAsAnonymous.
func (l *Layer) IsAnonymous() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.anon
}

// IsDirty reports whether l has unsaved edits.
func (l *Layer) IsDirty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dirty
}

// Data returns the layer's record store, for read-only inspection by the
// spec facade.
func (l *Layer) Data() data.AbstractData {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store
}

// Version reports the FileVersion this layer's content was read at (or
// the engine's current version, for a freshly created layer).
func (l *Layer) Version() fileversion.FileVersion {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// PermissionToEdit/PermissionToSave report the layer's current
// permissions.
func (l *Layer) PermissionToEdit() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.permissionToEdit
}

func (l *Layer) PermissionToSave() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.permissionToSave
}

// SetPermissionToEdit/SetPermissionToSave change the layer's permission
// flags. They do not themselves go through the change protocol: permission
// is a layer-level property, not namespace content.
func (l *Layer) SetPermissionToEdit(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.permissionToEdit = v
}

func (l *Layer) SetPermissionToSave(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.permissionToSave = v
}

// --- lifecycle --------------------------------------------------------

// CreateNew creates a fresh, empty Layer identified by identifier. args is
// the parsed SDF_FORMAT_ARGS set; it is rejected if identifier already
// names a live layer in the registry.
func CreateNew(identifier string, args map[string]string) (*Layer, error) {
	full := JoinIdentifier(identifier, FormatFormatArgs(args))
	if _, ok := registryFind(full); ok {
		return nil, fmt.Errorf("layer: %s already exists", full)
	}
	l := newLayer(full, data.NewInMemoryData())
	l.store.CreateSpec(path.AbsoluteRoot, data.PseudoRoot)
	registryInsert(l)
	return l, nil
}

// CreateAnonymous creates a Layer with a freshly minted anon: identifier,
// optionally tagged for debuggability.
func CreateAnonymous(tag string, format FileFormat) *Layer {
	id := NewAnonymousIdentifier(tag)
	l := newLayer(id, data.NewInMemoryData())
	l.format = format
	l.anon = true
	l.store.CreateSpec(path.AbsoluteRoot, data.PseudoRoot)
	registryInsert(l)
	return l
}

func newLayer(identifier string, store data.AbstractData) *Layer {
	return &Layer{
		identifier:       identifier,
		store:            store,
		permissionToEdit: true,
		permissionToSave: true,
	}
}

// FindOrOpen returns the already-open layer for identifier if one is live
// in the registry; otherwise it resolves and reads identifier via
// resolver/format, registers the result, and returns it.
func FindOrOpen(identifier string, resolver AssetResolver, format FileFormat, args map[string]string) (*Layer, error) {
	full := JoinIdentifier(identifier, FormatFormatArgs(args))
	if l, ok := registryFind(full); ok {
		return l, nil
	}
	return openFromAsset(full, resolver, format, false, false, "")
}

// Find returns the already-open layer for identifier without touching the
// resolver, or (nil, false) if no such layer is live.
func Find(identifier string) (*Layer, bool) {
	return registryFind(identifier)
}

// OpenAsAnonymous reads the asset at identifier's resolved path but
// registers the result under a freshly minted anonymous identifier
// instead of identifier itself, so edits never collide with a shared
// cached layer for the same asset.
func OpenAsAnonymous(identifier string, resolver AssetResolver, format FileFormat, metadataOnly bool, tag string) (*Layer, error) {
	return openFromAsset(identifier, resolver, format, metadataOnly, true, tag)
}

func openFromAsset(identifier string, resolver AssetResolver, format FileFormat, metadataOnly, forceAnon bool, anonTag string) (*Layer, error) {
	assetPath, argsStr := SplitIdentifier(identifier)
	resolvedPath, err := resolver.Resolve(assetPath)
	if err != nil {
		return nil, fmt.Errorf("layer: resolve %s: %w", identifier, err)
	}
	if !format.CanRead(resolvedPath) {
		return nil, fmt.Errorf("layer: no file format can read %s", resolvedPath)
	}

	regIdentifier := identifier
	if forceAnon {
		regIdentifier = NewAnonymousIdentifier(anonTag)
	}

	l := newLayer(regIdentifier, data.NewInMemoryData())
	l.resolvedPath = resolvedPath
	l.format = format
	l.anon = forceAnon
	_ = argsStr
	if err := format.Read(l, resolvedPath, metadataOnly); err != nil {
		return nil, fmt.Errorf("layer: read %s: %w", resolvedPath, err)
	}
	registryInsert(l)
	return l, nil
}

// Reload re-reads l's content from its resolved path, discarding any
// unsaved edits. force re-reads even if l is not dirty.
func (l *Layer) Reload(force bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !force && !l.dirty {
		return nil
	}
	if l.resolvedPath == "" || l.format == nil {
		return fmt.Errorf("layer: %s has no backing asset to reload from", l.identifier)
	}
	fresh := data.NewInMemoryData()
	tmp := newLayer(l.identifier, fresh)
	if err := l.format.Read(tmp, l.resolvedPath, false); err != nil {
		return err
	}
	l.store = fresh
	l.dirty = false
	return nil
}

// Save writes l back to its resolved path. force bypasses the dirty and
// permission-to-save checks.
func (l *Layer) Save(force bool) error {
	l.mu.Lock()
	if !force {
		if !l.permissionToSave {
			l.mu.Unlock()
			return fmt.Errorf("layer: %s does not permit saving", l.identifier)
		}
		if !l.dirty {
			l.mu.Unlock()
			return nil
		}
	}
	resolvedPath, format, id := l.resolvedPath, l.format, l.identifier
	l.mu.Unlock()
	if resolvedPath == "" || format == nil {
		return fmt.Errorf("layer: %s has no backing asset to save to", id)
	}
	// The format reads l through accessors that take l.mu themselves.
	if err := format.WriteToFile(l, resolvedPath, "", nil); err != nil {
		return err
	}
	l.mu.Lock()
	l.dirty = false
	l.mu.Unlock()
	return nil
}

// Export writes l's content to a new path, independent of l's own
// resolved path or permissions; unlike Save, it never requires
// permission-to-save.
func (l *Layer) Export(path, comment string, args map[string]string) error {
	l.mu.RLock()
	format := l.format
	l.mu.RUnlock()
	if format == nil {
		return fmt.Errorf("layer: %s has no file format bound", l.identifier)
	}
	return format.WriteToFile(l, path, comment, args)
}

// ExportToString renders l's content as text via its bound format.
func (l *Layer) ExportToString(out io.Writer) error {
	l.mu.RLock()
	format := l.format
	l.mu.RUnlock()
	if format == nil {
		return l.store.WriteToStream(out)
	}
	return format.WriteToStream(l, out)
}

// TransferContent replaces l's entire data store with a copy of source's,
// posting a single subtree-change notification.
func (l *Layer) TransferContent(source *Layer) bool {
	return l.withEditScope(func() bool {
		source.mu.RLock()
		srcStore := source.store
		source.mu.RUnlock()

		fresh := data.NewInMemoryData()
		srcStore.VisitSpecs(func(d data.AbstractData, p path.Path) bool {
			fresh.CreateSpec(p, d.GetSpecType(p))
			for _, f := range d.List(p) {
				v, _ := d.Get(p, f)
				fresh.Set(p, f, v)
			}
			for _, t := range d.ListTimeSamplesForPath(p) {
				v, _ := d.QueryTimeSample(p, t)
				fresh.SetTimeSample(p, t, v)
			}
			return true
		})
		l.store = fresh
		l.dirty = true
		DefaultChangeManager.Post(change.Event{Layer: l, Path: path.AbsoluteRoot, Subtree: true})
		return true
	})
}

// --- editing protocol ---------------------------------------------------

// withEditScope runs fn inside an open change.Scope, after checking
// permission-to-edit: every mutator checks permission-to-edit first and
// opens/closes a change scope around the store operation and its
// notification. The scope closes after l.mu is released, so listeners
// (and the notification's ordering, which reads Identifier) run without
// the layer's lock held.
func (l *Layer) withEditScope(fn func() bool) bool {
	if !l.PermissionToEdit() {
		diag.Report(diag.CodingError, "layer: edit attempted on non-editable layer %s", l.Identifier())
		return false
	}
	scope := DefaultChangeManager.OpenScope()
	defer scope.Close()
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn()
}

// CreateSpec creates a spec of specType at p.
func (l *Layer) CreateSpec(p path.Path, specType data.SpecType) bool {
	return l.withEditScope(func() bool {
		if !l.store.CreateSpec(p, specType) {
			return false
		}
		l.dirty = true
		DefaultChangeManager.Post(change.Event{Layer: l, Path: p, Subtree: true})
		return true
	})
}

// EraseSpec erases the single spec at p (not its descendants; use
// BatchNamespaceEdit's EditRemove for a subtree erase).
func (l *Layer) EraseSpec(p path.Path) bool {
	return l.withEditScope(func() bool {
		if !l.store.EraseSpec(p) {
			return false
		}
		l.dirty = true
		DefaultChangeManager.Post(change.Event{Layer: l, Path: p, Subtree: true})
		return true
	})
}

// SetField sets field on p to v.
func (l *Layer) SetField(p path.Path, field path.Token, v value.Value) bool {
	return l.withEditScope(func() bool {
		if !l.store.Set(p, field, v) {
			return false
		}
		l.dirty = true
		DefaultChangeManager.Post(change.Event{Layer: l, Path: p, Field: field})
		return true
	})
}

// EraseField erases field on p.
func (l *Layer) EraseField(p path.Path, field path.Token) bool {
	return l.withEditScope(func() bool {
		if !l.store.Erase(p, field) {
			return false
		}
		l.dirty = true
		DefaultChangeManager.Post(change.Event{Layer: l, Path: p, Field: field})
		return true
	})
}

// SetTimeSample sets the sample at (p, field's owning path, t). Time
// samples are keyed by path only (not path+field) in the underlying
// store.
func (l *Layer) SetTimeSample(p path.Path, t float64, v value.Value) bool {
	return l.withEditScope(func() bool {
		l.store.SetTimeSample(p, t, v)
		l.dirty = true
		DefaultChangeManager.Post(change.Event{Layer: l, Path: p})
		return true
	})
}

// --- default prim -------------------------------------------------------

// DefaultPrim returns l's default prim path, or path.Empty if unset.
func (l *Layer) DefaultPrim() path.Path {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.defaultPrim
}

// SetDefaultPrim sets l's default prim path.
func (l *Layer) SetDefaultPrim(p path.Path) bool {
	return l.withEditScope(func() bool {
		l.defaultPrim = p
		l.dirty = true
		DefaultChangeManager.Post(change.Event{Layer: l, Path: path.AbsoluteRoot})
		return true
	})
}

// --- sublayers ------------------------------------------------------------

// SublayerPaths returns l's sublayer identifiers, strongest-first.
func (l *Layer) SublayerPaths() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.sublayers))
	for i, s := range l.sublayers {
		out[i] = s.identifier
	}
	return out
}

// SublayerOffset returns the offset paired with sublayer index i.
func (l *Layer) SublayerOffset(i int) (value.LayerOffsetValue, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.sublayers) {
		return value.LayerOffsetValue{}, false
	}
	return l.sublayers[i].offset, true
}

// InsertSublayer inserts identifier at index i; the sublayer list and
// offsets are modified in lockstep.
func (l *Layer) InsertSublayer(i int, identifier string, offset value.LayerOffsetValue) bool {
	return l.withEditScope(func() bool {
		if i < 0 || i > len(l.sublayers) {
			diag.Report(diag.CodingError, "layer: insert-sublayer: index %d out of range", i)
			return false
		}
		l.sublayers = append(l.sublayers, sublayer{})
		copy(l.sublayers[i+1:], l.sublayers[i:])
		l.sublayers[i] = sublayer{identifier: identifier, offset: offset}
		l.dirty = true
		DefaultChangeManager.Post(change.Event{Layer: l, Path: path.AbsoluteRoot, Subtree: true})
		return true
	})
}

// RemoveSublayer removes the sublayer at index i.
func (l *Layer) RemoveSublayer(i int) bool {
	return l.withEditScope(func() bool {
		if i < 0 || i >= len(l.sublayers) {
			diag.Report(diag.CodingError, "layer: remove-sublayer: index %d out of range", i)
			return false
		}
		l.sublayers = append(l.sublayers[:i], l.sublayers[i+1:]...)
		l.dirty = true
		DefaultChangeManager.Post(change.Event{Layer: l, Path: path.AbsoluteRoot, Subtree: true})
		return true
	})
}

// --- external reference analysis ----------------------------------------

// GetExternalReferences returns every asset path that this layer depends
// on to fully compose: sublayers plus composition-arc (reference/payload)
// targets. Sorted and deduplicated.
func (l *Layer) GetExternalReferences() []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, sp := range l.SublayerPaths() {
		add(sp)
	}
	l.walkCompositionAssetPaths(add)
	sort.Strings(out)
	return out
}

// GetCompositionAssetDependencies returns only the reference/payload
// asset-path dependencies, excluding sublayers.
func (l *Layer) GetCompositionAssetDependencies() []string {
	seen := map[string]bool{}
	var out []string
	l.walkCompositionAssetPaths(func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	})
	sort.Strings(out)
	return out
}

// GetExternalAssetDependencies returns asset-path-valued attribute fields
// that are not composition arcs (e.g. texture file references).
func (l *Layer) GetExternalAssetDependencies() []string {
	seen := map[string]bool{}
	var out []string
	l.mu.RLock()
	store := l.store
	l.mu.RUnlock()
	store.VisitSpecs(func(d data.AbstractData, p path.Path) bool {
		for _, f := range d.List(p) {
			v, _ := d.Get(p, f)
			collectAssetPathScalars(v, seen, &out)
		}
		return true
	})
	sort.Strings(out)
	return out
}

func (l *Layer) walkCompositionAssetPaths(add func(string)) {
	l.mu.RLock()
	store := l.store
	l.mu.RUnlock()
	store.VisitSpecs(func(d data.AbstractData, p path.Path) bool {
		for _, f := range d.List(p) {
			v, _ := d.Get(p, f)
			collectCompositionAssetPaths(v, add)
		}
		return true
	})
}

func collectCompositionAssetPaths(v value.Value, add func(string)) {
	switch v.Kind() {
	case value.Reference:
		r, _ := value.Get[value.ReferenceValue](v)
		add(r.AssetPath)
	case value.Payload:
		p, _ := value.Get[value.PayloadValue](v)
		add(p.AssetPath)
	case value.Array:
		arr, _ := value.Get[[]value.Value](v)
		for _, e := range arr {
			collectCompositionAssetPaths(e, add)
		}
	}
}

func collectAssetPathScalars(v value.Value, seen map[string]bool, out *[]string) {
	switch v.Kind() {
	case value.AssetPath:
		s, _ := value.Get[string](v)
		if s != "" && !seen[s] {
			seen[s] = true
			*out = append(*out, s)
		}
	case value.Array:
		arr, _ := value.Get[[]value.Value](v)
		for _, e := range arr {
			collectAssetPathScalars(e, seen, out)
		}
	case value.Dictionary:
		m, _ := value.Get[map[string]value.Value](v)
		for _, e := range m {
			collectAssetPathScalars(e, seen, out)
		}
	}
}

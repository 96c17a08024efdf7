// Package data implements the AbstractData record store: an associative
// container keyed by path.Path holding typed field values and
// time-sampled values, with two concrete backends (InMemoryData,
// CrateData).
package data

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kr/pretty"
	"github.com/mpvl/unique"

	"scenedesc.dev/sdf/diag"
	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/value"
)

// AbstractData is the polymorphic record-store interface. InMemoryData
// and CrateData are its two concrete backends.
type AbstractData interface {
	StreamsData() bool
	IsDetached() bool

	CreateSpec(p path.Path, specType SpecType) bool
	HasSpec(p path.Path) bool
	EraseSpec(p path.Path) bool
	MoveSpec(from, to path.Path) bool
	GetSpecType(p path.Path) SpecType

	List(p path.Path) []path.Token
	Has(p path.Path, field path.Token) bool
	Get(p path.Path, field path.Token) (value.Value, bool)
	HasSpecAndField(p path.Path, field path.Token) (value.Value, SpecType, bool)
	Set(p path.Path, field path.Token, v value.Value) bool
	Erase(p path.Path, field path.Token) bool

	ListAllTimeSamples() []float64
	ListTimeSamplesForPath(p path.Path) []float64
	GetNumTimeSamplesForPath(p path.Path) int
	GetBracketingTimeSamples(t float64) (lo, hi float64, ok bool)
	GetBracketingTimeSamplesForPath(p path.Path, t float64) (lo, hi float64, ok bool)
	GetPreviousTimeSampleForPath(p path.Path, t float64) (prev float64, ok bool)
	QueryTimeSample(p path.Path, t float64) (value.Value, bool)
	SetTimeSample(p path.Path, t float64, v value.Value)
	EraseTimeSample(p path.Path, t float64)

	VisitSpecs(visit func(d AbstractData, p path.Path) bool)
	Equals(other AbstractData) bool
	WriteToStream(out io.Writer) error

	HasDictKey(p path.Path, field path.Token, keyPath string) bool
	GetDictValueByKey(p path.Path, field path.Token, keyPath string) (value.Value, bool)
	SetDictValueByKey(p path.Path, field path.Token, keyPath string, v value.Value)
	EraseDictValueByKey(p path.Path, field path.Token, keyPath string)
	ListDictKeys(p path.Path, field path.Token) []string
}

// recordData is the per-path record: a spec-type tag plus a field map and
// a time-sample map.
type recordData struct {
	specType SpecType
	fields   map[path.Token]value.Value
	times    map[float64]value.Value
}

func newRecordData(t SpecType) *recordData {
	return &recordData{specType: t, fields: make(map[path.Token]value.Value)}
}

// InMemoryData is the in-memory hash-table AbstractData backend. Its
// CreateSpec/EraseSpec are single-record, non-recursive operations — no
// implicit ancestor creation or subtree erase — so it keeps its own plain
// map rather than building on pathtable.Table, whose Insert/Erase
// implement the opposite (implicit ancestor / subtree) behavior for a
// different contract.
type InMemoryData struct {
	records map[path.Path]*recordData
}

// NewInMemoryData returns an empty store.
func NewInMemoryData() *InMemoryData {
	return &InMemoryData{records: make(map[path.Path]*recordData)}
}

func (d *InMemoryData) StreamsData() bool { return false }
func (d *InMemoryData) IsDetached() bool  { return true }

func (d *InMemoryData) CreateSpec(p path.Path, specType SpecType) bool {
	if _, ok := d.records[p]; ok {
		diag.Report(diag.CodingError, "data: create-spec: record already exists at %s", p)
		return false
	}
	d.records[p] = newRecordData(specType)
	return true
}

func (d *InMemoryData) HasSpec(p path.Path) bool {
	_, ok := d.records[p]
	return ok
}

func (d *InMemoryData) EraseSpec(p path.Path) bool {
	if _, ok := d.records[p]; !ok {
		return false
	}
	delete(d.records, p)
	return true
}

func (d *InMemoryData) MoveSpec(from, to path.Path) bool {
	r, ok := d.records[from]
	if !ok {
		diag.Report(diag.CodingError, "data: move-spec: no record at source %s", from)
		return false
	}
	if _, ok := d.records[to]; ok {
		diag.Report(diag.CodingError, "data: move-spec: destination %s already occupied", to)
		return false
	}
	delete(d.records, from)
	d.records[to] = r
	return true
}

func (d *InMemoryData) GetSpecType(p path.Path) SpecType {
	if r, ok := d.records[p]; ok {
		return r.specType
	}
	return Unknown
}

// tokenUniqueSlice adapts a []path.Token to mpvl/unique's Interface so that
// List's result set (unordered by contract) can be sorted-then-compacted
// rather than hand-rolling a dedup pass.
type tokenUniqueSlice []path.Token

func (s tokenUniqueSlice) Len() int           { return len(s) }
func (s tokenUniqueSlice) Less(i, j int) bool { return s[i].String() < s[j].String() }
func (s tokenUniqueSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s tokenUniqueSlice) Equal(i, j int) bool { return s[i] == s[j] }

func (d *InMemoryData) List(p path.Path) []path.Token {
	r, ok := d.records[p]
	if !ok {
		return nil
	}
	out := make([]path.Token, 0, len(r.fields))
	for f := range r.fields {
		out = append(out, f)
	}
	n := unique.Sort(tokenUniqueSlice(out))
	return out[:n]
}

func (d *InMemoryData) Has(p path.Path, field path.Token) bool {
	r, ok := d.records[p]
	if !ok {
		return false
	}
	_, ok = r.fields[field]
	return ok
}

func (d *InMemoryData) Get(p path.Path, field path.Token) (value.Value, bool) {
	r, ok := d.records[p]
	if !ok {
		return value.Empty, false
	}
	v, ok := r.fields[field]
	return v, ok
}

func (d *InMemoryData) HasSpecAndField(p path.Path, field path.Token) (value.Value, SpecType, bool) {
	r, ok := d.records[p]
	if !ok {
		return value.Empty, Unknown, false
	}
	v := r.fields[field] // presence in the field map alone is truth here
	_, present := r.fields[field]
	return v, r.specType, present
}

func (d *InMemoryData) Set(p path.Path, field path.Token, v value.Value) bool {
	r, ok := d.records[p]
	if !ok {
		diag.Report(diag.CodingError, "data: set: no record at %s", p)
		return false
	}
	if v.IsEmpty() {
		delete(r.fields, field)
		return true
	}
	r.fields[field] = v
	return true
}

func (d *InMemoryData) Erase(p path.Path, field path.Token) bool {
	r, ok := d.records[p]
	if !ok {
		return false
	}
	if _, ok := r.fields[field]; !ok {
		return false
	}
	delete(r.fields, field)
	return true
}

// --- time samples ---------------------------------------------------------

func (d *InMemoryData) sortedTimes(p path.Path) []float64 {
	r, ok := d.records[p]
	if !ok || len(r.times) == 0 {
		return nil
	}
	out := make([]float64, 0, len(r.times))
	for t := range r.times {
		out = append(out, t)
	}
	sort.Float64s(out)
	return out
}

func (d *InMemoryData) ListAllTimeSamples() []float64 {
	var all []float64
	for _, r := range d.records {
		for t := range r.times {
			all = append(all, t)
		}
	}
	sort.Float64s(all)
	n := unique.Sort(float64UniqueSlice(all))
	return all[:n]
}

type float64UniqueSlice []float64

func (s float64UniqueSlice) Len() int           { return len(s) }
func (s float64UniqueSlice) Less(i, j int) bool { return s[i] < s[j] }
func (s float64UniqueSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s float64UniqueSlice) Equal(i, j int) bool { return s[i] == s[j] }

func (d *InMemoryData) ListTimeSamplesForPath(p path.Path) []float64 {
	return d.sortedTimes(p)
}

func (d *InMemoryData) GetNumTimeSamplesForPath(p path.Path) int {
	r, ok := d.records[p]
	if !ok {
		return 0
	}
	return len(r.times)
}

// bracketingTimeSamples finds the two sample times in times that
// bracket t: clamped at the extremes, collapsed when t lands exactly on
// a sample.
func bracketingTimeSamples(times []float64, t float64) (lo, hi float64, ok bool) {
	if len(times) == 0 {
		return 0, 0, false
	}
	i := sort.SearchFloat64s(times, t)
	switch {
	case i < len(times) && times[i] == t:
		return t, t, true
	case i == 0:
		return times[0], times[0], true
	case i == len(times):
		return times[len(times)-1], times[len(times)-1], true
	default:
		return times[i-1], times[i], true
	}
}

func (d *InMemoryData) GetBracketingTimeSamples(t float64) (lo, hi float64, ok bool) {
	return bracketingTimeSamples(d.ListAllTimeSamples(), t)
}

func (d *InMemoryData) GetBracketingTimeSamplesForPath(p path.Path, t float64) (lo, hi float64, ok bool) {
	return bracketingTimeSamples(d.sortedTimes(p), t)
}

// GetPreviousTimeSampleForPath returns the greatest sample time strictly
// less than t, using a direct std::prev(lower_bound(t))-style binary
// search rather than stepping backward from t with nexttoward.
func (d *InMemoryData) GetPreviousTimeSampleForPath(p path.Path, t float64) (prev float64, ok bool) {
	times := d.sortedTimes(p)
	if len(times) == 0 {
		return 0, false
	}
	i := sort.SearchFloat64s(times, t) // first index with times[i] >= t
	if i == 0 {
		return 0, false
	}
	return times[i-1], true
}

func (d *InMemoryData) QueryTimeSample(p path.Path, t float64) (value.Value, bool) {
	r, ok := d.records[p]
	if !ok {
		return value.Empty, false
	}
	v, ok := r.times[t]
	return v, ok
}

func (d *InMemoryData) SetTimeSample(p path.Path, t float64, v value.Value) {
	r, ok := d.records[p]
	if !ok {
		diag.Report(diag.CodingError, "data: set-time-sample: no record at %s", p)
		return
	}
	if v.IsEmpty() {
		delete(r.times, t)
		return
	}
	if r.times == nil {
		r.times = make(map[float64]value.Value)
	}
	r.times[t] = v
}

func (d *InMemoryData) EraseTimeSample(p path.Path, t float64) {
	r, ok := d.records[p]
	if !ok {
		return
	}
	delete(r.times, t)
}

// --- traversal / debug ----------------------------------------------------

func (d *InMemoryData) sortedPaths() []path.Path {
	out := make([]path.Path, 0, len(d.records))
	for p := range d.records {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return path.Less(out[i], out[j]) })
	return out
}

func (d *InMemoryData) VisitSpecs(visit func(d AbstractData, p path.Path) bool) {
	for _, p := range d.sortedPaths() {
		if !visit(d, p) {
			return
		}
	}
}

func (d *InMemoryData) Equals(other AbstractData) bool {
	o, ok := other.(*InMemoryData)
	if !ok {
		return equalsGeneric(d, other)
	}
	if len(d.records) != len(o.records) {
		return false
	}
	for p, r := range d.records {
		or, ok := o.records[p]
		if !ok || r.specType != or.specType || len(r.fields) != len(or.fields) {
			return false
		}
		for f, v := range r.fields {
			ov, ok := or.fields[f]
			if !ok || !v.Equals(ov) {
				return false
			}
		}
		if len(r.times) != len(or.times) {
			return false
		}
		for t, v := range r.times {
			ov, ok := or.times[t]
			if !ok || !v.Equals(ov) {
				return false
			}
		}
	}
	return true
}

// equalsGeneric compares against any AbstractData implementation by
// walking specs through the interface, for cross-backend equality checks
// (e.g. InMemoryData vs CrateData).
func equalsGeneric(d AbstractData, other AbstractData) bool {
	var mismatch bool
	d.VisitSpecs(func(_ AbstractData, p path.Path) bool {
		if !other.HasSpec(p) || other.GetSpecType(p) != d.GetSpecType(p) {
			mismatch = true
			return false
		}
		for _, f := range d.List(p) {
			v, _ := d.Get(p, f)
			ov, ok := other.Get(p, f)
			if !ok || !v.Equals(ov) {
				mismatch = true
				return false
			}
		}
		return true
	})
	return !mismatch
}

// WriteToStream dumps the store in sorted, deterministic order using
// kr/pretty for each record's field map, producing stable, diffable text
// for tests.
func (d *InMemoryData) WriteToStream(out io.Writer) error {
	for _, p := range d.sortedPaths() {
		r := d.records[p]
		fmt.Fprintf(out, "%s [%s]\n", p.String(), r.specType)
		names := d.List(p)
		for _, f := range names {
			fmt.Fprintf(out, "  %s = %s\n", f.String(), strings.TrimSpace(pretty.Sprint(r.fields[f].Raw())))
		}
		if len(r.times) > 0 {
			times := d.sortedTimes(p)
			fmt.Fprintf(out, "  timeSamples:\n")
			for _, t := range times {
				fmt.Fprintf(out, "    %v = %s\n", t, strings.TrimSpace(pretty.Sprint(r.times[t].Raw())))
			}
		}
	}
	return nil
}

// --- dictionary-key helpers ------------------------------------------------

func splitKeyPath(keyPath string) []string {
	return strings.Split(keyPath, ".")
}

func dictField(d AbstractData, p path.Path, field path.Token) (map[string]value.Value, bool) {
	v, ok := d.Get(p, field)
	if !ok || v.Kind() != value.Dictionary {
		return nil, false
	}
	m, ok := value.Get[map[string]value.Value](v)
	return m, ok
}

// navigateDict walks all but the last component of keyPath through nested
// dictionary values, returning the map that should hold the final key.
func navigateDict(root map[string]value.Value, keys []string, create bool) (map[string]value.Value, string, bool) {
	m := root
	for i := 0; i < len(keys)-1; i++ {
		next, ok := m[keys[i]]
		if !ok || next.Kind() != value.Dictionary {
			if !create {
				return nil, "", false
			}
			nv := value.NewDictionary(make(map[string]value.Value))
			m[keys[i]] = nv
			stored, _ := value.Get[map[string]value.Value](nv)
			m = stored
			continue
		}
		nm, _ := value.Get[map[string]value.Value](next)
		m = nm
	}
	return m, keys[len(keys)-1], true
}

func (d *InMemoryData) HasDictKey(p path.Path, field path.Token, keyPath string) bool {
	m, ok := dictField(d, p, field)
	if !ok {
		return false
	}
	sub, last, ok := navigateDict(m, splitKeyPath(keyPath), false)
	if !ok {
		return false
	}
	_, present := sub[last]
	return present
}

func (d *InMemoryData) GetDictValueByKey(p path.Path, field path.Token, keyPath string) (value.Value, bool) {
	m, ok := dictField(d, p, field)
	if !ok {
		return value.Empty, false
	}
	sub, last, ok := navigateDict(m, splitKeyPath(keyPath), false)
	if !ok {
		return value.Empty, false
	}
	v, ok := sub[last]
	return v, ok
}

func (d *InMemoryData) SetDictValueByKey(p path.Path, field path.Token, keyPath string, v value.Value) {
	m, ok := dictField(d, p, field)
	if !ok {
		m = make(map[string]value.Value)
	}
	keys := splitKeyPath(keyPath)
	sub, last, _ := navigateDict(m, keys, true)
	if v.IsEmpty() {
		delete(sub, last)
	} else {
		sub[last] = v
	}
	d.Set(p, field, value.NewDictionary(m))
}

// EraseDictValueByKey removes keyPath from field's dictionary; if that
// leaves the dictionary empty the field itself is erased.
func (d *InMemoryData) EraseDictValueByKey(p path.Path, field path.Token, keyPath string) {
	m, ok := dictField(d, p, field)
	if !ok {
		return
	}
	sub, last, ok := navigateDict(m, splitKeyPath(keyPath), false)
	if !ok {
		return
	}
	delete(sub, last)
	if len(m) == 0 {
		d.Erase(p, field)
		return
	}
	d.Set(p, field, value.NewDictionary(m))
}

func (d *InMemoryData) ListDictKeys(p path.Path, field path.Token) []string {
	m, ok := dictField(d, p, field)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

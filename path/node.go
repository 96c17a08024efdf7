package path

import (
	"fmt"
	"hash/fnv"
	"sync"
)

// componentKind discriminates the kinds of path component: a name child,
// a variant selection, a property, a relational attribute, a target, a
// mapper, a mapper argument, or an expression.
type componentKind uint8

const (
	kindRoot componentKind = iota // the absolute-root marker "/"
	kindPrimName
	kindPrimVariantSelection
	kindPropertyName
	kindRelationalAttribute
	kindTarget
	kindMapper
	kindMapperArg
	kindExpression
)

// component is one link of the path's cons-list. Only the fields relevant
// to comp.kind are meaningful.
type component struct {
	kind       componentKind
	name       Token  // primName, propertyName, relationalAttribute, mapperArg
	variantSet Token  // primVariantSelection
	variantSel Token  // primVariantSelection
	target     *node  // target, mapper: the payload path
}

// node is one interned link in the path's cons-list. Two Paths are equal
// iff they share the same *node after interning.
type node struct {
	parent *node
	comp   component
	depth  int
}

func depthOf(n *node) int {
	if n == nil {
		return 0
	}
	return n.depth
}

// --- process-wide interning table -----------------------------------------
//
// Sharded by a hash of the key so that concurrent construction of distinct
// paths from many goroutines doesn't serialize on one lock: the interning
// cache must support concurrent Path construction from arbitrary
// goroutines without a single global mutex becoming a bottleneck. Each
// shard is a plain map guarded by its own mutex, keyed by keyString's
// rendering of the parent pointer and the component fields.

const numShards = 64

type shard struct {
	mu sync.Mutex
	m  map[string]*node
}

var shards [numShards]shard

func init() {
	for i := range shards {
		shards[i].m = make(map[string]*node, 64)
	}
}

func keyString(parent *node, c component) string {
	return fmt.Sprintf("%p|%d|%s|%s|%s|%p", parent, c.kind, c.name, c.variantSet, c.variantSel, c.target)
}

func shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % numShards)
}

// intern returns the canonical *node for (parent, c), creating it if this
// is the first time the combination has been requested by any goroutine.
func intern(parent *node, c component) *node {
	key := keyString(parent, c)
	sh := &shards[shardIndex(key)]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if n, ok := sh.m[key]; ok {
		return n
	}
	n := &node{parent: parent, comp: c, depth: depthOf(parent) + 1}
	sh.m[key] = n
	return n
}

var rootNode = intern(nil, component{kind: kindRoot})

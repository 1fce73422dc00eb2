package nasc

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/nascore/nasc/internal/nasclog"
)

// reflectionCache memoizes, per struct type, which fields AutoWire should
// touch and how — sparing every AutoWire call after the first from
// re-walking the struct's fields and re-parsing their `inject` tags.
// Shared at the root scope, since the set of injectable fields on a
// given type never depends on which scope is doing the wiring.
type reflectionCache struct {
	logger nasclog.Logger

	mu     sync.RWMutex
	fields map[reflect.Type][]injectableField
}

// injectableField is one struct field AutoWire should populate, with its
// `inject` tag already parsed — computed once per struct type and reused
// across every AutoWire call against that type.
type injectableField struct {
	index   int
	name    string
	typ     reflect.Type
	options tagOptions
}

func newReflectionCache(logger nasclog.Logger) *reflectionCache {
	return &reflectionCache{
		logger: logger,
		fields: make(map[reflect.Type][]injectableField),
	}
}

// injectableFieldsOf returns typ's injectable fields, computing and
// caching them on first request. typ must already be dereferenced past
// any pointer indirection; a non-struct typ caches (and returns) an
// empty slice so a repeat request skips straight to the fast path.
func (rc *reflectionCache) injectableFieldsOf(typ reflect.Type) []injectableField {
	rc.mu.RLock()
	fields, cached := rc.fields[typ]
	rc.mu.RUnlock()
	if cached {
		return fields
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if fields, cached := rc.fields[typ]; cached {
		return fields
	}

	fields = scanInjectableFields(typ)
	rc.fields[typ] = fields
	if rc.logger != nil {
		rc.logger.Debug("nasc: struct fields scanned for autowire",
			zap.Stringer("type", typ), zap.Int("injectable", len(fields)))
	}
	return fields
}

// scanInjectableFields walks typ's exported fields once, parsing every
// `inject` tag it carries. A field tagged `inject:"-"` or with no
// `inject` tag at all is left out of the result entirely, so
// injectableFieldsOf never has to re-inspect a raw reflect.StructTag.
func scanInjectableFields(typ reflect.Type) []injectableField {
	if typ.Kind() != reflect.Struct {
		return nil
	}

	numFields := typ.NumField()
	fields := make([]injectableField, 0, numFields)

	for i := 0; i < numFields; i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue // unexported, AutoWire could never Set it
		}

		raw, hasTag := field.Tag.Lookup("inject")
		if !hasTag {
			continue
		}
		opts := parseInjectTag(raw)
		if opts.skip {
			continue
		}

		fields = append(fields, injectableField{
			index:   i,
			name:    field.Name,
			typ:     field.Type,
			options: opts,
		})
	}

	return fields
}

// clear drops every cached type's field list, forcing the next
// injectableFieldsOf call for each to re-scan and re-parse tags. Exposed
// for tests exercising cache-population behavior directly.
func (rc *reflectionCache) clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.fields = make(map[reflect.Type][]injectableField)
}

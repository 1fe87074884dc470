// Package options implements the layered option model for herald views.
//
// Every view works from a single effective option set produced by deep
// merging three layers: configuration-store defaults for the view name,
// static options fixed at view construction, and per-route overrides
// supplied by the dispatch layer. Later layers win on conflict; nested
// maps merge recursively; any other value overwrites wholesale.
package options

// Recognized core option keys. The option set is open-ended: backends
// are free to read keys beyond these.
const (
	KeyView       = "view"
	KeyBackend    = "backend"
	KeyRender     = "render"
	KeyFallback   = "fallback"
	KeyFormat     = "format"
	KeyAlign      = "align"
	KeyLang       = "lang"
	KeyBufOptions = "buf_options"
	KeyWinOptions = "win_options"
	KeyType       = "type"
)

// Options is a nested option table for a view or backend.
type Options map[string]any

// Source supplies configuration-store defaults for a view name.
// Absent configuration yields a nil table, which is a valid empty base.
type Source interface {
	Options(viewName string) map[string]any
}

// Clone returns a deep copy of o. A nil receiver clones to an empty table.
func Clone(o Options) Options {
	if o == nil {
		return Options{}
	}
	return Options(cloneMap(o))
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Options) bool {
	return mapsEqual(a, b)
}

// String returns the string value at key, or "" when absent or mistyped.
func (o Options) String(key string) string {
	s, _ := o[key].(string)
	return s
}

// Bool returns the bool value at key, or false when absent or mistyped.
func (o Options) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// Int returns the integer value at key, accepting the numeric types the
// config loaders produce.
func (o Options) Int(key string) (int, bool) {
	switch v := o[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Map returns the nested table at key, or nil when absent or mistyped.
func (o Options) Map(key string) map[string]any {
	m, _ := o[key].(map[string]any)
	return m
}

// StringList returns the value at key normalized to an ordered string
// list: a single string becomes a one-element list, and mixed lists keep
// only their string elements.
func (o Options) StringList(key string) []string {
	switch v := o[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Resolve merges the configuration-store defaults for viewName with the
// caller-supplied options and derives the backend candidate list.
//
// The caller's table is never mutated; callers that need the
// pre-resolution snapshot must clone it themselves before calling.
// The result always carries a populated "view" string and a non-empty
// "backend" candidate list.
func Resolve(src Source, viewName string, caller Options) Options {
	base := map[string]any{}
	if src != nil {
		if defaults := src.Options(viewName); defaults != nil {
			base = cloneMap(defaults)
		}
	}

	merged := Options(DeepMerge(base, caller))
	merged[KeyView] = viewName
	merged[KeyBackend] = backendCandidates(merged, viewName)
	return merged
}

// backendCandidates derives the ordered backend list: an explicit
// "backend" key wins, then the "render" alias, then the view name itself.
func backendCandidates(o Options, viewName string) []string {
	if list := o.StringList(KeyBackend); len(list) > 0 {
		return list
	}
	if list := o.StringList(KeyRender); len(list) > 0 {
		return list
	}
	return []string{viewName}
}

package config

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
)

// LoadLua evaluates a Lua configuration file and converts the table
// it returns into a tree. A missing file yields a nil tree. A script
// that returns nothing also yields a nil tree.
func LoadLua(path string) (map[string]any, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: false})
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}

	ret := L.Get(-1)
	if ret == lua.LNil {
		return nil, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("config file %s must return a table, got %s", path, ret.Type())
	}

	tree, ok := luaToGo(tbl, make(map[*lua.LTable]bool)).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("config file %s must return a keyed table, not an array", path)
	}
	return tree, nil
}

// luaToGo converts a Lua value to its Go equivalent. Visited tables
// are tracked so circular references collapse to nil.
func luaToGo(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	default:
		return nil
	}
}

// tableToGo converts a Lua table to a Go slice when its keys form a
// contiguous 1..n array, and a map otherwise. An empty table is an
// empty map.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	isArray := true
	maxN := 0
	count := 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if kn, ok := k.(lua.LNumber); ok {
			n := int(kn)
			if float64(n) == float64(kn) && n > 0 {
				if n > maxN {
					maxN = n
				}
				return
			}
		}
		isArray = false
	})

	if isArray && maxN > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = luaToGo(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = luaToGo(v, visited)
	})
	return m
}

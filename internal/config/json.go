package config

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// LoadJSON reads a JSON configuration file into a tree. A missing
// file yields a nil tree.
func LoadJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: path, Message: "invalid JSON"}
	}
	v := gjson.ParseBytes(data).Value()
	tree, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("config file %s must contain a JSON object", path)
	}
	return tree, nil
}

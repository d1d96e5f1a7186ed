package config

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// viewImportDecodeHook trims whitespace around each entry of a views.<name>
// import list, so a config author can write "java.util.*, java.lang.String"
// without producing a stray leading space in the import target.
func viewImportDecodeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf([]string(nil)) {
		return data, nil
	}
	s, ok := data.([]string)
	if !ok {
		return data, nil
	}
	out := make([]string, 0, len(s))
	for _, entry := range s {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

var _ mapstructure.DecodeHookFuncType = viewImportDecodeHook

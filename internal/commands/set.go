package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/otherjamesbrown/ctfd-admin/internal/client/ctfd"
)

// parseSet turns repeated --set key=value flags into a patch. A value that is
// a JSON literal (true, 3, null, "quoted", {...}) is sent as that value;
// anything else is sent as a plain string.
func parseSet(assignments []string) (ctfd.Patch, error) {
	patch := ctfd.Patch{}
	for _, a := range assignments {
		key, raw, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", a)
		}
		patch[key] = parseValue(raw)
	}
	return patch, nil
}

func parseValue(raw string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

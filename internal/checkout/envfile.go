package checkout

import (
	"strconv"
	"strings"
)

const (
	envSuccessKey = "checkout_success_path"
	envCancelKey  = "checkout_cancel_path"
)

type envAssignment struct {
	key   string
	value string
}

// setEnvValues rewrites each `key = "value"` line for the given keys, or
// appends the assignment when the key has no line yet. Other lines, comments
// and line endings are kept as they are.
func setEnvValues(content string, values []envAssignment) string {
	lines := strings.SplitAfter(content, "\n")
	for _, kv := range values {
		line := kv.key + " = " + strconv.Quote(kv.value)
		found := false
		for i, l := range lines {
			if envKey(l) != kv.key {
				continue
			}
			lines[i] = line + lineEnding(l)
			found = true
		}
		if found {
			continue
		}
		if n := len(lines); n > 0 && lines[n-1] != "" && !strings.HasSuffix(lines[n-1], "\n") {
			lines[n-1] += "\n"
		}
		if n := len(lines); n > 0 && lines[n-1] == "" {
			lines = lines[:n-1]
		}
		lines = append(lines, line+"\n")
	}
	return strings.Join(lines, "")
}

// envKey returns the variable assigned on line, or "" for blank lines and
// comments.
func envKey(line string) string {
	t := strings.TrimSpace(line)
	if t == "" || strings.HasPrefix(t, "#") {
		return ""
	}
	t = strings.TrimPrefix(t, "export ")
	eq := strings.IndexByte(t, '=')
	if eq < 0 {
		return ""
	}
	return strings.TrimSpace(t[:eq])
}

func lineEnding(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	}
	return ""
}

package service

import (
	"strings"

	"traefiker/internal/db"
)

// ParseEnv converts KEY=VALUE entries as reported by the runtime into
// environment variables. Only the first '=' separates key from value; an
// entry without '=' has an empty value. Entries with an empty key are skipped.
func ParseEnv(entries []string) []db.EnvironmentVariable {
	vars := make([]db.EnvironmentVariable, 0, len(entries))
	for _, entry := range entries {
		key, value, _ := strings.Cut(entry, "=")
		if key == "" {
			continue
		}
		vars = append(vars, db.EnvironmentVariable{Key: key, Value: value})
	}
	return vars
}

// envList renders variables as KEY=VALUE entries for container creation.
// A key listed twice keeps its first position and its last value.
func envList(vars []db.EnvironmentVariable) []string {
	index := make(map[string]int, len(vars))
	entries := make([]string, 0, len(vars))
	for _, v := range vars {
		entry := v.Key + "=" + v.Value
		if i, ok := index[v.Key]; ok {
			entries[i] = entry
			continue
		}
		index[v.Key] = len(entries)
		entries = append(entries, entry)
	}
	return entries
}

// imageEnv picks the runtime-reported entries the image contributed, which
// are those whose key no override sets.
func imageEnv(entries []string, overrides []db.EnvironmentVariable) []db.EnvironmentVariable {
	set := make(map[string]struct{}, len(overrides))
	for _, v := range overrides {
		set[v.Key] = struct{}{}
	}

	vars := ParseEnv(entries)
	kept := vars[:0]
	for _, v := range vars {
		if _, ok := set[v.Key]; ok {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

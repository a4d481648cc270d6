package validate

import (
	"fmt"
	"slices"
)

var (
	knownVersions       = []string{"1.0", "1.1", "1.2"}
	knownDataSources    = []string{"ds.search", "ds.chain", "ds.savedSearch"}
	knownVisualizations = []string{
		"splunk.singlevalue", "splunk.line", "splunk.column", "splunk.pie",
		"splunk.table", "splunk.scatter", "splunk.bubble", "splunk.area",
	}
)

// Dashboard 检查 Dashboard Studio 定义的结构
func Dashboard(v map[string]any) (errs, warns []string) {
	for _, field := range []string{"version", "title"} {
		if _, ok := v[field]; !ok {
			warns = append(warns, "Dashboard missing recommended field: "+field)
		}
	}

	if version, ok := v["version"]; ok {
		if s, isString := version.(string); !isString || !slices.Contains(knownVersions, s) {
			warns = append(warns, fmt.Sprintf("Unknown dashboard version: %v", version))
		}
	}

	e, w := typedSection(v, "dataSources", "DataSource", knownDataSources, "has unusual type")
	errs, warns = append(errs, e...), append(warns, w...)

	e, w = typedSection(v, "visualizations", "Visualization", knownVisualizations, "uses non-standard type")
	errs, warns = append(errs, e...), append(warns, w...)

	return errs, warns
}

// typedSection 检查 section 下每个条目都有 type 字段，且取值在 known 中
func typedSection(v map[string]any, section, label string, known []string, unusual string) (errs, warns []string) {
	entries, ok := v[section].(map[string]any)
	if !ok {
		if _, present := v[section]; present {
			errs = append(errs, fmt.Sprintf("%s section must be an object", section))
		}
		return errs, warns
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		entry, ok := entries[name].(map[string]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s '%s' must be an object", label, name))
			continue
		}
		typ, ok := entry["type"]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s '%s' missing type field", label, name))
			continue
		}
		if s, isString := typ.(string); !isString || !slices.Contains(known, s) {
			warns = append(warns, fmt.Sprintf("%s '%s' %s: %v", label, name, unusual, typ))
		}
	}

	return errs, warns
}

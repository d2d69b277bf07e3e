// Package file provides the TOML-backed configuration store.
//
// Keys are addressed in dot notation ("pipeline.max_attempts") and written
// back as nested tables, so ~/.quire/config.toml stays hand-editable:
//
//	[pipeline]
//	max_attempts = 5
//	back_off_unit = "500ms"
//
//	[github]
//	repo = "acme/widgets"
package file

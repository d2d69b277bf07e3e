// Package github renders GitHub issues as markdown sections.
//
// Each issue becomes a "## #N · Title" section carrying its state, opening
// date, author, assignees and labels, followed by the body and every
// comment as a quoted block.
package github

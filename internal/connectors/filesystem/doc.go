// Package filesystem implements the local folder connector used by
// "quire merge": it lists the files of one extension in a folder, sorted by
// name, and reads their bytes.
package filesystem

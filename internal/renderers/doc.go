// Package renderers provides implementations of the Renderer interface.
// Each renderer turns the content of one item into the block that is
// appended to an artifact, and names the separator written between blocks.
package renderers

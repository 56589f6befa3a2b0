// Package printdoc prepares a generated site for printing.
//
// Prepare injects a page stylesheet, an optional cover page and an optional
// table of contents into a complete HTML document. The result is meant to be
// opened by a browser and printed, either by the user or by the PDF exporter.
package printdoc

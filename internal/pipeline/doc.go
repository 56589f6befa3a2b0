// Package pipeline implements the Markdown stages of site generation.
//
// The stages are small and independent:
//   - Slugify turns headings into anchor ids
//   - ParsePage extracts the title and level-2 sections of a file
//   - BuildNavigation maps pages to navigation entries
//   - RegexRenderer converts Markdown to an HTML fragment through ordered passes
//   - GoldmarkRenderer is a CommonMark alternative behind the same Renderer interface
//
// Layout selection, theming and document assembly live in internal/layout and
// the root md2site package. Nothing here touches the filesystem.
package pipeline

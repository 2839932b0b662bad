// Package postprocessors cleans extracted page text before chunking.
//
// Processors are built by name from a Registry and chained in a Pipeline.
// Built-in processors:
//
//   - dehyphenate: rejoins words split across line breaks
//   - page_numbers: drops lines holding only a page number
//   - strip_lines: drops lines matching configured patterns
package postprocessors

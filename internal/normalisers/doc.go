// Package normalisers turns study material files into page-ordered documents.
//
// Each sub-package implements driven.PageSource for one file format:
//
//   - plaintext: .txt files, pages separated by form feeds
//   - markdown: .md slide decks, pages separated by horizontal rules
//   - pdf: .pdf files, one page per PDF page
//
// The Registry dispatches a path to the first source that supports it and
// expands directories into the files they contain.
package normalisers

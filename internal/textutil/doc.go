// Package textutil provides filesystem-safe name sanitization for output
// paths derived from project directory names.
package textutil

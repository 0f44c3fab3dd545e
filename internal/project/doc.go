// Package project implements project-directory discovery: locating the
// single video and subtitle file a run operates on, the optional voice map
// and glossary, and the sibling output tree a run writes into.
package project

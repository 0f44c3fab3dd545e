// Package language normalizes the subtitle language a project's
// configuration may supply in any of several common forms (a 2-letter
// code, a 3-letter code, or an English name) into the ISO 639-2 form the
// muxer embeds as a stream metadata tag.
package language

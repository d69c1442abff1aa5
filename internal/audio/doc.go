// Package audio plays a short sound when a toast appears, chosen by the
// toast's severity.
package audio

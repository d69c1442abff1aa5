// Package daemon holds the pieces of toastuid that sit around the
// notification center: configuration and theme hot-reload, and the
// internal notices the daemon posts about itself.
package daemon

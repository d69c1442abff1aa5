// Package theme maps severities to their visual treatment and loads the
// stylesheets served with the HTML surface. Bundled stylesheets are embedded;
// users can override them from ~/.config/toastui/themes/.
package theme

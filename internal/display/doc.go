// Package display implements the GTK4 tooltip backend.
// Popups are layer-shell overlay surfaces showing a memory texture, timers run
// on the glib main loop and host widgets are adapted to tooltip elements.
package display

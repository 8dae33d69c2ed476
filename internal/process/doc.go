// Package process terminates headless browser process trees.
//
// Chrome forks renderer, GPU and utility children. Killing only the parent
// leaves orphans behind, so the engine release path kills the whole group.
package process

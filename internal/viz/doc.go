// Package viz renders scenes in the terminal: a Braille pixel canvas for
// body and constraint geometry, and a Bubble Tea live view that steps the
// engine at a fixed frame rate.
//
// Key bindings in the live view:
//
//	Space - pause/resume
//	R     - reset to the initial scene
//	F     - toggle between image-mapping and fit-to-bodies framing
//	T     - cycle color themes
//	Q     - quit
package viz

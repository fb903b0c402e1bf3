// Package viz is the terminal front end for running networks.
//
// [Model] is a Bubble Tea model that integrates an assembled system a few
// steps per frame. Phase networks (Kuramoto, swing) are drawn as dots on the
// unit circle on a Braille [Canvas]; other networks as one bar per vertex. An
// asciigraph chart follows the order parameter or any single component.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial state
//	Tab   - Cycle the charted component
//	?     - Show help
//	Q     - Quit
package viz

// Package viz provides the interactive terminal view of a reactor run.
//
// [Model] is a Bubble Tea program that paces a [playback.Player] from its
// frame ticks and charts power with asciigraph.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to t=0
//	[ ]   - Seek backward/forward by replaying from t=0
//	L     - Toggle log power axis
//	T     - Cycle color themes
//	?     - Show help
//	Q     - Quit
package viz

// Package viz draws a running world in the terminal.
//
// The live view is a Bubble Tea program: every frame advances the world by
// one tick and redraws it on a Braille [Canvas] through a 2D [Camera] that
// looks down the z axis. The first body is drawn orange and the others
// turquoise, each as a disc of radius twice its mass in world units.
//
// A tick is either a fixed dt or the wall-clock frame time multiplied by the
// speed factor, capped at [MaxFrameDt].
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	R     - Reset to initial state
//	F     - Follow the centre of mass
//	T     - Toggle trails
//	+/-   - Zoom in/out
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz

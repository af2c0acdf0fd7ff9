// Package playback paces a simulation against a clock.
//
// A [Ticker] decides when ticks happen; a [Pacer] turns elapsed wall time
// into at most one engine step per tick; a [Player] ties both to an
// [engine.Simulation] and adds pause, resume, reset and seek. Pacing only
// changes when Step is called, never what it computes, so a paced run and a
// batch replay of the same parameters produce identical samples.
package playback

// Package engine owns a point-kinetics run: its parameters and the
// append-only history of samples produced by fixed-size integration steps.
//
// A [Simulation] is created by [Reset], grows by [Simulation.Step] and is
// never rewound. Seeking to an earlier time is a full replay through
// [RunTo]; there is no snapshotting of intermediate states.
//
// # Thread Safety
//
// Simulation has a single writer and does no locking. Callers that drive it
// from more than one goroutine must serialize access (see package playback).
package engine

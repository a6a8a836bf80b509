// Package optimizer matches pending procedure requests to free time slots.
//
// A run filters and orders the requests, encodes requests and slots as
// six-dimensional feature vectors, rescales both sides with a min-max fit
// taken from the requests, ranks slots by cosine similarity and hands the
// ranking to an Assigner. The greedy assigner claims, in priority order, the
// best ranked slot that is long enough and hosted by a suitable resource.
//
// The package performs no I/O and keeps no state between runs: identical
// inputs, including the reference time, produce identical results.
package optimizer

// Package list implements the owning singly linked chain that backs the string
// queue. Every function relinks existing nodes only: nothing here allocates or
// drops a node, so callers keep exact control over node ownership.
//
// Sorting is a bottom-up merge sort. Runs of width 1, 2, 4, ... are merged
// pairwise in passes over the chain, which keeps auxiliary depth constant no
// matter how long the chain grows.
package list

// Package engine is the execution layer. It instantiates a graph model into
// live node runtimes, wires their plugs, and runs the per-frame tick and
// draw traversals.
//
// A traversal starts at the display node and visits predecessors depth
// first, stamping each runtime with the traversal id before recursing so
// that every node runs at most once per traversal, cycles included. Tick
// traversals then sweep the remaining unvisited nodes ("islands") in
// ascending id order; draw traversals do not.
//
// The graph is not safe for concurrent use. Edits are applied between
// frames by the caller.
package engine

// Package node implements the live side of a graph node: a Runtime owning
// ordered input and output Plugs, the tagged Value storage behind them, and
// the Behavior interface concrete node types implement.
//
// An input plug either reads its own storage (literal or declared default)
// or, once connected, the storage of the output driving it. Float inputs
// may be driven by several outputs at once; each connection contributes an
// aggregation element and the effective value is their sum.
//
// Runtimes never hold pointers to other runtimes. Trigger delivery and
// traversal bookkeeping go through the Host the execution graph installs.
package node

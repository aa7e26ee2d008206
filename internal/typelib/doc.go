// Package typelib holds the node and socket type metadata the rest of the
// engine consults: which node types exist, which sockets they declare in
// which order, the value type of each socket, and the rules deciding
// whether two sockets may be connected.
//
// A Library is populated once by the composition root (usually from the
// HCL manifests embedded in each module) and is read-only afterwards.
package typelib

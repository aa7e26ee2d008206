// Package graphmodel is the persisted, edit-time representation of a graph:
// nodes with literal socket values and opaque resource blobs, and links
// between an output socket of one node and an input socket of another.
//
// All mutation goes through Model methods. Each mutator notifies the
// optional Listener; removals are announced before the element disappears
// so a listener can unwire live state that still refers to it. Removing a
// node removes every link touching it first.
//
// Ids are allocated from counters that never hand out a freed id again, so
// an id observed by a listener is never recycled within one model.
package graphmodel

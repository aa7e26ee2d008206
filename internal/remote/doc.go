// Package remote connects a running graph to an external editor over
// socket.io. Edits arrive on socket.io goroutines and are only queued here;
// the frame loop drains them between frames and applies them to the model.
package remote

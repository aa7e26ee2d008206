// Package livesync keeps a running execution graph in step with its graph
// model. It is installed as the model's listener and translates every
// mutation into the matching incremental graph operation, so edits take
// effect without rebuilding the graph.
//
// While a model is being (re)loaded the synchronizer is in the Loading
// state: the old graph is destroyed, incremental notifications are
// ignored, and LoadEnd constructs a fresh graph from the loaded model.
package livesync

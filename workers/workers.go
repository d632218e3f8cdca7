// Package workers holds the long-running loops of the service: the HTTP
// front-end and the history reconciler.
package workers

// WorkerShutdown is flipped by the HTTP worker on SIGINT/SIGTERM; the
// other workers poll it between iterations.
var WorkerShutdown = false

// Package task runs fire-and-forget background work on a bounded queue
// drained by a fixed pool of workers. Submitting never blocks: a full or
// closed queue is reported as an error and the caller decides what to do.
package task

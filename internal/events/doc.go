// Package events carries account lifecycle notifications from the service
// layer to interested components without coupling them together.
//
// The service emits an AccountEvent after every successful state change.
// An EventEmitter fans the event out to registered EventHandlers; the
// LogHandler turns each event into an audit log line.
package events

// Package events carries domain events between services without coupling
// them to the components that react.
//
// Services emit an Event (for example "transaction.created") through an
// EventEmitter; every registered EventHandler receives it and ignores the
// types it does not care about.
package events

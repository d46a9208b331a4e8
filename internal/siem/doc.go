// Package siem delivers log entries to a remote collector over HTTPS.
//
// The collector is opaque: chronicle only knows the envelope shape it accepts
// (generic object, token-authenticated HEC, compact line-delimited document,
// or single-element batch array) and that 2xx means accepted. Transient
// failures are retried with exponential backoff; after the final attempt the
// caller is expected to persist the entry to the durable spool so nothing is
// silently lost. Redelivery of spooled items is an external process.
package siem

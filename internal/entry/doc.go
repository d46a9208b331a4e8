// Package entry defines the immutable log entry model shared by every sink.
//
// An Entry is assembled once per Emit call and then handed, read-only, to the
// file, event, and SIEM sinks. The package owns the ordered severity levels,
// the ordered additional-data field list, and the JSON encoding used by both
// the file sink and the durable SIEM spool, so the on-disk record and the
// spooled item always round-trip through the same code.
package entry

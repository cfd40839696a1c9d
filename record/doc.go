// Package record converts note selections to and from the binary record
// stream carried inside a clipboard payload.
//
// A stream is a LEB128 record count followed by that many records. The
// layout of each record depends on the payload version:
//
//	version 2 (tagged):  row-delta column tag [length]
//	version 1 (flagged): column|0x80? row [end-row tag]
//
// Streams are written in canonical (row, column) order, so row deltas are
// never negative. Decoding rejects truncated records, unknown tags,
// records out of canonical order, and bytes after the last record.
package record

// Package writers turns replicate records into serialized outputs.
//
// Design:
//   - Every output is a Sink: one Write per record, in record order, then Close.
//   - A Sink owns its resource. Close flushes and releases it and must run on
//     every exit path, including after a failed replicate.
//   - Alignment formats are looked up in a registry; JSONL goes through pkg/api (v1).
package writers

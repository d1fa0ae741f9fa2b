// Package core wires the pure components into the operations the web host
// and the CLI call.
//
// # Imports
//
// [Service.ImportStartlist] and [Service.ImportResults] share one pipeline:
//
//  1. Acquire a slot from the [ImportLimiter]
//  2. Normalize the byte buffer to UTF-8 (charset)
//  3. Parse the header and map columns to canonical fields (rows)
//  4. Resolve each row's event, then reconcile the athlete and registration
//     (start lists) or classify and store the result (results files)
//
// Every row produces a [RowOutcome]. Row-level failures never abort a
// best-effort import; in strict mode the first error row stops it and
// [ImportResult.Aborted] is set. Only an empty buffer, an oversized buffer or
// a store failure is returned as an error.
//
// # Schedules
//
// [Service.GenerateSchedule] stores every generation as a new draft version.
// [Service.PublishSchedule] is the only state transition.
//
// # Results
//
// [Service.SubmitResult] computes every derived flag from the competitor's
// history at submission time. Earlier results keep the flags they were
// stored with. [Service.RankEvent] assigns positions and points.
package core

// Package tasks orchestrates playlist migrations with real-time progress reporting.
//
// # Core Operation
//
// The [MigrationEngine] runs the full Apple Music → YouTube pipeline:
//
//  1. Extract the source playlist from the Apple Music page
//  2. Create the destination playlist (private)
//  3. Search the catalog for each track and append matches in source order
//
// The first two steps are fatal on failure: nothing is created on the
// destination side (or nothing usable remains referenced) and the run ends
// with a fatal outcome. Per-track failures in step 3 are isolated: each is
// recorded and the run continues with the remaining tracks.
//
// # Progress Reporting
//
// Operations emit [ProgressUpdate] values over a caller-supplied channel.
// Updates use select with default so a slow consumer never blocks the
// migration itself.
//
// # Search Caching
//
// The optional [SearchCache] interface short-circuits repeated queries.
// Cache writes are silent (errors ignored) so persistence problems never
// disrupt a migration.
package tasks

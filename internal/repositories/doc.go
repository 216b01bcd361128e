// package repositories provides the persistence layer for the migration
// pipeline: a query → video ID search cache that saves catalog quota on
// repeated migrations, and a history of migration runs.
//
// Backed by SQLite via shared.NewDatabase; schema lives in the embedded
// migrations under internal/shared/sql.
package repositories

// Package postgres provides PostgreSQL implementations of the store
// interfaces over the shared StudyFlow schema. All queries are
// parameterized and run through the store.DBTX abstraction so they work
// against a connection or a transaction alike.
package postgres

// Package store defines the persistence interfaces used by the services:
// study session and review access over the shared StudyFlow schema. The
// interfaces keep the business logic independent of the database technology;
// internal/platform/postgres provides the SQL implementations.
package store

// Package domain defines the core data structures of the Outgunned bot and
// the repository interfaces that define the contracts for data persistence:
// per-channel dice-set settings, recorded rolls, persisted logs, and stored
// Lua extensions.
//
// By defining interfaces for repositories, the domain package remains
// independent of the data storage technology; the db package provides the
// SQLite implementation.
package domain

// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Writes that must become durable together are staged through a UnitOfWork
// obtained from a Transactor and committed once.
package store

// Package models defines the core domain models for eventsplit.
//
// # Models
//
//   - Event: a bounded occasion (a weekend trip, a dinner night) that groups
//     members and expenses for one settlement
//   - Member: a named participant with a free-text payment destination
//   - Expense: one payment made by a payer and split among participants
//
// Members are identified by name strings. Expenses reference members by
// name only, so removing a member from a roster never rewrites expenses
// that already mention them.
//
// # Identifiers
//
// Event and expense identifiers are derived from their attributes (see
// EventID and ExpenseID) and stored, never recomputed. Both are safe to
// use as path components because every rune outside letters, numbers,
// '-' and '_' is replaced by Slug.
package models

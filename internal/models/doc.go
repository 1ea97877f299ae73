// Package models defines the core domain models for Swiss Coin.
//
// # Models
//
//   - Participant: a person who can pay for or owe on an expense
//   - Group: a named, unordered collection of participants
//   - Expense: a paid cost divided into Splits by a SplitMethod
//   - Settlement: a payment between two participants that reduces a balance
//   - Reminder: a request for payment with no balance effect
//   - Message: a free-text entry in a conversation
//
// # Design Principles
//
//  1. **Stable identity**: every entity except Split carries a persistent ID.
//     A missing ID is a data-integrity error, never papered over with a fresh one.
//  2. **Splits have no identity**: a Split is addressed by (expense, participant);
//     use SplitKey when keying them in maps or lists.
//  3. **Typed relationships**: relationships are typed slices of IDs, never
//     untyped collections.
//  4. **Soft delete**: Expenses, Settlements, Reminders and Messages carry a
//     DeletedAt timestamp instead of being erased, so history stays auditable.
//  5. **Exact amounts**: all amounts are decimals rounded to the ledger
//     currency's minor unit.
package models

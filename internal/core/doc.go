// Package core implements BizSight's business logic: bulk CSV import and
// reconciliation of a user's inventory and sales, plus the manual product,
// sale and account operations around it. It has no transport dependencies;
// the HTTP server, the CLI and the Lambda handler all drive [Service].
//
// # Import Pipeline
//
// Every upload goes through the same four stages:
//
//  1. Extract: [NewExtractor] spools the upload to a temp file (enforcing the
//     size cap), strips a BOM, repairs invalid UTF-8 and resolves the header
//     row against a [Schema]. [Extractor.Next] yields one RawRecord per row.
//  2. Validate: [ValidateInventory] and [ValidateSales] type each record and
//     apply the business rules.
//  3. Reconcile: accepted records are applied in one batch transaction with a
//     savepoint per row. Inventory rows upsert by (user, name); sales rows
//     record a single-item sale and decrement stock in the same savepoint.
//  4. Report: errors land in parse, validation and processing buckets, and
//     the import is classified as full-success, partial-success or
//     full-rejection.
//
// Any parse error rejects the whole file. A validation error rejects an
// inventory file but only its own row in a sales file.
//
// # Error Handling
//
// Row problems are reported, not returned. Service methods return errors
// only when an operation cannot run; sentinels such as [ErrNotOwner] are
// matched with errors.Is, and [MapError] turns any error into a coded
// [UserMessage].
//
// # Audit Logging
//
// Imports, product changes, sales, registrations and data resets are written
// to the audit log with a severity. [Service.StartAuditRetention] purges
// entries past the retention window.
package core

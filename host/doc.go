/*
Package host models the deterministic, receipt based execution environment
the contracts run in.

Every entry point executes to completion as a single atomic step. There is
no suspension inside a call: a cross-contract call issued from a handler is
only a promise that the host turns into a separate, later receipt. The
calling contract's state is committed before that receipt runs, and is
observable and mutable by other transactions in between. The only way to
react to the outcome of a promise is a continuation: one more receipt,
delivered to the calling contract itself, carrying the resolved result.

The Runtime here is the reference host used by tests and local tooling. It
owns one store and one ledger balance per account, delivers receipts in
FIFO order and gives each delivery all-or-nothing semantics through a
store cache-wrap. Real deployments substitute the chain's own runtime; the
contracts only see Context and the KVStore.
*/
package host

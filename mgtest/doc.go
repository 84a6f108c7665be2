/*
Package mgtest provides test fixtures for contract tests.

The central piece is Env, a host runtime with a registry and a
marketplace deployed next to a set of funded user accounts, roughly what
a simulation network looks like right after genesis. Helpers construct
balances and fractions from literals and issue JSON encoded contract
calls without the marshaling noise in every test.
*/
package mgtest

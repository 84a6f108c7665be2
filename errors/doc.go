/*
Package errors implements the error handling used across all mintgate
packages.

Every failure returned by a public operation wraps exactly one registered
root error. Root errors carry a unique numeric code so that the host can
report a stable failure category to its clients, while the wrapping adds a
human readable context description and a stack trace.

Extensions register their own root errors (see x/nft and x/market) using
Register. Codes below 1000 are reserved for this package and the framework
root package.
*/
package errors

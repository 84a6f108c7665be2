/*
Package orm provides the thin persistence layer contracts use on top of a
KVStore: buckets of encoded models, persistent sequences and id sets.

A ModelBucket owns a key namespace and the codec for one model type.
Secondary indexes are not automatic; contracts maintain IDSet instances
in lock-step with their primary buckets, inside the same delivered call,
so a committed call always leaves primary data and indexes consistent.

Every id set derives its namespace from a dynamic scope value (an owner
account, a gate id) by hashing, mirroring how the buckets get unique
prefixes without length-prefix escaping.
*/
package orm

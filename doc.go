/*
Package mintgate defines the common types shared by the two contracts that
make up the marketplace: the nft registry (x/nft) and the market (x/market).

Contracts never talk to each other through shared memory. Everything they
exchange travels as an asynchronous call dispatched by the host (see the
host package). This package holds only the value types both sides must
agree on: account identifiers, 128-bit balances, the Fraction used for fee
and royalty math, the Payout split of a sale and the approve/revoke
notification payloads.

The store interfaces defined here are the only way contract code reaches
its persisted state. Backing implementations live in the store package.
*/
package mintgate

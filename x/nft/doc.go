/*
Package nft implements the registry contract: the single source of truth
for collectibles, minted tokens, ownership and approvals.

A collectible is a mintable template with bounded supply and a royalty
fixed at creation. Tokens are claimed out of a collectible and then move
between owners, either directly or through an approved marketplace. The
registry notifies approved marketplaces about approvals, revocations and
burns, but never waits for them: its own state is committed before any
notification is dispatched, so a lost notification leaves the registry
correct and at worst leaves a marketplace listing stale.
*/
package nft

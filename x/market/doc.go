/*
Package market implements the marketplace contract.

The marketplace never owns tokens. It mirrors approvals pushed by nft
registries as listings, accepts purchase deposits and settles a sale by
calling back into the registry that approved the token. Listings are
keyed by (registry account, token id), so one marketplace can serve any
number of registries without id collisions.

A purchase is a two receipt protocol. buy_token removes the listing and
schedules nft_transfer_payout on the registry with the buyer's deposit
as the sale amount. The private make_payouts continuation then either
pays out the split the registry returned, or, when the registry call
failed, restores the listing and refunds the buyer.
*/
package market

// Package assetledger implements the fungible-asset ledger inside the
// finance context.
//
// The module owns asset balances and spend allowances: minting for initial
// distribution, direct transfers, and the approve/transfer-from pull used by
// the governance engine's share purchase. The engine depends on it only
// through its own ports, never on this package directly.
package assetledger

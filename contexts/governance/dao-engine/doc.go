// Package daoengine implements the share-weighted governance engine inside
// the governance context.
//
// The module owns membership registration, share issuance (market-rate
// purchase against an external asset ledger plus administrative grants),
// proposal records, weighted vote tallying, and the approval verdict. It
// keeps business rules in application/domain layers and isolates
// infrastructure concerns behind ports and adapters.
package daoengine

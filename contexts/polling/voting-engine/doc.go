// Package votingengine implements the vote ledger inside the polling context.
//
// The module owns vote admission (at most one vote per voter per poll,
// serialized on the poll row under concurrent submission), ledger-backed
// result aggregation, voter history reads, and audit event production
// through an outbox-backed worker. Business rules stay in application/domain
// layers; infrastructure concerns sit behind ports and adapters.
package votingengine

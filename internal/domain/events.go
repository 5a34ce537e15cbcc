package domain

import "math/big"

// Ledger event kinds.
const (
	EventDeposit  = "deposit"
	EventAccrue   = "accrue"
	EventRedeem   = "redeem"
	EventClaim    = "claim"
	EventReferral = "referral"
)

// LedgerEvent records one balance-affecting operation.
// Corresponds to ledger_events table in PostgreSQL.
type LedgerEvent struct {
	ID        int64    // assigned by the store
	Address   string   // account the event applies to
	Kind      string   // deposit | accrue | redeem | claim | referral
	Amount    *big.Int // credited or released amount, token base units
	Counter   string   // counterparty address for referral credits, else empty
	Timestamp int64    // unix seconds
}

// Clone returns a deep copy of the event.
func (e *LedgerEvent) Clone() *LedgerEvent {
	if e == nil {
		return nil
	}
	c := *e
	if e.Amount != nil {
		c.Amount = new(big.Int).Set(e.Amount)
	}
	return &c
}

// AuditRecord is one privileged configuration change.
// Corresponds to audit_log table in PostgreSQL.
type AuditRecord struct {
	ID        int64  // assigned by the store
	Operator  string // operator address
	Action    string // setter name, e.g. "SetTierTable"
	Detail    string // human-readable old → new description
	Version   int    // configuration version after the change
	Timestamp int64  // unix seconds
}

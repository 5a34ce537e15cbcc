package domain

import "errors"

// Validation errors. Rejected before any state mutation.
var (
	// ErrBelowMinimumStake is returned when a deposit is under the lowest tier minimum.
	ErrBelowMinimumStake = errors.New("amount below minimum stake")

	// ErrUnknownTier is returned for a tier level absent from the active table.
	ErrUnknownTier = errors.New("unknown stake tier")

	// ErrInvalidTimeLock is returned for a time lock that is not 0, 100 or 300 days.
	ErrInvalidTimeLock = errors.New("invalid time lock period")

	// ErrInvalidAmount is returned for nil, zero or negative amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidConfig is returned when a configuration table fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Resource errors. Rejected before any state mutation.
var (
	// ErrInsufficientPairedAsset is returned when the caller did not supply
	// the paired-token amount an LP-locked deposit requires.
	ErrInsufficientPairedAsset = errors.New("insufficient paired asset for LP lock")

	// ErrInsufficientBalance is returned when a redeem exceeds the staked amount.
	ErrInsufficientBalance = errors.New("insufficient staked balance")

	// ErrLockedPosition is returned when redeeming an LP position before its unlock time.
	ErrLockedPosition = errors.New("position is locked")
)

// Referral graph errors.
var (
	// ErrUplineAlreadySet is returned when a child already has a parent edge.
	ErrUplineAlreadySet = errors.New("upline already set")

	// ErrCycleDetected is returned when the proposed edge would close a cycle.
	ErrCycleDetected = errors.New("referral cycle detected")

	// ErrSelfUpline is returned when child and parent are the same address.
	ErrSelfUpline = errors.New("cannot set self as upline")
)

// ErrUnauthorizedOperator is returned when a caller lacks the operator capability.
var ErrUnauthorizedOperator = errors.New("unauthorized operator")

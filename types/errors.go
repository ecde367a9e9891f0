package types

import (
	"fmt"
	"time"
)

// ValidationErr is returned when a transfer request fails local validation.
// No network call has been made.
type ValidationErr struct {
	Reason string
}

func NewValidationErr(format string, args ...interface{}) error {
	return &ValidationErr{Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationErr) Error() string {
	return fmt.Sprintf("invalid transfer request: %s", e.Reason)
}

// NotReadyErr indicates the validators have not finished signing a transfer
// yet. The caller should retry later.
type NotReadyErr struct {
	TransactionId string
}

func NewNotReadyErr(transactionId string) error {
	return &NotReadyErr{TransactionId: transactionId}
}

func (e *NotReadyErr) Error() string {
	return fmt.Sprintf("transaction %s has not been processed by the validators yet", e.TransactionId)
}

// ExpiredSignaturesErr indicates the signature set for a transfer has passed
// its expiration. When the signatures expired recently the bridge contract
// still rejects a re-sign request; EstimatedWait tells the caller how long
// until Resignable becomes true.
type ExpiredSignaturesErr struct {
	TransactionId string
	Resignable    bool
	EstimatedWait time.Duration
}

func NewExpiredSignaturesErr(transactionId string, resignable bool, wait time.Duration) error {
	return &ExpiredSignaturesErr{
		TransactionId: transactionId,
		Resignable:    resignable,
		EstimatedWait: wait,
	}
}

func (e *ExpiredSignaturesErr) Error() string {
	if e.Resignable {
		return fmt.Sprintf("signatures for transaction %s have expired, request new signatures", e.TransactionId)
	}

	return fmt.Sprintf("signatures for transaction %s have expired, new signatures available in about %s",
		e.TransactionId, e.EstimatedWait)
}

// ExpiredAuthorizationErr is returned when the destination chain itself
// rejects an authorization as expired. The orchestrator pre-checks
// expiration, so seeing this error means the clock drifted or the
// authorization expired in flight.
type ExpiredAuthorizationErr struct {
	TransactionId string
}

func NewExpiredAuthorizationErr(transactionId string) error {
	return &ExpiredAuthorizationErr{TransactionId: transactionId}
}

func (e *ExpiredAuthorizationErr) Error() string {
	return fmt.Sprintf("chain rejected authorization for transaction %s as expired", e.TransactionId)
}

// InsufficientAllowanceErr is returned by chains with an approve/transferFrom
// token model when the bridge's spender allowance is below the requested
// amount. The caller must run the approval flow before retrying.
type InsufficientAllowanceErr struct {
	Chain   string
	Token   string
	Current string
}

func NewInsufficientAllowanceErr(chain, token, current string) error {
	return &InsufficientAllowanceErr{Chain: chain, Token: token, Current: current}
}

func (e *InsufficientAllowanceErr) Error() string {
	return fmt.Sprintf("bridge allowance for token %s on chain %s is too low (current = %s), approve the token transfer first",
		e.Token, e.Chain, e.Current)
}

// ChainMismatchErr is returned when a transaction id's format does not match
// the chain it is claimed to originate from.
type ChainMismatchErr struct {
	Chain         string
	TransactionId string
}

func NewChainMismatchErr(chain, transactionId string) error {
	return &ChainMismatchErr{Chain: chain, TransactionId: transactionId}
}

func (e *ChainMismatchErr) Error() string {
	return fmt.Sprintf("transaction id %s does not look like a %s transaction", e.TransactionId, e.Chain)
}

// SubmissionErr wraps a wallet or network layer failure while submitting a
// transaction. Retrying the same call is safe.
type SubmissionErr struct {
	Chain  string
	Reason string
}

func NewSubmissionErr(chain, format string, args ...interface{}) error {
	return &SubmissionErr{Chain: chain, Reason: fmt.Sprintf(format, args...)}
}

func (e *SubmissionErr) Error() string {
	return fmt.Sprintf("failed to submit transaction on chain %s: %s", e.Chain, e.Reason)
}

// RejectedErr indicates the signer or the chain explicitly declined the
// transaction.
type RejectedErr struct {
	Chain  string
	Reason string
}

func NewRejectedErr(chain, reason string) error {
	return &RejectedErr{Chain: chain, Reason: reason}
}

func (e *RejectedErr) Error() string {
	return fmt.Sprintf("transaction rejected on chain %s: %s", e.Chain, e.Reason)
}

// TimeoutErr is returned when a wallet or chain call does not answer within
// the client-side timeout. The underlying call may still land on chain, so
// the outcome is unknown rather than failed. Reconcile with CheckStatus.
type TimeoutErr struct {
	Chain   string
	Op      string
	Timeout time.Duration
}

func NewTimeoutErr(chain, op string, timeout time.Duration) error {
	return &TimeoutErr{Chain: chain, Op: op, Timeout: timeout}
}

func (e *TimeoutErr) Error() string {
	return fmt.Sprintf("%s on chain %s did not answer within %s, outcome unknown", e.Op, e.Chain, e.Timeout)
}

// BusyErr is returned when an operation is attempted on a transfer that
// already has a call in flight.
type BusyErr struct {
	TransactionId string
}

func NewBusyErr(transactionId string) error {
	return &BusyErr{TransactionId: transactionId}
}

func (e *BusyErr) Error() string {
	return fmt.Sprintf("another operation is in flight for transfer %s", e.TransactionId)
}

package host

import (
	"github.com/iov-one/mintgate"
)

// Contract is implemented by every deployed contract. The host routes a
// receipt to the contract by method name, with the arguments exactly as
// the caller serialized them.
type Contract interface {
	Handle(ctx *Context, db mintgate.KVStore, method string, args []byte) ([]byte, error)
}

// PromiseResult is the resolved outcome of an earlier cross-contract
// call, visible only inside the continuation receipt.
type PromiseResult struct {
	// OK is true when the upstream call succeeded.
	OK bool
	// Data is the value the upstream call returned, set only on success.
	Data []byte
	// Err describes the upstream failure, set only when OK is false.
	Err string
}

// Promise is a pending cross-contract call, scheduled when the current
// receipt commits. It is fire-and-forget: nothing about it can be awaited
// inside the current call.
type Promise struct {
	receiver mintgate.AccountID
	method   string
	args     []byte
	then     *continuation
}

type continuation struct {
	method string
	args   []byte
}

// Then chains a continuation: once this promise resolves, the host
// delivers one receipt with the given method and arguments back to the
// contract that created the promise. The continuation receipt carries the
// promise result and has the contract itself as the caller, which is what
// makes private callbacks enforceable.
func (p *Promise) Then(method string, args []byte) {
	p.then = &continuation{method: method, args: args}
}

type transfer struct {
	to     mintgate.AccountID
	amount mintgate.Balance
}

// Context carries the call environment of one delivered receipt and
// collects the side effects the handler wants scheduled on commit.
type Context struct {
	contractID mintgate.AccountID
	caller     mintgate.AccountID
	deposit    mintgate.Balance
	blockTime  int64
	result     *PromiseResult

	promises  []*Promise
	transfers []transfer
}

// ContractID returns the account the executing contract is deployed at.
func (ctx *Context) ContractID() mintgate.AccountID {
	return ctx.contractID
}

// Caller returns the account that issued this receipt. For a continuation
// receipt this is the contract itself.
func (ctx *Context) Caller() mintgate.AccountID {
	return ctx.caller
}

// Deposit returns the amount of native currency attached to this call.
// It was already credited to the contract's account when the handler
// runs, and is refunded by the host if the handler fails.
func (ctx *Context) Deposit() mintgate.Balance {
	return ctx.deposit
}

// BlockTime returns the host clock in nanoseconds. It never decreases
// between receipts.
func (ctx *Context) BlockTime() int64 {
	return ctx.blockTime
}

// PromiseResult returns the resolved upstream result when this receipt is
// a continuation, and false for ordinary receipts.
func (ctx *Context) PromiseResult() (*PromiseResult, bool) {
	return ctx.result, ctx.result != nil
}

// Call schedules an asynchronous call to another contract. The promise is
// dispatched only if the current receipt commits; a failing handler drops
// all scheduled promises together with the state changes.
func (ctx *Context) Call(receiver mintgate.AccountID, method string, args []byte) *Promise {
	p := &Promise{receiver: receiver, method: method, args: args}
	ctx.promises = append(ctx.promises, p)
	return p
}

// Transfer queues a payment of the given amount from the contract's own
// account. Like promises, transfers are applied only when the receipt
// commits, and the commit fails if the contract's balance cannot cover
// the sum of all queued transfers.
func (ctx *Context) Transfer(to mintgate.AccountID, amount mintgate.Balance) {
	ctx.transfers = append(ctx.transfers, transfer{to: to, amount: amount})
}

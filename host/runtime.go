package host

import (
	"time"

	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
	"github.com/iov-one/mintgate/store"
	"github.com/tendermint/tendermint/libs/log"
)

// receiptStep is how far the host clock advances between two receipts.
// The spacing keeps created_at/modified_at strictly monotonic across
// deliveries without pretending to be wall time.
const receiptStep = int64(time.Second)

// receipt is one scheduled delivery: an external transaction, a promise
// or a continuation.
type receipt struct {
	caller   mintgate.AccountID
	receiver mintgate.AccountID
	method   string
	args     []byte
	deposit  mintgate.Balance
	// result is set on continuation receipts only.
	result *PromiseResult
	// then is the continuation to schedule once this receipt resolves.
	then *continuation
}

// Outcome records how one delivered receipt ended. Asynchronous failures
// are observable nowhere else, so the runtime keeps the full trace of the
// last external call.
type Outcome struct {
	Caller   mintgate.AccountID
	Receiver mintgate.AccountID
	Method   string
	Err      error
}

type contractAccount struct {
	impl Contract
	db   mintgate.CacheableKVStore
}

// Runtime is the reference in-memory host. It is not safe for concurrent
// use; like the chain it stands in for, it delivers one receipt at a
// time.
type Runtime struct {
	logger    log.Logger
	now       int64
	contracts map[mintgate.AccountID]*contractAccount
	ledger    map[mintgate.AccountID]mintgate.Balance
	queue     []*receipt
	outcomes  []Outcome
}

// NewRuntime returns an empty host. Pass log.NewNopLogger() to silence
// the delivery trace.
func NewRuntime(logger log.Logger) *Runtime {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Runtime{
		logger:    logger,
		now:       receiptStep,
		contracts: make(map[mintgate.AccountID]*contractAccount),
		ledger:    make(map[mintgate.AccountID]mintgate.Balance),
	}
}

// RegisterContract deploys a contract at the given account and returns
// the store backing it, so tests can seed or inspect state directly.
func (rt *Runtime) RegisterContract(id mintgate.AccountID, impl Contract) mintgate.CacheableKVStore {
	db := store.MemStore()
	rt.contracts[id] = &contractAccount{impl: impl, db: db}
	return db
}

// Fund credits the given account's native currency balance.
func (rt *Runtime) Fund(id mintgate.AccountID, amount mintgate.Balance) {
	sum, err := rt.ledger[id].Add(amount)
	if err != nil {
		panic(err)
	}
	rt.ledger[id] = sum
}

// Balance returns the native currency balance of the given account.
func (rt *Runtime) Balance(id mintgate.AccountID) mintgate.Balance {
	return rt.ledger[id]
}

// BlockTime returns the current host clock in nanoseconds.
func (rt *Runtime) BlockTime() int64 {
	return rt.now
}

// Outcomes returns the delivery trace of the most recent external Call,
// in delivery order. The initial receipt is the first entry.
func (rt *Runtime) Outcomes() []Outcome {
	return rt.outcomes
}

// Failures returns the errors of all failed receipts of the most recent
// external Call.
func (rt *Runtime) Failures() []error {
	var errs []error
	for _, o := range rt.outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errs
}

// Call delivers an external transaction to the receiver contract and then
// drains every receipt it transitively scheduled. The returned data and
// error belong to the initial receipt only; use Outcomes to observe how
// the asynchronous tail ended.
func (rt *Runtime) Call(caller, receiver mintgate.AccountID, method string, args []byte, deposit mintgate.Balance) ([]byte, error) {
	rt.outcomes = nil
	rt.queue = append(rt.queue, &receipt{
		caller:   caller,
		receiver: receiver,
		method:   method,
		args:     args,
		deposit:  deposit,
	})

	var firstData []byte
	var firstErr error
	for i := 0; len(rt.queue) > 0; i++ {
		r := rt.queue[0]
		rt.queue = rt.queue[1:]
		data, err := rt.deliver(r)
		if i == 0 {
			firstData, firstErr = data, err
		}
	}
	return firstData, firstErr
}

// View executes a read-only method. Nothing is committed and scheduling
// side effects from a view is an error.
func (rt *Runtime) View(caller, receiver mintgate.AccountID, method string, args []byte) ([]byte, error) {
	entry, ok := rt.contracts[receiver]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no contract at %s", receiver)
	}
	ctx := &Context{
		contractID: receiver,
		caller:     caller,
		blockTime:  rt.now,
	}
	cache := entry.db.CacheWrap()
	defer cache.Discard()

	data, err := entry.impl.Handle(ctx, cache, method, args)
	if err != nil {
		return nil, err
	}
	if len(ctx.promises) != 0 || len(ctx.transfers) != 0 {
		return nil, errors.Wrapf(errors.ErrState, "view %s schedules side effects", method)
	}
	return data, nil
}

// deliver executes a single receipt with all-or-nothing semantics and
// schedules its follow-up receipts.
func (rt *Runtime) deliver(r *receipt) ([]byte, error) {
	rt.now += receiptStep

	data, err := rt.execute(r)

	rt.outcomes = append(rt.outcomes, Outcome{
		Caller:   r.caller,
		Receiver: r.receiver,
		Method:   r.method,
		Err:      err,
	})
	if err == nil {
		rt.logger.Info("delivered", "receiver", r.receiver, "method", r.method)
	} else {
		rt.logger.Error("delivery failed",
			"receiver", r.receiver, "method", r.method, "err", err)
	}

	// A continuation fires exactly once per promise, resolved either
	// way. The caller of a continuation receipt is the contract itself;
	// that is the whole access control for private callbacks.
	if r.then != nil {
		result := &PromiseResult{OK: err == nil, Data: data}
		if err != nil {
			result.Err = err.Error()
		}
		rt.queue = append(rt.queue, &receipt{
			caller:   r.caller,
			receiver: r.caller,
			method:   r.then.method,
			args:     r.then.args,
			result:   result,
		})
	}
	return data, err
}

func (rt *Runtime) execute(r *receipt) ([]byte, error) {
	entry, ok := rt.contracts[r.receiver]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no contract at %s", r.receiver)
	}

	// The attached deposit is credited before the handler runs and
	// clawed back if the receipt fails.
	if !r.deposit.IsZero() {
		if err := rt.move(r.caller, r.receiver, r.deposit); err != nil {
			return nil, errors.Wrap(err, "deposit")
		}
	}

	ctx := &Context{
		contractID: r.receiver,
		caller:     r.caller,
		deposit:    r.deposit,
		blockTime:  rt.now,
		result:     r.result,
	}
	cache := entry.db.CacheWrap()

	data, err := entry.impl.Handle(ctx, cache, r.method, r.args)
	if err == nil {
		err = rt.applyTransfers(r.receiver, ctx.transfers)
	}
	if err != nil {
		cache.Discard()
		if !r.deposit.IsZero() {
			if rerr := rt.move(r.receiver, r.caller, r.deposit); rerr != nil {
				return nil, errors.Wrap(rerr, "deposit refund")
			}
		}
		return nil, err
	}

	if werr := cache.Write(); werr != nil {
		return nil, errors.Wrap(werr, "commit")
	}
	for _, p := range ctx.promises {
		rt.queue = append(rt.queue, &receipt{
			caller:   r.receiver,
			receiver: p.receiver,
			method:   p.method,
			args:     p.args,
			then:     p.then,
		})
	}
	return data, nil
}

// applyTransfers moves every queued payment out of the executing
// contract's account, or fails the whole receipt if the balance does not
// cover them.
func (rt *Runtime) applyTransfers(from mintgate.AccountID, transfers []transfer) error {
	var total mintgate.Balance
	var err error
	for _, t := range transfers {
		if total, err = total.Add(t.amount); err != nil {
			return errors.Wrap(err, "transfer total")
		}
	}
	if rt.ledger[from].Compare(total) < 0 {
		return errors.Wrapf(errors.ErrAmount,
			"account %s holds %s, cannot pay %s", from, rt.ledger[from], total)
	}
	for _, t := range transfers {
		if err := rt.move(from, t.to, t.amount); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) move(from, to mintgate.AccountID, amount mintgate.Balance) error {
	left, err := rt.ledger[from].Sub(amount)
	if err != nil {
		return errors.Wrapf(errors.ErrAmount,
			"account %s holds %s, cannot move %s", from, rt.ledger[from], amount)
	}
	gained, err := rt.ledger[to].Add(amount)
	if err != nil {
		return errors.Wrap(err, "receiver balance")
	}
	rt.ledger[from] = left
	rt.ledger[to] = gained
	return nil
}

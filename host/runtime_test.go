package host

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
)

// scratch is a minimal contract for exercising the host: it stores
// values, fails on demand, schedules calls and moves money around.
type scratch struct {
	// peer is called by the "relay" method.
	peer mintgate.AccountID
}

var errBoom = errors.Register(9000, "boom")

func (s *scratch) Handle(ctx *Context, db mintgate.KVStore, method string, args []byte) ([]byte, error) {
	switch method {
	case "set":
		var kv [2]string
		if err := json.Unmarshal(args, &kv); err != nil {
			return nil, err
		}
		return nil, db.Set([]byte(kv[0]), []byte(kv[1]))

	case "get":
		return db.Get(args)

	case "set_then_fail":
		if err := db.Set([]byte("poison"), []byte("x")); err != nil {
			return nil, err
		}
		return nil, errors.Wrap(errBoom, "after write")

	case "echo":
		return args, nil

	case "fail":
		return nil, errors.Wrap(errBoom, "on request")

	case "relay":
		// Write, schedule a downstream call with a continuation and
		// return. The downstream method name rides in args.
		if err := db.Set([]byte("relayed"), args); err != nil {
			return nil, err
		}
		p := ctx.Call(s.peer, string(args), nil)
		p.Then("record_result", nil)
		return nil, nil

	case "relay_then_fail":
		ctx.Call(s.peer, "set", []byte(`["leak","x"]`))
		return nil, errors.Wrap(errBoom, "promise must not fire")

	case "record_result":
		if ctx.Caller() != ctx.ContractID() {
			return nil, errors.Wrap(errors.ErrUnauthorized, "private method")
		}
		res, ok := ctx.PromiseResult()
		if !ok {
			return nil, errors.Wrap(errors.ErrState, "not a continuation")
		}
		if res.OK {
			return nil, db.Set([]byte("result"), res.Data)
		}
		return nil, db.Set([]byte("result"), []byte("failed: "+res.Err))

	case "take_deposit":
		return nil, nil

	case "reject_deposit":
		return nil, errors.Wrap(errBoom, "keep your money")

	case "pay":
		var out struct {
			To     mintgate.AccountID `json:"to"`
			Amount mintgate.Balance   `json:"amount"`
		}
		if err := json.Unmarshal(args, &out); err != nil {
			return nil, err
		}
		ctx.Transfer(out.To, out.Amount)
		return nil, nil

	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown method %q", method)
	}
}

func TestCallCommitsOrDiscardsAtomically(t *testing.T) {
	rt := NewRuntime(nil)
	db := rt.RegisterContract("box", &scratch{})

	if _, err := rt.Call("alice", "box", "set", []byte(`["k","v"]`), mintgate.Balance{}); err != nil {
		t.Fatalf("set: %+v", err)
	}
	if v, _ := db.Get([]byte("k")); !bytes.Equal(v, []byte("v")) {
		t.Fatalf("committed value: got %q", v)
	}

	if _, err := rt.Call("alice", "box", "set_then_fail", nil, mintgate.Balance{}); !errBoom.Is(err) {
		t.Fatalf("want boom, got %+v", err)
	}
	if ok, _ := db.Has([]byte("poison")); ok {
		t.Fatal("failed call must not leave state behind")
	}
}

func TestPromisesFireOnlyOnCommit(t *testing.T) {
	rt := NewRuntime(nil)
	boxDB := rt.RegisterContract("box", &scratch{})
	rt.RegisterContract("relay", &scratch{peer: "box"})

	if _, err := rt.Call("alice", "relay", "relay_then_fail", nil, mintgate.Balance{}); !errBoom.Is(err) {
		t.Fatalf("want boom, got %+v", err)
	}
	if ok, _ := boxDB.Has([]byte("leak")); ok {
		t.Fatal("a failed receipt must drop its scheduled promises")
	}
	if got := len(rt.Outcomes()); got != 1 {
		t.Fatalf("want 1 delivered receipt, got %d", got)
	}
}

func TestContinuationDelivery(t *testing.T) {
	rt := NewRuntime(nil)
	rt.RegisterContract("box", &scratch{})
	relayDB := rt.RegisterContract("relay", &scratch{peer: "box"})

	// Downstream succeeds: the continuation records the returned data.
	if _, err := rt.Call("alice", "relay", "relay", []byte("echo"), mintgate.Balance{}); err != nil {
		t.Fatalf("relay: %+v", err)
	}
	if v, _ := relayDB.Get([]byte("result")); !bytes.Equal(v, []byte("echo")) {
		t.Fatalf("continuation data: got %q", v)
	}
	// Initial receipt, promise, continuation.
	if got := len(rt.Outcomes()); got != 3 {
		t.Fatalf("want 3 delivered receipts, got %d", got)
	}

	// Downstream fails: the caller's state survives, the continuation
	// still fires and observes the failure.
	if _, err := rt.Call("alice", "relay", "relay", []byte("fail"), mintgate.Balance{}); err != nil {
		t.Fatalf("relay: %+v", err)
	}
	if ok, _ := relayDB.Has([]byte("relayed")); !ok {
		t.Fatal("upstream state must survive a downstream failure")
	}
	v, _ := relayDB.Get([]byte("result"))
	if !bytes.HasPrefix(v, []byte("failed:")) {
		t.Fatalf("continuation must observe the failure, got %q", v)
	}
	if got := len(rt.Failures()); got != 1 {
		t.Fatalf("want 1 failed receipt, got %d", got)
	}
}

func TestPrivateContinuationGuard(t *testing.T) {
	rt := NewRuntime(nil)
	rt.RegisterContract("relay", &scratch{})

	// Calling the continuation method directly is an external receipt:
	// the caller is alice, not the contract.
	_, err := rt.Call("alice", "relay", "record_result", nil, mintgate.Balance{})
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized, got %+v", err)
	}
}

func TestDepositCreditAndRefund(t *testing.T) {
	rt := NewRuntime(nil)
	rt.RegisterContract("box", &scratch{})
	rt.Fund("alice", mintgate.NewBalance(1000))

	if _, err := rt.Call("alice", "box", "take_deposit", nil, mintgate.NewBalance(300)); err != nil {
		t.Fatalf("deposit: %+v", err)
	}
	if got := rt.Balance("alice"); got.Compare(mintgate.NewBalance(700)) != 0 {
		t.Fatalf("alice after deposit: %s", got)
	}
	if got := rt.Balance("box"); got.Compare(mintgate.NewBalance(300)) != 0 {
		t.Fatalf("box after deposit: %s", got)
	}

	// A failing receipt returns the deposit.
	if _, err := rt.Call("alice", "box", "reject_deposit", nil, mintgate.NewBalance(700)); !errBoom.Is(err) {
		t.Fatalf("want boom, got %+v", err)
	}
	if got := rt.Balance("alice"); got.Compare(mintgate.NewBalance(700)) != 0 {
		t.Fatalf("alice after refund: %s", got)
	}

	// A deposit the caller cannot cover fails outright.
	if _, err := rt.Call("alice", "box", "take_deposit", nil, mintgate.NewBalance(1_000_000)); err == nil {
		t.Fatal("uncovered deposit must fail")
	}
}

func TestTransfersRequireCoverage(t *testing.T) {
	rt := NewRuntime(nil)
	db := rt.RegisterContract("box", &scratch{})
	rt.Fund("box", mintgate.NewBalance(100))

	pay := func(to string, amount uint64) error {
		args, err := json.Marshal(map[string]interface{}{"to": to, "amount": mintgate.NewBalance(amount)})
		if err != nil {
			t.Fatal(err)
		}
		_, err = rt.Call("alice", "box", "pay", args, mintgate.Balance{})
		return err
	}

	if err := pay("bob", 60); err != nil {
		t.Fatalf("pay: %+v", err)
	}
	if got := rt.Balance("bob"); got.Compare(mintgate.NewBalance(60)) != 0 {
		t.Fatalf("bob: %s", got)
	}

	// 40 left, cannot pay 50. The receipt fails as a whole.
	if err := pay("bob", 50); !errors.ErrAmount.Is(err) {
		t.Fatalf("want amount error, got %+v", err)
	}
	if got := rt.Balance("bob"); got.Compare(mintgate.NewBalance(60)) != 0 {
		t.Fatalf("bob after failed pay: %s", got)
	}
	_ = db
}

func TestViewRejectsSideEffects(t *testing.T) {
	rt := NewRuntime(nil)
	db := rt.RegisterContract("box", &scratch{})
	rt.RegisterContract("relay", &scratch{peer: "box"})

	if err := db.Set([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	data, err := rt.View("alice", "box", "get", []byte("k"))
	if err != nil {
		t.Fatalf("view: %+v", err)
	}
	if !bytes.Equal(data, []byte("v")) {
		t.Fatalf("view data: got %q", data)
	}

	// A view must not write.
	if _, err := rt.View("alice", "box", "set", []byte(`["w","x"]`)); err != nil {
		t.Fatalf("view: %+v", err)
	}
	if ok, _ := db.Has([]byte("w")); ok {
		t.Fatal("view writes must be discarded")
	}

	// A view must not schedule calls.
	if _, err := rt.View("alice", "relay", "relay", []byte("echo")); !errors.ErrState.Is(err) {
		t.Fatalf("want state error, got %+v", err)
	}
}

func TestBlockTimeAdvancesPerReceipt(t *testing.T) {
	rt := NewRuntime(nil)
	rt.RegisterContract("box", &scratch{})
	rt.RegisterContract("relay", &scratch{peer: "box"})

	before := rt.BlockTime()
	if _, err := rt.Call("alice", "relay", "relay", []byte("echo"), mintgate.Balance{}); err != nil {
		t.Fatalf("relay: %+v", err)
	}
	// Three receipts were delivered, each one step apart.
	if got := rt.BlockTime() - before; got != 3*receiptStep {
		t.Fatalf("want 3 steps, got %d", got)
	}
}

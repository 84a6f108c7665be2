package mgtest

import (
	"encoding/json"
	"testing"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/host"
	"github.com/iov-one/mintgate/x/market"
	"github.com/iov-one/mintgate/x/nft"
)

// Well known accounts of the test network.
const (
	Registry   mintgate.AccountID = "nft.mintgate"
	Market     mintgate.AccountID = "market.mintgate"
	Admin      mintgate.AccountID = "admin.mintgate"
	FeeAccount mintgate.AccountID = "fee.mintgate"

	Alice mintgate.AccountID = "alice"
	Bob   mintgate.AccountID = "bob"
	Carol mintgate.AccountID = "carol"
)

// InitialFunds is what every user account starts with.
var InitialFunds = mintgate.NewBalance(1_000_000)

// Env is a miniature network: one registry, one marketplace and a few
// funded user accounts.
type Env struct {
	t  testing.TB
	rt *host.Runtime

	Registry *nft.Registry
	Market   *market.Marketplace

	// RegistryDB and MarketDB back the deployed contracts; tests can
	// inspect committed state through them.
	RegistryDB mintgate.CacheableKVStore
	MarketDB   mintgate.CacheableKVStore
}

// DefaultConfig is the registry configuration used unless a test installs
// its own: 25/1000 contract fee, royalties between 5% and 30%.
func DefaultConfig() nft.Config {
	return nft.Config{
		Admin:      Admin,
		FeeAccount: FeeAccount,
		Fee:        Frac(25, 1000),
		MinRoyalty: Frac(5, 100),
		MaxRoyalty: Frac(30, 100),
		Metadata: nft.ContractMetadata{
			Spec:   "nft-1.0.0",
			Name:   "mintgate test registry",
			Symbol: "MGT",
		},
	}
}

// NewEnv deploys both contracts, initializes the registry with
// DefaultConfig and funds Alice, Bob and Carol.
func NewEnv(t testing.TB) *Env {
	t.Helper()
	return NewEnvWithConfig(t, DefaultConfig())
}

// NewEnvWithConfig is NewEnv with a custom registry configuration.
func NewEnvWithConfig(t testing.TB, conf nft.Config) *Env {
	t.Helper()
	env := &Env{
		t:        t,
		rt:       host.NewRuntime(log.NewNopLogger()),
		Registry: nft.NewRegistry(),
		Market:   market.NewMarketplace(),
	}
	env.RegistryDB = env.rt.RegisterContract(Registry, env.Registry)
	env.MarketDB = env.rt.RegisterContract(Market, env.Market)

	if err := env.Registry.Init(env.RegistryDB, conf); err != nil {
		t.Fatalf("initialize registry: %+v", err)
	}
	for _, a := range []mintgate.AccountID{Alice, Bob, Carol} {
		env.rt.Fund(a, InitialFunds)
	}
	return env
}

// Runtime exposes the underlying host for tests that need direct access.
func (env *Env) Runtime() *host.Runtime {
	return env.rt
}

// Call delivers a transaction without a deposit. The args value is JSON
// encoded; pass nil for methods without arguments.
func (env *Env) Call(caller, receiver mintgate.AccountID, method string, args interface{}) ([]byte, error) {
	env.t.Helper()
	return env.rt.Call(caller, receiver, method, marshal(env.t, args), mintgate.Balance{})
}

// CallWithDeposit delivers a transaction carrying a native currency
// deposit.
func (env *Env) CallWithDeposit(caller, receiver mintgate.AccountID, method string, args interface{}, deposit mintgate.Balance) ([]byte, error) {
	env.t.Helper()
	return env.rt.Call(caller, receiver, method, marshal(env.t, args), deposit)
}

// MustCall is Call failing the test on error.
func (env *Env) MustCall(caller, receiver mintgate.AccountID, method string, args interface{}) []byte {
	env.t.Helper()
	data, err := env.Call(caller, receiver, method, args)
	if err != nil {
		env.t.Fatalf("%s call %s.%s: %+v", caller, receiver, method, err)
	}
	return data
}

// View executes a read-only method and decodes the JSON response into
// dest when dest is not nil.
func (env *Env) View(receiver mintgate.AccountID, method string, args interface{}, dest interface{}) {
	env.t.Helper()
	data, err := env.rt.View(Alice, receiver, method, marshal(env.t, args))
	if err != nil {
		env.t.Fatalf("view %s.%s: %+v", receiver, method, err)
	}
	if dest != nil {
		if err := json.Unmarshal(data, dest); err != nil {
			env.t.Fatalf("decode %s.%s response: %v", receiver, method, err)
		}
	}
}

// Balance returns the native currency balance of the given account.
func (env *Env) Balance(id mintgate.AccountID) mintgate.Balance {
	return env.rt.Balance(id)
}

// Failures returns the errors of all asynchronously failed receipts of
// the most recent call.
func (env *Env) Failures() []error {
	return env.rt.Failures()
}

func marshal(t testing.TB, args interface{}) []byte {
	t.Helper()
	if args == nil {
		return nil
	}
	if raw, ok := args.([]byte); ok {
		return raw
	}
	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("encode call arguments: %v", err)
	}
	return raw
}

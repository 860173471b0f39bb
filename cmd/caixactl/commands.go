package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"caixa/backend/internal/app"
	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
	"caixa/backend/internal/service"
)

var cliActor = domain.Actor{Username: "caixactl", Role: domain.RoleAdmin}

// withShift opens the backend, loads the saved shift and hands it to fn.
func withShift(ctx context.Context, fn func(ctx context.Context, b *app.Backend, state service.State) subcommands.ExitStatus) subcommands.ExitStatus {
	b, err := openBackend(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	ctx = service.WithActor(ctx, cliActor)
	state, _, err := b.Service.Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading shift: %v\n", err)
		return subcommands.ExitFailure
	}
	return fn(ctx, b, state)
}

func printProblems(state service.State) {
	for _, p := range state.Problems {
		fmt.Fprintf(stdout, "  - %s\n", p.Message)
	}
}

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the totals of the saved shift" }
func (*summaryCmd) Usage() string {
	return `caixactl summary

  Loads the saved shift and prints its balance and reconciliation status.
`
}
func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (*summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withShift(ctx, func(_ context.Context, _ *app.Backend, state service.State) subcommands.ExitStatus {
		t := state.Totals
		fmt.Fprintf(stdout, "Fundo de caixa:     %s\n", state.Snapshot.Entries.StartingFloat)
		fmt.Fprintf(stdout, "Entradas:           %s\n", t.GrossInbound)
		fmt.Fprintf(stdout, "Devoluções:         %s\n", t.IncludedDevolutions)
		fmt.Fprintf(stdout, "Retiradas:          %s\n", t.IncludedWithdrawals)
		fmt.Fprintf(stdout, "Correios:           %s\n", t.IncludedCourier)
		fmt.Fprintf(stdout, "Adiantamentos:      %s\n", t.IncludedAdvances)
		fmt.Fprintf(stdout, "Saldo final:        %s\n", t.FinalBalance)
		if state.CanSave {
			fmt.Fprintln(stdout, "Status: conferido")
		} else {
			fmt.Fprintln(stdout, "Status: com divergências")
			printProblems(state)
		}
		return subcommands.ExitSuccess
	})
}

type validateCmd struct{}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "exit non-zero when the saved shift does not reconcile" }
func (*validateCmd) Usage() string {
	return `caixactl validate

  Checks every reconciliation rule against the saved shift.
`
}
func (*validateCmd) SetFlags(*flag.FlagSet) {}

func (*validateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withShift(ctx, func(_ context.Context, _ *app.Backend, state service.State) subcommands.ExitStatus {
		if state.CanSave {
			fmt.Fprintln(stdout, "ok")
			return subcommands.ExitSuccess
		}
		fmt.Fprintf(stdout, "%d problem(s):\n", len(state.Problems))
		printProblems(state)
		return subcommands.ExitFailure
	})
}

type resetCmd struct {
	yes bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "discard the saved shift" }
func (*resetCmd) Usage() string {
	return `caixactl reset -yes

  Removes the saved shift. Cashback balances are kept.
`
}
func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm the reset.")
}

func (c *resetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(stderr, "refusing to reset without -yes")
		return subcommands.ExitUsageError
	}
	return withShift(ctx, func(ctx context.Context, b *app.Backend, _ service.State) subcommands.ExitStatus {
		state, err := b.Service.Clear(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Error clearing shift: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "shift cleared, starting float %s\n", state.Snapshot.Entries.StartingFloat)
		return subcommands.ExitSuccess
	})
}

type floatCmd struct {
	set string
}

func (*floatCmd) Name() string     { return "float" }
func (*floatCmd) Synopsis() string { return "show or change the default starting float" }
func (*floatCmd) Usage() string {
	return `caixactl float [-set <amount>]

  Prints the float new shifts start from. With -set, stores a new value.
  Amounts accept "150", "150.00" or "150,00".
`
}
func (c *floatCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.set, "set", "", "New default starting float.")
}

func (c *floatCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBackend(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer b.Close()
	ctx = service.WithActor(ctx, cliActor)

	if c.set == "" {
		fmt.Fprintln(stdout, b.Service.DefaultStartingFloat(ctx))
		return subcommands.ExitSuccess
	}

	amount, err := b.Service.SetDefaultStartingFloat(ctx, money.Parse(c.set))
	if err != nil {
		fmt.Fprintf(stderr, "Error setting starting float: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(stdout, amount)
	return subcommands.ExitSuccess
}

type cashbackBalanceCmd struct{}

func (*cashbackBalanceCmd) Name() string     { return "cashback-balance" }
func (*cashbackBalanceCmd) Synopsis() string { return "print the cashback available to a customer" }
func (*cashbackBalanceCmd) Usage() string {
	return `caixactl cashback-balance <cpf>
`
}
func (*cashbackBalanceCmd) SetFlags(*flag.FlagSet) {}

func (*cashbackBalanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "expected exactly one tax id")
		return subcommands.ExitUsageError
	}
	b, err := openBackend(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	balance, err := b.Service.CashbackBalance(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(stdout, balance)
	return subcommands.ExitSuccess
}

type cashbackGrantCmd struct {
	name   string
	amount string
}

func (*cashbackGrantCmd) Name() string     { return "cashback-grant" }
func (*cashbackGrantCmd) Synopsis() string { return "credit cashback to a customer" }
func (*cashbackGrantCmd) Usage() string {
	return `caixactl cashback-grant -amount <amount> [-name <name>] <cpf>
`
}
func (c *cashbackGrantCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Customer name, kept from the first grant when empty.")
	f.StringVar(&c.amount, "amount", "", "Amount to credit.")
}

func (c *cashbackGrantCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.amount == "" {
		fmt.Fprintln(stderr, "expected -amount and exactly one tax id")
		return subcommands.ExitUsageError
	}
	b, err := openBackend(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	ctx = service.WithActor(ctx, cliActor)
	customer, err := b.Service.GrantCashback(ctx, f.Arg(0), c.name, money.Parse(c.amount))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "%s %s: %s disponível\n", customer.TaxID, customer.Name, customer.Available())
	return subcommands.ExitSuccess
}

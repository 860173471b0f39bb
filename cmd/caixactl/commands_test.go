package main

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/google/subcommands"

	"caixa/backend/internal/app"
	"caixa/backend/internal/config"
	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
	"caixa/backend/internal/persistence"
	"caixa/backend/internal/shift"
)

// useMemoryBackend points every command at one in-memory backend.
func useMemoryBackend(t *testing.T) (*app.Backend, *bytes.Buffer) {
	t.Helper()

	b, err := app.Open(context.Background(), config.Config{DefaultStartingFloat: money.FromFloat(100)})
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	out := &bytes.Buffer{}

	prevOpen, prevOut, prevErr := openBackend, stdout, stderr
	openBackend = func(context.Context) (*app.Backend, error) { return b, nil }
	stdout, stderr = out, &bytes.Buffer{}
	t.Cleanup(func() {
		openBackend, stdout, stderr = prevOpen, prevOut, prevErr
	})
	return b, out
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd.Execute(context.Background(), fs)
}

func TestValidateFailsOnUnreconciledShift(t *testing.T) {
	b, out := useMemoryBackend(t)

	if status := run(t, &validateCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("expected empty shift to validate, got %v (%s)", status, out.String())
	}

	// The service refuses to save this shift, so write it through the gateway.
	snap := shift.NewSnapshot(money.FromFloat(100))
	snap.Entries, _ = shift.SetDeclaredTotal(snap.Entries, domain.ChannelBoleto, money.FromFloat(80))
	snap.Entries, _ = shift.AddSplit(snap.Entries, domain.ChannelBoleto, domain.Split{ClientName: "Ana", Amount: money.FromFloat(30)})
	if err := persistence.New(b.KV, persistence.Config{}, nil).Save(context.Background(), snap); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	out.Reset()
	if status := run(t, &validateCmd{}); status != subcommands.ExitFailure {
		t.Fatalf("expected validate to fail, got %v", status)
	}
	if !strings.Contains(out.String(), "1 problem(s)") {
		t.Fatalf("expected one problem reported, got %q", out.String())
	}
}

func TestSummaryLabelsEveryExit(t *testing.T) {
	_, out := useMemoryBackend(t)

	if status := run(t, &summaryCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("summary failed: %v", status)
	}
	for _, label := range []string{"Devoluções:", "Retiradas:", "Correios:", "Adiantamentos:", "Saldo final:"} {
		if !strings.Contains(out.String(), label) {
			t.Fatalf("expected %q in summary, got %q", label, out.String())
		}
	}
	if strings.Contains(out.String(), "Motoboy") {
		t.Fatalf("courier exits must be labelled Correios, got %q", out.String())
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	_, out := useMemoryBackend(t)

	if status := run(t, &resetCmd{}); status != subcommands.ExitUsageError {
		t.Fatalf("expected usage error without -yes, got %v", status)
	}
	if status := run(t, &resetCmd{}, "-yes"); status != subcommands.ExitSuccess {
		t.Fatalf("expected reset to succeed, got %v", status)
	}
	if !strings.Contains(out.String(), "100,00") {
		t.Fatalf("expected default float in output, got %q", out.String())
	}
}

func TestFloatGetAndSet(t *testing.T) {
	b, out := useMemoryBackend(t)

	if status := run(t, &floatCmd{}, "-set", "250,50"); status != subcommands.ExitSuccess {
		t.Fatalf("set float failed: %v", status)
	}
	if got := b.Service.DefaultStartingFloat(context.Background()).Fixed(); got != "250.50" {
		t.Fatalf("expected stored float 250.50, got %s", got)
	}

	out.Reset()
	if status := run(t, &floatCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("get float failed: %v", status)
	}
	if !strings.Contains(out.String(), "250,50") {
		t.Fatalf("expected 250,50 in output, got %q", out.String())
	}
}

func TestCashbackCommands(t *testing.T) {
	_, out := useMemoryBackend(t)

	if status := run(t, &cashbackGrantCmd{}, "-amount", "15", "-name", "Ana", "123.456.789-09"); status != subcommands.ExitSuccess {
		t.Fatalf("grant failed: %v", status)
	}
	if status := run(t, &cashbackGrantCmd{}, "123.456.789-09"); status != subcommands.ExitUsageError {
		t.Fatalf("expected usage error without -amount, got %v", status)
	}

	out.Reset()
	if status := run(t, &cashbackBalanceCmd{}, "12345678909"); status != subcommands.ExitSuccess {
		t.Fatalf("balance failed: %v", status)
	}
	if !strings.Contains(out.String(), "15,00") {
		t.Fatalf("expected balance 15,00, got %q", out.String())
	}
}

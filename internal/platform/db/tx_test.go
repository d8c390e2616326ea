package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	if f.committed {
		return pgx.ErrTxClosed
	}
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx   *fakeTx
	opts pgx.TxOptions
	err  error
}

func (f *fakeBeginner) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithTx_Commits(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	err := WithTx(context.Background(), b, Serializable, func(tx pgx.Tx) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.tx.committed {
		t.Error("expected commit")
	}
	if b.opts.IsoLevel != pgx.Serializable {
		t.Errorf("expected serializable isolation, got %q", b.opts.IsoLevel)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	want := errors.New("delete failed")
	err := WithTx(context.Background(), b, Serializable, func(tx pgx.Tx) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if b.tx.committed || !b.tx.rolledBack {
		t.Error("expected rollback without commit")
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic to propagate")
		}
		if !b.tx.rolledBack {
			t.Error("expected rollback on panic")
		}
	}()
	_ = WithTx(context.Background(), b, Serializable, func(tx pgx.Tx) error { panic("boom") })
}

func TestWithTx_CommitError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("serialization failure")}}
	if err := WithTx(context.Background(), b, Serializable, func(tx pgx.Tx) error { return nil }); err == nil {
		t.Fatal("expected commit error")
	}
}

func TestWithTx_BeginError(t *testing.T) {
	b := &fakeBeginner{err: errors.New("pool closed")}
	called := false
	err := WithTx(context.Background(), b, Serializable, func(tx pgx.Tx) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatal("expected begin error without calling fn")
	}
}

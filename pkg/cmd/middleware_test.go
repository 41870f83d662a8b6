package cmd

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func recorder(trace *[]string, name string) Middleware[string] {
	return func(next Handler[string]) Handler[string] {
		return func(ctx context.Context, in string) error {
			*trace = append(*trace, name+":before")
			err := next(ctx, in)
			*trace = append(*trace, name+":after")
			return err
		}
	}
}

func TestChainOrder(t *testing.T) {
	var trace []string
	h := Chain(func(ctx context.Context, in string) error {
		trace = append(trace, "handler:"+in)
		return nil
	}, recorder(&trace, "outer"), nil, recorder(&trace, "inner"))

	if err := h(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"outer:before", "inner:before", "handler:x", "inner:after", "outer:after"}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestChainReusable(t *testing.T) {
	calls := 0
	h := Chain(func(ctx context.Context, in int) error {
		calls++
		return nil
	}, func(next Handler[int]) Handler[int] { return next })

	for i := 0; i < 3; i++ {
		_ = h(context.Background(), i)
	}
	if calls != 3 {
		t.Errorf("handler ran %d times, want 3", calls)
	}
}

func TestChainShortCircuit(t *testing.T) {
	ran := false
	stop := func(next Handler[string]) Handler[string] {
		return func(ctx context.Context, in string) error { return nil }
	}
	h := Chain(func(ctx context.Context, in string) error {
		ran = true
		return errors.New("should not run")
	}, stop)

	if err := h(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran {
		t.Error("terminal handler ran despite short-circuit")
	}
}

func TestRecover(t *testing.T) {
	h := Chain(func(ctx context.Context, in string) error {
		panic("boom")
	}, Recover[string]())

	err := h(context.Background(), "")
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PanicError", err)
	}
	if pe.Value != "boom" {
		t.Errorf("Value = %v, want boom", pe.Value)
	}
	if len(pe.Stack) == 0 {
		t.Error("expected captured stack")
	}
}

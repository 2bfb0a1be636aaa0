package core

import (
	"context"
	"testing"

	"github.com/nikolaydubina/fpdecimal"
)

func BenchmarkSubmitResting(b *testing.B) {
	e := NewEngine(EngineConfig{})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		price := fpdecimal.FromInt(100 + i%50)
		side := Buy
		if i%2 == 0 {
			side = Sell
			price = fpdecimal.FromInt(200 + i%50)
		}
		if _, err := e.Submit(ctx, side, price, 10, ""); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSubmitMatching(b *testing.B) {
	e := NewEngine(EngineConfig{})
	ctx := context.Background()
	price := fpdecimal.FromInt(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		side := Buy
		if i%2 == 1 {
			side = Sell
		}
		if _, err := e.Submit(ctx, side, price, 10, ""); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSubmitCancel(b *testing.B) {
	e := NewEngine(EngineConfig{})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		done, err := e.Submit(ctx, Buy, fpdecimal.FromInt(100+i%100), 10, "")
		if err != nil {
			b.Fatal(err)
		}
		if err := e.Cancel(ctx, done.OrderID); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSnapshot(b *testing.B) {
	e := NewEngine(EngineConfig{})
	ctx := context.Background()
	for i := 0; i < 500; i++ {
		if _, err := e.Submit(ctx, Buy, fpdecimal.FromInt(1000-i), 10, ""); err != nil {
			b.Fatal(err)
		}
		if _, err := e.Submit(ctx, Sell, fpdecimal.FromInt(1001+i), 10, ""); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Snapshot(20)
	}
}

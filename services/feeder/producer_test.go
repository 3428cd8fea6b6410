package feeder

import (
	"context"
	"testing"

	"github.com/gear-feeds/oracle-feeder/internal/codec"
)

func TestLocalRandom_NeverExceedsBound(t *testing.T) {
	const bound = 10_000_000_000_000
	producer := NewLocalRandom(bound)
	req := codec.PendingRequest{ID: 1}

	for i := 0; i < 100_000; i++ {
		v, err := producer.Value(context.Background(), req)
		if err != nil {
			t.Fatalf("Value() error = %v", err)
		}
		if v >= bound {
			t.Fatalf("sample %d: value %d >= bound %d", i, v, bound)
		}
	}
}

func TestLocalRandom_SmallBound(t *testing.T) {
	producer := NewLocalRandom(1)
	for i := 0; i < 1000; i++ {
		v, err := producer.Value(context.Background(), codec.PendingRequest{})
		if err != nil {
			t.Fatal(err)
		}
		if v != 0 {
			t.Fatalf("bound 1 must always produce 0, got %d", v)
		}
	}
}

package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/vgrid/internal/log"
)

func TestCtxValues(t *testing.T) {
	tests := map[string]struct {
		ctx       func() context.Context
		expValues log.Kv
	}{
		"A context without values should return empty values.": {
			ctx:       context.Background,
			expValues: log.Kv{},
		},
		"Values set on the context should be retrieved.": {
			ctx: func() context.Context {
				return log.CtxWithValues(context.Background(), log.Kv{"a": 1})
			},
			expValues: log.Kv{"a": 1},
		},
		"Nested values should be merged, overriding the old ones.": {
			ctx: func() context.Context {
				ctx := log.CtxWithValues(context.Background(), log.Kv{"a": 1, "b": 2})
				return log.CtxWithValues(ctx, log.Kv{"b": 3, "c": 4})
			},
			expValues: log.Kv{"a": 1, "b": 3, "c": 4},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expValues, log.ValuesFromCtx(test.ctx()))
		})
	}
}

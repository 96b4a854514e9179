package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromAndDetach(t *testing.T) {
	ctx := context.Background()
	_, ok := From(ctx)
	assert.False(t, ok)
	assert.Equal(t, ctx, WithTx(ctx, nil))

	bound := WithTx(ctx, &sql.Tx{})
	got, ok := From(bound)
	assert.True(t, ok)
	assert.NotNil(t, got)

	_, ok = From(Detach(bound))
	assert.False(t, ok)
	assert.Equal(t, ctx, Detach(ctx))
}

func TestOrPrefersContextTransaction(t *testing.T) {
	db := &sql.DB{}
	tx := &sql.Tx{}
	ctx := context.Background()

	assert.Same(t, db, Or(ctx, db))
	assert.Same(t, tx, Or(WithTx(ctx, tx), db))
	assert.Same(t, db, Or(Detach(WithTx(ctx, tx)), db))
}

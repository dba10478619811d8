package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

func TestDecodeStockChange_VariantUpdate(t *testing.T) {
	payload := `{"table":"product_variants","event_kind":"UPDATE",
		"previous_row":{"id":"v1","stock":5},"new_row":{"id":"v1","stock":2}}`

	ev, err := DecodeStockChange([]byte(payload), "")
	require.NoError(t, err)

	assert.Equal(t, entity.TableProductVariants, ev.Table)
	assert.Equal(t, "UPDATE", ev.Kind)
	assert.Equal(t, "v1", ev.ID)
	require.True(t, ev.HasNewStock)
	assert.Equal(t, 2, *ev.NewStock)
	assert.Equal(t, 5, *ev.PreviousStock)
	assert.True(t, ev.Applicable())
}

func TestDecodeStockChange_NullStockIsUntracked(t *testing.T) {
	ev, err := DecodeStockChange([]byte(`{"event_kind":"UPDATE","new_row":{"id":"p1","stock":null}}`), entity.TableProducts)
	require.NoError(t, err)

	assert.Equal(t, entity.TableProducts, ev.Table, "sin tabla en el payload se usa la del canal")
	assert.True(t, ev.HasNewStock)
	assert.Nil(t, ev.NewStock)
	assert.True(t, ev.Applicable())
}

func TestDecodeStockChange_DeleteHasNoNewStock(t *testing.T) {
	ev, err := DecodeStockChange([]byte(`{"table":"products","event_kind":"DELETE","previous_row":{"id":"p1","stock":3},"new_row":null}`), "")
	require.NoError(t, err)

	assert.Equal(t, "p1", ev.ID)
	assert.False(t, ev.HasNewStock)
	assert.False(t, ev.Applicable())
}

func TestDecodeStockChange_Invalid(t *testing.T) {
	_, err := DecodeStockChange([]byte(`no-json`), entity.TableProducts)
	assert.Error(t, err)

	_, err = DecodeStockChange([]byte(`{"new_row":{"id":"x","stock":1}}`), "")
	assert.Error(t, err)
}

func TestMigrateURL(t *testing.T) {
	got, err := migrateURL("postgresql://u:p@db:5432/pos?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://u:p@db:5432/pos?sslmode=disable", got)

	_, err = migrateURL("mysql://x")
	assert.Error(t, err)
}

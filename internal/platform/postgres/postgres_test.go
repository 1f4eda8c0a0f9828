package postgres

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConnect_EmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "  ", DefaultPoolOptions, nil)
	require.ErrorIs(t, err, ErrEmptyDSN)
}

func TestConnectDSN_FallsBackWithoutDSN(t *testing.T) {
	var logs bytes.Buffer
	db, cleanup := ConnectDSN(context.Background(), "", slog.New(slog.NewTextHandler(&logs, nil)))
	require.NotNil(t, cleanup)
	cleanup()

	assert.Nil(t, db)
	assert.Contains(t, logs.String(), "POSTGRES_DSN not set")
}

type marker struct {
	ID   uint
	Name string
}

func TestTxRunner_CommitsAndRollsBack(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:txrunner?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&marker{}))

	runner := NewTxRunner(db)
	ctx := context.Background()

	require.NoError(t, runner.InTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&marker{Name: "kept"}).Error
	}))

	boom := errors.New("boom")
	err = runner.InTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&marker{Name: "dropped"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var names []string
	require.NoError(t, db.Model(&marker{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"kept"}, names)
}

func TestTxRunner_NilDB(t *testing.T) {
	var runner *TxRunner
	assert.Error(t, runner.InTx(context.Background(), func(*gorm.DB) error { return nil }))
	assert.Error(t, NewTxRunner(nil).InTx(context.Background(), func(*gorm.DB) error { return nil }))
}

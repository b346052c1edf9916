package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mfigueroa/openshelf-backend/pkg/config"
)

type loanRow struct {
	ID    int
	Title string
}

func newSQLiteClient(t *testing.T) (*Client, *gorm.DB) {
	t.Helper()
	// One shared in-memory database per test so pooled connections see the
	// same schema without leaking rows across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&loanRow{}))
	return &Client{conn: conn}, conn
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, nil)
	require.Error(t, err)
}

func TestWithTxCommits(t *testing.T) {
	client, conn := newSQLiteClient(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&loanRow{Title: "The Left Hand of Darkness"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.Model(&loanRow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client, conn := newSQLiteClient(t)

	failed := errors.New("due date in the past")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&loanRow{Title: "abandoned"}).Error; err != nil {
			return err
		}
		return failed
	})
	require.ErrorIs(t, err, failed)

	var count int64
	require.NoError(t, conn.Model(&loanRow{}).Count(&count).Error)
	assert.Zero(t, count, "rolled back row must not persist")
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	client, conn := newSQLiteClient(t)

	require.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&loanRow{Title: "halfway"}).Error; err != nil {
				return err
			}
			panic("worker crashed")
		})
	})

	var count int64
	require.NoError(t, conn.Model(&loanRow{}).Count(&count).Error)
	assert.Zero(t, count, "panic must roll the transaction back")
}

func TestPingAndClose(t *testing.T) {
	client, _ := newSQLiteClient(t)
	require.NoError(t, client.Ping(context.Background()))
	require.NoError(t, client.Close())
}

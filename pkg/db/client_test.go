package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type tickets struct {
	ID    uint `gorm:"primarykey"`
	Count int
}

func newTestClient(t *testing.T) *Client {
	t.Helper()

	dsn := "file:dbclient_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&tickets{}))

	return &Client{name: "test", conn: conn}
}

func TestWithTxCommits(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&tickets{Count: 3}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, client.DB().Model(&tickets{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&tickets{Count: 9}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, client.DB().Model(&tickets{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.Panics(t, func() {
		_ = client.WithTx(ctx, func(tx *gorm.DB) error {
			if err := tx.Create(&tickets{Count: 1}).Error; err != nil {
				return err
			}
			panic("unexpected")
		})
	})

	var count int64
	require.NoError(t, client.DB().Model(&tickets{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestName(t *testing.T) {
	client := newTestClient(t)
	require.Equal(t, "test", client.Name())
}

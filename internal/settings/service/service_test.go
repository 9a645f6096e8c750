package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	settingsdomain "github.com/smallbiznis/rentora/internal/settings/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestSettings(t *testing.T) settingsdomain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&settingsdomain.RentSettings{}))

	return NewService(Params{DB: dbConn, Log: zap.NewNop()})
}

func TestGetReturnsDefaultsBeforeFirstUpdate(t *testing.T) {
	svc := newTestSettings(t)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.AutoGenerateRent)
	assert.Equal(t, 1, settings.RentGenerationDay)
	assert.Equal(t, 7, settings.RentDueDays)
}

func TestUpdatePersistsSettings(t *testing.T) {
	svc := newTestSettings(t)

	updated, err := svc.Update(context.Background(), settingsdomain.RentSettings{
		AutoGenerateRent:  true,
		RentGenerationDay: 5,
		RentDueDays:       10,
	})
	require.NoError(t, err)
	assert.True(t, updated.AutoGenerateRent)

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, got.AutoGenerateRent)
	assert.Equal(t, 5, got.RentGenerationDay)
	assert.Equal(t, 10, got.RentDueDays)

	// Second update rewrites the same row.
	_, err = svc.Update(context.Background(), settingsdomain.RentSettings{
		AutoGenerateRent:  false,
		RentGenerationDay: 28,
		RentDueDays:       0,
	})
	require.NoError(t, err)

	got, err = svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, got.AutoGenerateRent)
	assert.Equal(t, 28, got.RentGenerationDay)
	assert.Equal(t, 0, got.RentDueDays)
}

func TestUpdateValidatesRanges(t *testing.T) {
	svc := newTestSettings(t)

	_, err := svc.Update(context.Background(), settingsdomain.RentSettings{RentGenerationDay: 0, RentDueDays: 7})
	assert.ErrorIs(t, err, settingsdomain.ErrInvalidGenerationDay)

	_, err = svc.Update(context.Background(), settingsdomain.RentSettings{RentGenerationDay: 32, RentDueDays: 7})
	assert.ErrorIs(t, err, settingsdomain.ErrInvalidGenerationDay)

	_, err = svc.Update(context.Background(), settingsdomain.RentSettings{RentGenerationDay: 1, RentDueDays: -1})
	assert.ErrorIs(t, err, settingsdomain.ErrInvalidDueDays)
}

package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/bloghead/payments/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewZapLogger(t *testing.T) {
	l, err := NewZapLogger(Config{Level: "warn", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "[MASKED]", MaskToken("Bearer x"))
	assert.Equal(t, "Bearer eyJ...WXYZ1", MaskToken("Bearer eyJhbGciOiJIUzI1NiJ9.ABCDEFGHIJKLMNOPQRSTUVWXYZ1"))
}

func TestWithEchoLogger_ErrorBody(t *testing.T) {
	e := echo.New()
	WithEchoLogger(e, zap.NewNop())
	e.GET("/boom", func(c echo.Context) error {
		return apperrors.NewAppError(apperrors.ErrConflict, "taken", nil)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"CONFLICT"`)
}

func TestWithEchoLogger_CustomRenderer(t *testing.T) {
	e := echo.New()
	WithEchoLogger(e, zap.NewNop(), func(err error, c echo.Context) (int, interface{}) {
		return http.StatusTeapot, echo.Map{"error": "localized", "code": "BREWING"}
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("kettle")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"error":"localized","code":"BREWING"}`, rec.Body.String())
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, 10*time.Millisecond, true)

	sqlFn := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	gl.Trace(context.Background(), time.Now(), sqlFn, errors.New("connection reset"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "GORM query error", logs.All()[0].Message)

	gl.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "GORM slow query", logs.All()[1].Message)

	gl.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sqlFn, errors.New("ignored"))
	assert.Equal(t, 2, logs.Len())
}

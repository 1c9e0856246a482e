package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"escrow-core/internal/handler/response"
	"escrow-core/internal/model"
	"escrow-core/internal/testutil"
	"escrow-core/pkg/errno"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestActor(t *testing.T) {
	r := gin.New()
	r.GET("/me", Actor(), func(c *gin.Context) {
		response.Success(c, gin.H{"actor": ActorID(c)})
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "42", `{"code":0,"msg":"Success","data":{"actor":42}}`},
		{"missing", "", `"code":10003`},
		{"zero", "0", `"code":10003`},
		{"negative", "-1", `"code":10003`},
		{"garbage", "abc", `"code":10003`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(HeaderUserID, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestIdempotencySkipsRetryableFailures(t *testing.T) {
	db := testutil.NewTestDB(t)
	calls := 0

	r := gin.New()
	r.POST("/pay", Idempotency(db), func(c *gin.Context) {
		calls++
		if calls == 1 {
			response.Error(c, errno.ErrPersistence)
			return
		}
		response.Success(c, gin.H{"call": calls})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(`{"amount":"10"}`))
		req.Header.Set(HeaderIdempotencyKey, "k-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Contains(t, first.Body.String(), `"code":30006`)

	var count int64
	require.NoError(t, db.Model(&model.IdempotencyKey{}).Count(&count).Error)
	assert.Zero(t, count, "retryable failure must not be stored")

	second := send()
	assert.Contains(t, second.Body.String(), `"call":2`)

	third := send()
	assert.Equal(t, "true", third.Header().Get("Idempotent-Replay"))
	assert.Equal(t, second.Body.String(), third.Body.String())
	assert.Equal(t, 2, calls)
}

func TestIdempotencyStoresBusinessErrors(t *testing.T) {
	db := testutil.NewTestDB(t)
	calls := 0

	r := gin.New()
	r.POST("/release", Idempotency(db), func(c *gin.Context) {
		calls++
		response.Error(c, errno.ErrAlreadyReleased)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/release", nil)
		req.Header.Set(HeaderIdempotencyKey, "rel-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), `"code":30003`)
	}
	assert.Equal(t, 1, calls)
}

func TestIdempotencyKeyScopedToCaller(t *testing.T) {
	db := testutil.NewTestDB(t)

	r := gin.New()
	r.POST("/pay", Idempotency(db), func(c *gin.Context) {
		response.Success(c, nil)
	})

	send := func(actor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(`{}`))
		req.Header.Set(HeaderIdempotencyKey, "shared")
		req.Header.Set(HeaderUserID, actor)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Contains(t, send("1").Body.String(), `"code":0`)
	assert.Contains(t, send("2").Body.String(), `"code":30201`)
}

func TestIdempotencyRejectsLongKey(t *testing.T) {
	db := testutil.NewTestDB(t)
	r := gin.New()
	r.POST("/pay", Idempotency(db), func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/pay", nil)
	req.Header.Set(HeaderIdempotencyKey, strings.Repeat("x", 129))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"code":10002`)
}

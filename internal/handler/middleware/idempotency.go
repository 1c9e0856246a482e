package middleware

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"escrow-core/internal/handler/response"
	"escrow-core/internal/model"
	"escrow-core/pkg/errno"
	"escrow-core/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"lukechampine.com/blake3"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// Idempotency 带 Idempotency-Key 的写请求只执行一次, 重放时返回第一次的响应
// 同一个 key 配不同的请求体返回 IdempotencyConflict; 可重试的失败不落库
func Idempotency(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > 128 {
			response.Error(c, errno.ErrBind.WithMessage("Idempotency-Key must be at most 128 characters"))
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.Error(c, errno.ErrBind)
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := fingerprint(c, body)

		var record model.IdempotencyKey
		err = db.WithContext(c.Request.Context()).Take(&record, "key = ?", key).Error
		switch {
		case err == nil:
			if record.RequestHash != hash {
				response.Error(c, errno.ErrIdempotencyConflict)
				c.Abort()
				return
			}
			c.Header("Idempotent-Replay", "true")
			c.Data(record.Status, "application/json; charset=utf-8", []byte(record.Response))
			c.Abort()
			return
		case !errors.Is(err, gorm.ErrRecordNotFound):
			response.Error(c, errno.ErrPersistence.Wrap(err))
			c.Abort()
			return
		}

		recorder := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		if !storable(recorder.buf.Bytes()) {
			return
		}

		status := recorder.Status()
		if status == 0 {
			status = http.StatusOK
		}
		// 并发的同 key 请求只有第一个写入成功
		err = db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{DoNothing: true}).Create(&model.IdempotencyKey{
			Key:         key,
			RequestHash: hash,
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			Status:      status,
			Response:    recorder.buf.String(),
			CreatedAt:   time.Now(),
		}).Error
		if err != nil {
			logger.Warn("Store idempotent response failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// fingerprint blake3(method, path, caller, body)
func fingerprint(c *gin.Context, body []byte) string {
	h := blake3.New(32, nil)
	_, _ = h.Write([]byte(c.Request.Method + "\n" + c.Request.URL.Path + "\n" + c.GetHeader(HeaderUserID) + "\n"))
	_, _ = h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// storable 只保存确定性的结果; 持久化失败和内部错误允许客户端用同一个 key 重试
func storable(body []byte) bool {
	var r response.Response
	if err := json.Unmarshal(body, &r); err != nil {
		return false
	}
	return r.Code != errno.ErrPersistence.Code && r.Code != errno.InternalServerError.Code
}

// responseRecorder 记录响应体
type responseRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	rr.buf.Write(b)
	return rr.ResponseWriter.Write(b)
}

func (rr *responseRecorder) WriteString(s string) (int, error) {
	rr.buf.WriteString(s)
	return rr.ResponseWriter.WriteString(s)
}

package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"staffsync/internal/shared/apperror"
	"staffsync/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey      = "Idempotency-Key"
	HeaderIdempotencyReplayed = "Idempotent-Replayed"

	idempotencyLockTTL   = 30 * time.Second
	idempotencyResultTTL = 24 * time.Hour
)

type idempotencyRecord struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func IdempotencyCacheKey(path string, employeeID uint, key string) string {
	return fmt.Sprintf("idemp:%s:%d:%s", path, employeeID, key)
}

// Idempotency replays the stored response for a repeated POST carrying the
// same Idempotency-Key from the same employee. A second request arriving while
// the first is still running gets 409. Server errors are not stored, so the
// client may retry them with the same key.
func Idempotency(rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("middleware.idempotency")
	return func(c *gin.Context) {
		idempKey := c.GetHeader(HeaderIdempotencyKey)
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := IdempotencyCacheKey(c.FullPath(), c.GetUint(ContextEmployeeID), idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var rec idempotencyRecord
			if json.Unmarshal([]byte(val), &rec) == nil {
				c.Header(HeaderIdempotencyReplayed, "true")
				c.Data(rec.Status, "application/json; charset=utf-8", rec.Body)
				c.Abort()
				return
			}
			log.Warn("discarding unreadable idempotency record", zap.String("key", cacheKey))
		} else if !errors.Is(err, redis.Nil) {
			log.Error("idempotency lookup failed", zap.String("key", cacheKey), zap.Error(err))
			response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "idempotency store unavailable", nil)
			c.Abort()
			return
		}

		acquired, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Error("idempotency lock failed", zap.String("key", lockKey), zap.Error(err))
			response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "idempotency store unavailable", nil)
			c.Abort()
			return
		}
		if !acquired {
			response.Error(c, http.StatusConflict, "PROCESSING", "request with this idempotency key is still being processed", nil)
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder

		c.Next()

		if status := recorder.Status(); status < http.StatusInternalServerError {
			body := recorder.buf.Bytes()
			if len(body) == 0 {
				body = []byte("null")
			}
			payload, err := json.Marshal(idempotencyRecord{Status: status, Body: body})
			if err == nil {
				err = rdb.Set(ctx, cacheKey, string(payload), idempotencyResultTTL).Err()
			}
			if err != nil {
				log.Error("store idempotency result failed", zap.String("key", cacheKey), zap.Error(err))
			}
		}

		if err := rdb.Del(ctx, lockKey).Err(); err != nil {
			log.Warn("release idempotency lock failed", zap.String("key", lockKey), zap.Error(err))
		}
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/pkg/apperr"
	"github.com/Danosky8082/EdTech/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ── 错误映射 ──

func TestRespondError_Mapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"越权", apperr.AccessDenied("无权访问"), http.StatusForbidden, 10003},
		{"未找到", apperr.NotFound("资源不存在"), http.StatusNotFound, 10004},
		{"参数错误", apperr.Validation("参数非法"), http.StatusBadRequest, 10001},
		{"状态冲突", apperr.StateConflict("状态不允许"), http.StatusConflict, 10005},
		{"完整性冲突", apperr.Integrity("写入失败", errors.New("duplicate key")), http.StatusConflict, 10006},
		{"未分类错误", errors.New("connection reset"), http.StatusInternalServerError, 50000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/resource", func(c *gin.Context) {
				respondError(c, zap.NewNop(), tc.err)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/resource", nil))

			if w.Code != tc.wantHTTP {
				t.Errorf("expected %d, got %d", tc.wantHTTP, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tc.wantCode {
				t.Errorf("expected code %d, got %d", tc.wantCode, resp.Code)
			}
		})
	}
}

// 未分类错误不得把内部细节带给调用方
func TestRespondError_InternalDetailsHidden(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, zap.NewNop(), errors.New("pq: password authentication failed"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Message != "服务器内部错误" {
		t.Errorf("internal error message should be generic, got %s", resp.Message)
	}
}

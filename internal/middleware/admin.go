// Package middleware содержит HTTP middleware сервиса вафельной.
package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"io"
	"net/http"
)

const (
	adminPasswordField  = "adminPassword"
	adminPasswordHeader = "X-Admin-Password"

	maxGateBodySize = 1 << 20
)

// AdminGate пропускает запрос, только если переданный пароль администратора совпадает с настроенным.
// Пароль берётся из поля adminPassword JSON-тела или из заголовка X-Admin-Password.
type AdminGate struct {
	digest [sha256.Size]byte
	empty  bool
}

// NewAdminGate создаёт AdminGate. С пустым паролем все запросы отклоняются.
func NewAdminGate(password string) *AdminGate {
	return &AdminGate{
		digest: sha256.Sum256([]byte(password)),
		empty:  password == "",
	}
}

// Allowed сравнивает пароль с настроенным за постоянное время.
func (g *AdminGate) Allowed(password string) bool {
	if g.empty || password == "" {
		return false
	}
	got := sha256.Sum256([]byte(password))
	return hmac.Equal(got[:], g.digest[:])
}

// Middleware проверяет пароль администратора и восстанавливает тело запроса для обработчика.
func (g *AdminGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		password := r.Header.Get(adminPasswordHeader)

		if r.Body != nil && r.Body != http.NoBody {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxGateBodySize))
			r.Body.Close()
			if err != nil {
				writeGateError(w, http.StatusBadRequest, "VALIDATION_ERROR", "cannot read request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if fromBody := passwordFromBody(body); fromBody != "" {
				password = fromBody
			}
		}

		if !g.Allowed(password) {
			writeGateError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin password")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func passwordFromBody(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var password string
	if err := json.Unmarshal(payload[adminPasswordField], &password); err != nil {
		return ""
	}
	return password
}

func writeGateError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}

package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/crunchy-waffle/internal/middleware"
	"github.com/mmeshcher/crunchy-waffle/internal/model"
	"github.com/mmeshcher/crunchy-waffle/internal/repository"
	"github.com/mmeshcher/crunchy-waffle/internal/service"
)

const testAdminPassword = "test-secret"

type shop struct {
	t      *testing.T
	router *chi.Mux
}

func newShop(t *testing.T, staticDir string) *shop {
	t.Helper()

	svc := service.NewService(repository.NewMemoryRepository()).WithPasswordCost(bcrypt.MinCost)
	h := NewHandler(svc, zap.NewNop(), middleware.NewAdminGate(testAdminPassword), staticDir)

	return &shop{t: t, router: h.SetupRouter()}
}

func (s *shop) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *shop) admin(path string, body map[string]any) *httptest.ResponseRecorder {
	s.t.Helper()
	if body == nil {
		body = map[string]any{}
	}
	body["adminPassword"] = testAdminPassword
	return s.do(http.MethodPost, path, body)
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst), rec.Body.String())
}

func TestShop_OrderLifecycle(t *testing.T) {
	s := newShop(t, t.TempDir())

	rec := s.do(http.MethodPost, "/api/register", map[string]any{
		"username": "sam", "phone": "9990001111", "password": "pw123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/register", map[string]any{
		"username": "sam", "phone": "9990002222", "password": "pw123",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/login", map[string]any{"identifier": "9990001111", "password": "pw123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login loginResponse
	decodeInto(t, rec, &login)
	assert.Equal(t, model.RoleUser, login.Role)
	assert.Equal(t, "sam", login.Username)

	rec = s.do(http.MethodPost, "/api/login", map[string]any{"identifier": "sam", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.admin("/api/admin/update-wallet", map[string]any{"phone": "9990001111", "amount": 500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var wallet updateWalletResponse
	decodeInto(t, rec, &wallet)
	assert.Equal(t, 500.0, wallet.NewBalance)

	rec = s.do(http.MethodPost, "/api/orders/create", map[string]any{
		"username":       "sam",
		"items":          []map[string]any{{"name": "Nutella Bliss", "qty": 1}},
		"total":          200,
		"walletDeducted": 100,
		"cashPaid":       100,
		"transactionId":  "UPI-123",
		"status":         "Approved",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created createOrderResponse
	decodeInto(t, rec, &created)
	assert.Equal(t, int64(20), created.PointsEarned)
	require.NotEmpty(t, created.OrderID)

	rec = s.do(http.MethodGet, "/api/orders/user/sam", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []model.Order
	decodeInto(t, rec, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderStatusPending, orders[0].Status)

	// До подтверждения кошелёк не меняется.
	rec = s.do(http.MethodPost, "/api/login", map[string]any{"username": "sam", "password": "pw123"})
	decodeInto(t, rec, &login)
	assert.Equal(t, 500.0, login.WalletBalance)
	assert.Equal(t, int64(0), login.LoyaltyPoints)

	rec = s.admin("/api/admin/approve-order", map[string]any{"orderId": created.OrderID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.admin("/api/admin/approve-order", map[string]any{"orderId": created.OrderID})
	require.Equal(t, http.StatusConflict, rec.Code)
	var errResp errorResponse
	decodeInto(t, rec, &errResp)
	assert.Equal(t, codeAlreadyProcessed, errResp.Error)

	rec = s.admin("/api/admin/approve-order", map[string]any{"orderId": "missing"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/login", map[string]any{"phone": "9990001111", "password": "pw123"})
	decodeInto(t, rec, &login)
	assert.Equal(t, 400.0, login.WalletBalance)
	assert.Equal(t, int64(20), login.LoyaltyPoints)

	rec = s.admin("/api/admin/all-orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderStatusApproved, orders[0].Status)

	rec = s.admin("/api/admin/get-users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestShop_RejectsHugeAmounts(t *testing.T) {
	s := newShop(t, t.TempDir())

	rec := s.do(http.MethodPost, "/api/register", map[string]any{
		"username": "sam", "phone": "9990001111", "password": "pw123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/api/orders/create", map[string]any{"username": "sam", "total": 1e19})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp errorResponse
	decodeInto(t, rec, &errResp)
	assert.Equal(t, codeValidation, errResp.Error)

	rec = s.admin("/api/admin/update-wallet", map[string]any{"phone": "9990001111", "amount": 1e17})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/login", map[string]any{"username": "sam", "password": "pw123"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login loginResponse
	decodeInto(t, rec, &login)
	assert.Zero(t, login.WalletBalance)
	assert.Zero(t, login.LoyaltyPoints)
}

func TestShop_UpdateWalletUnknownPhone(t *testing.T) {
	s := newShop(t, t.TempDir())

	rec := s.admin("/api/admin/update-wallet", map[string]any{"phone": "0000000000", "amount": 10})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShop_AdminPasswordHeader(t *testing.T) {
	s := newShop(t, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/get-users", nil)
	req.Header.Set("X-Admin-Password", testAdminPassword)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestShop_Vouchers(t *testing.T) {
	s := newShop(t, t.TempDir())

	rec := s.admin("/api/admin/create-voucher", map[string]any{"code": "waffle10", "discount": 10})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.admin("/api/admin/create-voucher", map[string]any{"code": "WAFFLE10", "discount": 15})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/apply-voucher", map[string]any{"code": "WAFFLE10"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var applied applyVoucherResponse
	decodeInto(t, rec, &applied)
	assert.Equal(t, 10.0, applied.Discount)
	assert.Equal(t, model.DiscountPercent, applied.DiscountType)

	rec = s.do(http.MethodPost, "/api/apply-voucher", map[string]any{"code": "MISSING"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp errorResponse
	decodeInto(t, rec, &errResp)
	assert.Equal(t, codeInvalidVoucher, errResp.Error)
}

func TestShop_Menu(t *testing.T) {
	s := newShop(t, t.TempDir())

	rec := s.do(http.MethodGet, "/api/waffles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.admin("/api/waffles", map[string]any{
		"name":   "Classic",
		"price":  99,
		"addOns": []map[string]any{{"name": "Whipped cream", "price": 20}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var waffle model.Waffle
	decodeInto(t, rec, &waffle)
	require.NotEmpty(t, waffle.ID)

	rec = s.do(http.MethodGet, "/api/waffles", nil)
	var menu []model.Waffle
	decodeInto(t, rec, &menu)
	require.Len(t, menu, 1)
	assert.Equal(t, "Classic", menu[0].Name)
	require.Len(t, menu[0].AddOns, 1)

	req := httptest.NewRequest(http.MethodDelete, "/api/waffles/"+waffle.ID, nil)
	req.Header.Set("X-Admin-Password", testAdminPassword)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/waffles", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestShop_Settings(t *testing.T) {
	s := newShop(t, t.TempDir())

	rec := s.do(http.MethodGet, "/api/get-logo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logo model.LogoSettings
	decodeInto(t, rec, &logo)
	assert.Equal(t, model.DefaultLogo(), logo)

	rec = s.admin("/api/save-logo", map[string]any{"width": "150px", "x": "10px", "y": "5px"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/get-logo", nil)
	decodeInto(t, rec, &logo)
	assert.Equal(t, model.LogoSettings{Width: "150px", X: "10px", Y: "5px"}, logo)

	rec = s.admin("/api/save-logo", map[string]any{"width": "", "x": "0px", "y": "0px"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	logo = model.LogoSettings{}
	rec = s.do(http.MethodGet, "/api/get-logo", nil)
	decodeInto(t, rec, &logo)
	assert.Equal(t, model.LogoSettings{Width: "", X: "0px", Y: "0px"}, logo)

	rec = s.admin("/api/about", map[string]any{"title": "Crunchy Waffle"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.admin("/api/about", map[string]any{"content": "Since 2020"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/about", nil)
	var about model.About
	decodeInto(t, rec, &about)
	assert.Equal(t, "Crunchy Waffle", about.Title)
	assert.Equal(t, "Since 2020", about.Content)

	rec = s.admin("/api/admin/update-offer", map[string]any{"text": "2 for 1", "isActive": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.admin("/api/admin/update-offer", map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/get-offer", nil)
	var offer model.Offer
	decodeInto(t, rec, &offer)
	assert.Equal(t, model.Offer{Text: "2 for 1", IsActive: false}, offer)

	rec = s.admin("/api/save-qr", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin("/api/save-qr", map[string]any{"qrUrl": "https://pay.example/qr.png"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/get-qr", nil)
	var qr model.QRSettings
	decodeInto(t, rec, &qr)
	assert.Equal(t, "https://pay.example/qr.png", qr.QRURL)
}

func TestShop_Messages(t *testing.T) {
	s := newShop(t, t.TempDir())

	rec := s.do(http.MethodPost, "/api/messages", map[string]any{"username": "sam", "message": "Do you deliver?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/messages", map[string]any{"name": "Walk-in"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin("/api/admin/get-messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var messages []model.Message
	decodeInto(t, rec, &messages)
	require.Len(t, messages, 1)
	assert.Equal(t, "sam", messages[0].Name)

	rec = s.admin("/api/admin/reply-message", map[string]any{"msgId": messages[0].ID, "reply": "Yes, within 5 km"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.admin("/api/admin/reply-message", map[string]any{"msgId": "missing", "reply": "x"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/user-messages/sam", nil)
	decodeInto(t, rec, &messages)
	require.Len(t, messages, 1)
	assert.Equal(t, "Yes, within 5 km", messages[0].Reply)

	rec = s.do(http.MethodGet, "/api/user-messages/kim", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestShop_StaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>shop</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))

	s := newShop(t, dir)

	rec := s.do(http.MethodGet, "/app.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = s.do(http.MethodGet, "/menu/classic", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>shop</html>", rec.Body.String())

	rec = s.do(http.MethodGet, "/../../etc/passwd", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>shop</html>", rec.Body.String())

	rec = s.do(http.MethodGet, "/api/unknown", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShop_StaticWithoutIndex(t *testing.T) {
	s := newShop(t, t.TempDir())

	rec := s.do(http.MethodGet, "/anything", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

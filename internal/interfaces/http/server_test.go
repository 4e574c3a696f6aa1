package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders/internal/application/services"
	"orders/internal/domain"
	"orders/internal/domain/bookings"
	"orders/internal/domain/menus"
	"orders/internal/idempotency"
	"orders/internal/identity"
	ordershttp "orders/internal/interfaces/http"
)

var secret = []byte("test-secret")

type fakeService struct {
	err error

	userID         int64
	idempotencyKey string
	listFilter     *int64
	listedMine     bool
	patch          bookings.Patch
	createdStatus  *bookings.Status
}

func (f *fakeService) record(ctx context.Context) {
	f.userID, _ = identity.UserID(ctx)
	f.idempotencyKey = idempotency.GetKey(ctx)
}

func (f *fakeService) order(id int64) services.EnrichedBooking {
	return services.EnrichedBooking{
		Booking: bookings.Booking{
			ID:        id,
			UserID:    f.userID,
			MenuID:    7,
			Status:    bookings.StatusConfirmed,
			CreatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		},
		MenuDetails: &menus.Slot{MenuID: 7, DishName: "Pasta"},
	}
}

func (f *fakeService) Create(ctx context.Context, menuID int64, status *bookings.Status) (services.EnrichedBooking, error) {
	f.record(ctx)
	f.createdStatus = status
	if f.err != nil {
		return services.EnrichedBooking{}, f.err
	}
	o := f.order(1)
	o.MenuID = menuID
	return o, nil
}

func (f *fakeService) Get(ctx context.Context, id int64) (services.EnrichedBooking, error) {
	f.record(ctx)
	if f.err != nil {
		return services.EnrichedBooking{}, f.err
	}
	return f.order(id), nil
}

func (f *fakeService) List(ctx context.Context, userID *int64) ([]services.EnrichedBooking, error) {
	f.record(ctx)
	f.listFilter = userID
	if f.err != nil {
		return nil, f.err
	}
	unavailable := f.order(1)
	unavailable.MenuDetails = nil
	unavailable.MenuDetailsUnavailable = true
	return []services.EnrichedBooking{f.order(2), unavailable}, nil
}

func (f *fakeService) ListMine(ctx context.Context) ([]services.EnrichedBooking, error) {
	f.record(ctx)
	f.listedMine = true
	return []services.EnrichedBooking{}, f.err
}

func (f *fakeService) Update(ctx context.Context, id int64, patch bookings.Patch) (services.EnrichedBooking, error) {
	f.record(ctx)
	f.patch = patch
	if f.err != nil {
		return services.EnrichedBooking{}, f.err
	}
	return f.order(id), nil
}

func (f *fakeService) UpdateStatus(ctx context.Context, id int64, status bookings.Status) (services.EnrichedBooking, error) {
	f.record(ctx)
	if f.err != nil {
		return services.EnrichedBooking{}, f.err
	}
	o := f.order(id)
	o.Status = status
	return o, nil
}

func (f *fakeService) Cancel(ctx context.Context, id int64) (services.EnrichedBooking, error) {
	f.record(ctx)
	if f.err != nil {
		return services.EnrichedBooking{}, f.err
	}
	o := f.order(id)
	o.Status = bookings.StatusCancelled
	return o, nil
}

func (f *fakeService) Delete(ctx context.Context, id int64) error {
	f.record(ctx)
	return f.err
}

func token(t *testing.T, claims jwt.MapClaims, key []byte) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func newServer(svc *fakeService) *echo.Echo {
	e := echo.New()
	ordershttp.NewServer(e, ":0", svc, secret, func() bool { return true })
	return e
}

type envelope struct {
	Status  string          `json:"status"`
	Results *int            `json:"results"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func do(t *testing.T, e *echo.Echo, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func auth(t *testing.T, userID any) map[string]string {
	return map[string]string{
		echo.HeaderAuthorization: "Bearer " + token(t, jwt.MapClaims{"id": userID}, secret),
	}
}

func TestAuthentication(t *testing.T) {
	testCases := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{name: "no header", want: http.StatusUnauthorized},
		{name: "not bearer", headers: map[string]string{echo.HeaderAuthorization: "Basic abc"}, want: http.StatusUnauthorized},
		{name: "garbage token", headers: map[string]string{echo.HeaderAuthorization: "Bearer abc"}, want: http.StatusUnauthorized},
		{
			name: "wrong secret",
			headers: map[string]string{
				echo.HeaderAuthorization: "Bearer " + token(t, jwt.MapClaims{"id": 42}, []byte("other")),
			},
			want: http.StatusUnauthorized,
		},
		{
			name: "expired",
			headers: map[string]string{
				echo.HeaderAuthorization: "Bearer " + token(t, jwt.MapClaims{"id": 42, "exp": time.Now().Add(-time.Hour).Unix()}, secret),
			},
			want: http.StatusUnauthorized,
		},
		{
			name: "no id claim",
			headers: map[string]string{
				echo.HeaderAuthorization: "Bearer " + token(t, jwt.MapClaims{"sub": "42"}, secret),
			},
			want: http.StatusUnauthorized,
		},
		{name: "numeric id", headers: auth(t, 42), want: http.StatusOK},
		{name: "string id", headers: auth(t, "42"), want: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{}
			rec, env := do(t, newServer(svc), http.MethodGet, "/orders/user", "", tc.headers)

			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusUnauthorized {
				assert.Equal(t, "error", env.Status)
				assert.NotEmpty(t, env.Message)
				return
			}
			assert.Equal(t, int64(42), svc.userID)
		})
	}
}

func TestCreateOrder(t *testing.T) {
	svc := &fakeService{}
	e := newServer(svc)

	headers := auth(t, 42)
	headers[idempotency.Header] = "key-1"

	rec, env := do(t, e, http.MethodPost, "/orders", `{"menu_id": 7, "status": "pending", "user_id": 99}`, headers)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "success", env.Status)

	var order map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.EqualValues(t, 1, order["booking_id"])
	assert.EqualValues(t, 42, order["user_id"])
	assert.EqualValues(t, 7, order["menu_id"])
	assert.Contains(t, order, "menu_details")

	assert.Equal(t, "key-1", svc.idempotencyKey)
	require.NotNil(t, svc.createdStatus)
	assert.Equal(t, bookings.StatusPending, *svc.createdStatus)
}

func TestCreateOrder_InvalidBody(t *testing.T) {
	rec, env := do(t, newServer(&fakeService{}), http.MethodPost, "/orders", `{"menu_id": "seven"}`, auth(t, 42))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", env.Message)
}

func TestListOrders(t *testing.T) {
	svc := &fakeService{}
	e := newServer(svc)

	rec, env := do(t, e, http.MethodGet, "/orders?user_id=5", "", auth(t, 42))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Results)
	assert.Equal(t, 2, *env.Results)
	require.NotNil(t, svc.listFilter)
	assert.Equal(t, int64(5), *svc.listFilter)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Nil(t, list[1]["menu_details"])
	assert.Equal(t, true, list[1]["menu_details_unavailable"])

	rec, env = do(t, e, http.MethodGet, "/orders/user", "", auth(t, 42))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, *env.Results)
	assert.JSONEq(t, `[]`, string(env.Data))

	rec, _ = do(t, e, http.MethodGet, "/orders?user_id=abc", "", auth(t, 42))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersOfUserPathIgnoresPathID(t *testing.T) {
	svc := &fakeService{}

	rec, env := do(t, newServer(svc), http.MethodGet, "/orders/user/2", "", auth(t, 1))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.listedMine)
	assert.Nil(t, svc.listFilter)
	assert.Equal(t, int64(1), svc.userID)
	assert.Equal(t, 0, *env.Results)
}

func TestUpdateOrder(t *testing.T) {
	svc := &fakeService{}
	e := newServer(svc)

	rec, _ := do(t, e, http.MethodPut, "/orders/3", `{"menu_id": 8, "user_id": 99}`, auth(t, 42))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, svc.patch.MenuID)
	assert.Equal(t, int64(8), *svc.patch.MenuID)
	assert.Nil(t, svc.patch.Status)

	rec, env := do(t, e, http.MethodPatch, "/orders/3/status", `{"status": "completed"}`, auth(t, 42))
	require.Equal(t, http.StatusOK, rec.Code)
	var order map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "completed", order["status"])

	rec, env = do(t, e, http.MethodPatch, "/orders/3/status", `{}`, auth(t, 42))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status is required", env.Message)
}

func TestCancelAndDelete(t *testing.T) {
	e := newServer(&fakeService{})

	rec, env := do(t, e, http.MethodPost, "/orders/3/cancel", "", auth(t, 42))
	require.Equal(t, http.StatusOK, rec.Code)
	var order map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "cancelled", order["status"])
	assert.NotNil(t, order["menu_details"])

	rec, env = do(t, e, http.MethodDelete, "/orders/3", "", auth(t, 42))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "order deleted", env.Message)

	rec, _ = do(t, e, http.MethodDelete, "/orders/abc", "", auth(t, 42))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	testCases := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{name: "not found", err: bookings.ErrBookingNotFound, wantCode: http.StatusNotFound, wantMessage: "order not found"},
		{name: "already cancelled", err: bookings.ErrAlreadyCancelled, wantCode: http.StatusConflict, wantMessage: "order is already cancelled"},
		{
			name:        "too late",
			err:         bookings.ErrTooLateToCancel,
			wantCode:    http.StatusBadRequest,
			wantMessage: "orders can only be cancelled at least 2 hours before meal time",
		},
		{name: "lookup failed", err: menus.ErrLookupFailed, wantCode: http.StatusServiceUnavailable, wantMessage: "menu service is unavailable"},
		{name: "unauthorized", err: identity.ErrMissingUser, wantCode: http.StatusUnauthorized, wantMessage: "unauthorized"},
		{
			name:        "internal",
			err:         domain.NewError(assert.AnError, "connection refused"),
			wantCode:    http.StatusInternalServerError,
			wantMessage: "internal server error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := do(t, newServer(&fakeService{err: tc.err}), http.MethodPost, "/orders/3/cancel", "", auth(t, 42))
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tc.wantMessage, env.Message)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	e := echo.New()
	running := false
	ordershttp.NewServer(e, ":0", &fakeService{}, secret, func() bool { return running })

	rec, _ := do(t, e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	running = true
	rec, _ = do(t, e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	rec, env := do(t, newServer(&fakeService{}), http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", env.Status)
}

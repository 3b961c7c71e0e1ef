// Package paymentdelivery manages the delivery layer of payments and the
// product catalog.
package paymentdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/matrix-system/matrix-pay/internal/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.ReleaseMode)
	os.Exit(m.Run())
}

func newTestRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.POST("/payments", h.Create)
	router.GET("/payments/current", h.Current)
	router.DELETE("/payments/current", h.Cancel)
	router.GET("/products", h.Products)

	return router
}

func TestCreateAPI(t *testing.T) {
	testCases := []struct {
		name          string
		requestBody   gin.H
		buildStubs    func(service *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:        "OK",
			requestBody: gin.H{"product": domain.ProductBook, "coupon": "MATRIX10"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Initiate(gomock.Any(), domain.ProductBook, domain.PaymentOptions{Coupon: "MATRIX10"}).
					Times(1).
					Return("payment_1_abc", nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusAccepted, recorder.Code)
				require.Contains(t, recorder.Body.String(), "payment_1_abc")
			},
		},
		{
			name:        "MissingProduct",
			requestBody: gin.H{"coupon": "MATRIX10"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Initiate(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "UnknownProduct",
			requestBody: gin.H{"product": "dvd"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Initiate(gomock.Any(), "dvd", domain.PaymentOptions{}).
					Times(1).
					Return("", domain.ErrInvalidProduct)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "AlreadyInFlight",
			requestBody: gin.H{"product": domain.ProductBook},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Initiate(gomock.Any(), domain.ProductBook, domain.PaymentOptions{}).
					Times(1).
					Return("", domain.ErrPaymentInFlight)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name:        "NoSession",
			requestBody: gin.H{"product": domain.ProductBook},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Initiate(gomock.Any(), domain.ProductBook, domain.PaymentOptions{}).
					Times(1).
					Return("", domain.ErrNoSession)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := newTestRouter(NewHandler(service))

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(body))
			router.ServeHTTP(recorder, request)

			tc.checkResponse(recorder)
		})
	}
}

func TestCurrentAPI(t *testing.T) {
	testCases := []struct {
		name          string
		buildStubs    func(service *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Current().
					Times(1).
					Return(domain.Payment{ID: "payment_1_abc", Status: domain.PaymentProcessing}, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Contains(t, recorder.Body.String(), "payment_1_abc")
			},
		},
		{
			name: "NothingInFlight",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Current().
					Times(1).
					Return(domain.Payment{}, domain.ErrNoPaymentInFlight)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := newTestRouter(NewHandler(service))

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/payments/current", nil)
			router.ServeHTTP(recorder, request)

			tc.checkResponse(recorder)
		})
	}
}

func TestCancelAPI(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	service.EXPECT().Fail("changed my mind").Times(1).Return(nil)

	router := newTestRouter(NewHandler(service))

	body, err := json.Marshal(gin.H{"reason": "changed my mind"})
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/payments/current", bytes.NewReader(body))
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestProductsAPI(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := newTestRouter(NewHandler(NewMockService(ctrl)))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/products", nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), domain.ProductBook)
	require.Contains(t, recorder.Body.String(), "ethereum")
}

func TestNotices(t *testing.T) {
	notices := NewNotices()

	for i := 0; i < noticeLimit+5; i++ {
		notices.Notify("message", "info")
	}

	notices.NavigateTo("success")

	router := gin.New()
	router.GET("/notices", notices.List)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/notices", nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"section":"success"`)

	var res struct {
		Data struct {
			Notices []Notice `json:"notices"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
	require.Len(t, res.Data.Notices, noticeLimit)
}

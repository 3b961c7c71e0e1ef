// Package userdelivery manages the delivery layer of users and their sessions.
package userdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/internal/middleware"
	"github.com/matrix-system/matrix-pay/pkg/randompkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.ReleaseMode)
	os.Exit(m.Run())
}

func randomUser() domain.User {
	return domain.User{
		ID:        "user-" + randompkg.String(8),
		Username:  randompkg.Username(),
		Password:  randompkg.String(10),
		Email:     randompkg.Email(),
		Balance:   decimal.RequireFromString("150.75"),
		Role:      domain.RoleUser,
		CreatedAt: time.Now().Truncate(time.Second),
	}
}

func newTestRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.POST("/users", h.Register)
	router.POST("/users/login", h.Login)
	router.POST("/users/logout", h.Logout)

	return router
}

func TestRegisterAPI(t *testing.T) {
	testUser := randomUser()

	testCases := []struct {
		name          string
		requestBody   gin.H
		buildStubs    func(service *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			requestBody: gin.H{
				"username": testUser.Username,
				"password": testUser.Password,
				"email":    testUser.Email,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Register(gomock.Any(), testUser.Username, testUser.Email, testUser.Password).
					Times(1).
					Return(domain.UserWithoutPassword{
						ID:       testUser.ID,
						Username: testUser.Username,
						Email:    testUser.Email,
						Role:     domain.RoleUser,
					}, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusCreated, recorder.Code)
				require.Contains(t, recorder.Body.String(), testUser.Username)
				require.NotContains(t, recorder.Body.String(), testUser.Password)
			},
		},
		{
			name: "MissingPassword",
			requestBody: gin.H{
				"username": testUser.Username,
				"email":    testUser.Email,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "ShortUsername",
			requestBody: gin.H{
				"username": "ab",
				"password": testUser.Password,
				"email":    testUser.Email,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Register(gomock.Any(), "ab", testUser.Email, testUser.Password).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.ErrUsernameTooShort)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "DuplicateUsername",
			requestBody: gin.H{
				"username": testUser.Username,
				"password": testUser.Password,
				"email":    testUser.Email,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Register(gomock.Any(), testUser.Username, testUser.Email, testUser.Password).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.ErrUsernameAlreadyExists)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			sessions := NewMockSessionManager(ctrl)
			ledger := NewMockLedger(ctrl)
			tc.buildStubs(service)

			handler := NewHandler(service, sessions, ledger, nil)
			router := newTestRouter(handler)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
			router.ServeHTTP(recorder, request)

			tc.checkResponse(recorder)
		})
	}
}

func TestLoginAPI(t *testing.T) {
	testUser := randomUser()

	testCases := []struct {
		name          string
		requestBody   gin.H
		buildStubs    func(service *MockService, sessions *MockSessionManager, recorder *MockLoginRecorder)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			requestBody: gin.H{
				"username": testUser.Username,
				"password": testUser.Password,
			},
			buildStubs: func(service *MockService, sessions *MockSessionManager, recorder *MockLoginRecorder) {
				service.EXPECT().
					Authenticate(gomock.Any(), testUser.Username, testUser.Password, domain.RoleUser).
					Times(1).
					Return(testUser, nil)

				sessions.EXPECT().
					LogIn(gomock.Any(), testUser).
					Times(1).
					Return(domain.Session{
						AccountID: testUser.ID,
						Username:  testUser.Username,
						Role:      testUser.Role,
						LoginTime: time.Now(),
					}, nil)

				recorder.EXPECT().LoginAttempt("success").Times(1)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Contains(t, recorder.Body.String(), testUser.ID)
			},
		},
		{
			name: "AdminEntryPoint",
			requestBody: gin.H{
				"username":  "admin",
				"password":  "admin123",
				"loginType": "admin",
			},
			buildStubs: func(service *MockService, sessions *MockSessionManager, recorder *MockLoginRecorder) {
				admin := domain.User{ID: domain.PrimaryAdminID, Username: "admin", Role: domain.RoleAdmin}

				service.EXPECT().
					Authenticate(gomock.Any(), "admin", "admin123", domain.RoleAdmin).
					Times(1).
					Return(admin, nil)

				sessions.EXPECT().
					LogIn(gomock.Any(), admin).
					Times(1).
					Return(domain.Session{AccountID: admin.ID, Role: domain.RoleAdmin}, nil)

				recorder.EXPECT().LoginAttempt("success").Times(1)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
		{
			name: "WrongPassword",
			requestBody: gin.H{
				"username": testUser.Username,
				"password": "wrong-password",
			},
			buildStubs: func(service *MockService, sessions *MockSessionManager, recorder *MockLoginRecorder) {
				service.EXPECT().
					Authenticate(gomock.Any(), testUser.Username, "wrong-password", domain.RoleUser).
					Times(1).
					Return(domain.User{}, domain.ErrWrongCredentials)

				recorder.EXPECT().LoginAttempt("failure").Times(1)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "UserAtAdminEntryPoint",
			requestBody: gin.H{
				"username":  testUser.Username,
				"password":  testUser.Password,
				"loginType": "admin",
			},
			buildStubs: func(service *MockService, sessions *MockSessionManager, recorder *MockLoginRecorder) {
				service.EXPECT().
					Authenticate(gomock.Any(), testUser.Username, testUser.Password, domain.RoleAdmin).
					Times(1).
					Return(domain.User{}, domain.ErrWrongRole)

				recorder.EXPECT().LoginAttempt("failure").Times(1)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "InvalidLoginType",
			requestBody: gin.H{
				"username":  testUser.Username,
				"password":  testUser.Password,
				"loginType": "root",
			},
			buildStubs: func(service *MockService, sessions *MockSessionManager, recorder *MockLoginRecorder) {
				service.EXPECT().
					Authenticate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			sessions := NewMockSessionManager(ctrl)
			ledger := NewMockLedger(ctrl)
			loginRecorder := NewMockLoginRecorder(ctrl)
			tc.buildStubs(service, sessions, loginRecorder)

			handler := NewHandler(service, sessions, ledger, loginRecorder)
			router := newTestRouter(handler)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader(body))
			router.ServeHTTP(recorder, request)

			tc.checkResponse(recorder)
		})
	}
}

func TestLogoutAPI(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	sessions := NewMockSessionManager(ctrl)
	ledger := NewMockLedger(ctrl)

	sessions.EXPECT().LogOut(gomock.Any()).Times(1).Return(nil)

	handler := NewHandler(service, sessions, ledger, nil)
	router := newTestRouter(handler)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestTransactionsAPI(t *testing.T) {
	testUser := randomUser()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	sessions := NewMockSessionManager(ctrl)
	ledger := NewMockLedger(ctrl)

	ledger.EXPECT().
		ListByAccount(gomock.Any(), testUser.ID).
		Times(1).
		Return([]domain.Transaction{{ID: "TX1", AccountID: testUser.ID}}, nil)

	handler := NewHandler(service, sessions, ledger, nil)

	router := gin.New()
	router.GET("/transactions", func(ctx *gin.Context) {
		ctx.Set(middleware.AccountKey, testUser)
	}, handler.Transactions)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "TX1")
}

package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/pkg/web"
)

// AccountKey is the gin context key under which the authenticated account is
// stored by RequireSession.
const AccountKey = "session_account"

// SessionChecker resolves the account behind the active session.
type SessionChecker interface {
	Current(ctx context.Context) (domain.User, error)
}

// RequireSession rejects requests without an active session with 401. When
// role is non-empty the session account must also hold that role or the
// request is rejected with 403. The account is stored in the gin context
// under AccountKey.
func RequireSession(sessions SessionChecker, role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		account, err := sessions.Current(ctx.Request.Context())
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(domain.ErrNoSession))
			return
		}

		if role != "" && account.Role != role {
			ctx.AbortWithStatusJSON(http.StatusForbidden, web.Error(domain.ErrWrongRole))
			return
		}

		ctx.Set(AccountKey, account)
		ctx.Next()
	}
}

// AccountFromContext returns the account stored by RequireSession.
func AccountFromContext(ctx *gin.Context) (domain.User, bool) {
	account, ok := ctx.Value(AccountKey).(domain.User)
	return account, ok
}

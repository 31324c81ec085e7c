// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/golang-jwt/jwt/v4"

	apierrors "agentic-pipeline/pkg/errors"
)

// ActorUserIDKey is the RequestContext key holding the authenticated
// user_id claim, set by Auth and read by handlers for the owner guard.
const ActorUserIDKey = "actor_user_id"

// Auth extracts and validates a bearer JWT, distinguishing an expired
// token from an otherwise invalid one — the two surface distinct error
// codes rather than collapsing into one generic 401.
func Auth(signingKey []byte) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		header := string(c.GetHeader("Authorization"))
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			writeAuthError(c, apierrors.UnauthorizedAccess)
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return signingKey, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeAuthError(c, apierrors.TokenExpired)
			} else {
				writeAuthError(c, apierrors.InvalidToken)
			}
			c.Abort()
			return
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			writeAuthError(c, apierrors.UnauthorizedAccess)
			c.Abort()
			return
		}

		c.Set(ActorUserIDKey, userID)
		c.Next(ctx)
	}
}

func writeAuthError(c *app.RequestContext, ec apierrors.ErrorCode) {
	status := ec.StatusCode
	if status == 0 {
		status = consts.StatusUnauthorized
	}
	c.JSON(status, ec.ToMap())
}

// ActorUserID reads the user_id claim stashed by Auth.
func ActorUserID(c *app.RequestContext) string {
	v, _ := c.Get(ActorUserIDKey)
	userID, _ := v.(string)
	return userID
}

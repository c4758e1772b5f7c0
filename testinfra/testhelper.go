package testinfra

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"timewheel/authority"
	"timewheel/domain"
	"timewheel/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// ExecuteRequest runs the request against the router and returns status,
// body and headers.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	body, _ := ioutil.ReadAll(w.Body)
	return w.Code, string(body), w.Header()
}

// BuildSession builds a session context from perms of the form
// "<role>_<tenantId>" (plus plain perms like "system:admin").
func BuildSession(uid types.ID, perms ...string) *session.Session {
	tenantRoles := authority.TenantRoles{}
	for _, perm := range perms {
		idx := strings.Index(perm, "_")
		if idx <= 0 {
			continue
		}
		role := perm[0:idx]
		tenantId, err := types.ParseID(perm[idx+1:])
		if err != nil {
			continue
		}
		tenantRoles = append(tenantRoles, domain.TenantRole{TenantID: tenantId, Role: role})
	}

	return &session.Session{Token: "test-token", Identity: session.Identity{ID: uid, Name: "user" + uid.String()},
		Perms: perms, TenantRoles: tenantRoles}
}

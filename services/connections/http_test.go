package connections

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatch/api/pkg/auth"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type staticVerifier struct{}

func (staticVerifier) VerifyIDToken(_ context.Context, idToken string) (*firebaseauth.Token, error) {
	return &firebaseauth.Token{UID: idToken}, nil
}

func newRouter() *gin.Engine {
	router := gin.New()
	group := router.Group("/connections/v1")
	group.Use(auth.AuthMiddleware(staticVerifier{}))
	NewHTTPHandler(HTTPOptions{Service: NewService(seeded()), Router: group})
	return router
}

func list(router http.Handler, uid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/connections/v1", nil)
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+uid)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListEndpoint(t *testing.T) {
	router := newRouter()

	w := list(router, "ann")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var views []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 2)

	assert.Equal(t, "c2", views[0]["id"])
	assert.Equal(t, "pickleball", views[0]["sport"])
	partner, ok := views[0]["partner"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "cat", partner["id"])
	assert.Equal(t, "Cat", partner["name"])

	partner, ok = views[1]["partner"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Bob", partner["name"])
}

func TestListEndpointEmpty(t *testing.T) {
	w := list(newRouter(), "dan")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListEndpointRequiresToken(t *testing.T) {
	w := list(newRouter(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

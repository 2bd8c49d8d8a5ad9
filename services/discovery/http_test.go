package discovery

import (
	"bytes"
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
	"github.com/playmatch/api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterWithGin(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type staticVerifier struct{}

func (staticVerifier) VerifyIDToken(_ context.Context, idToken string) (*firebaseauth.Token, error) {
	return &firebaseauth.Token{UID: idToken}, nil
}

func call(router http.Handler, uid, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+uid)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDiscoveryEndpoints(t *testing.T) {
	s := newTestService(seed(t, 3), 10)
	router := gin.New()
	group := router.Group("/discovery/v1")
	group.Use(auth.AuthMiddleware(staticVerifier{}))
	NewHTTPHandler(HTTPOptions{Service: s, Router: group})

	w := call(router, "p00", http.MethodGet, "/discovery/v1/feed?sport=tennis", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var feed FeedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed.Players, 1)
	assert.Equal(t, "p02", feed.Players[0].ID)
	assert.NotContains(t, w.Body.String(), "@example.com")
	assert.NotContains(t, w.Body.String(), "555-0000")

	w = call(router, "p00", http.MethodGet, "/discovery/v1/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sportFilter":"tennis"`)

	w = call(router, "p00", http.MethodPut, "/discovery/v1/preferences", map[string]string{"view": "courts"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(router, "p00", http.MethodPost, "/discovery/v1/connect", map[string]interface{}{"receiverIds": []string{}, "sport": "tennis"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(router, "p00", http.MethodPost, "/discovery/v1/connect", map[string]interface{}{"receiverIds": []string{"p01", "p02"}, "sport": "tennis"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var results []ConnectResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 2)
	assert.NotEmpty(t, results[0].RequestID)
	assert.NotEmpty(t, results[1].RequestID)
}

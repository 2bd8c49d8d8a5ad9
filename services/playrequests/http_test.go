package playrequests

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

func TestPlayRequestEndpoints(t *testing.T) {
	s, _, _ := newTestService(t)
	router := gin.New()
	group := router.Group("/requests/v1")
	group.Use(auth.AuthMiddleware(staticVerifier{}))
	NewHTTPHandler(HTTPOptions{Service: s, Router: group})

	w := call(router, "ann", http.MethodPost, "/requests/v1", map[string]string{"receiverId": "bob", "sport": "badminton"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(router, "ann", http.MethodPost, "/requests/v1", map[string]string{"receiverId": "bob", "sport": "tennis"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created PlayRequestView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = call(router, "ann", http.MethodPost, "/requests/v1", map[string]string{"receiverId": "bob", "sport": "tennis"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(router, "bob", http.MethodGet, "/requests/v1/received", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "ann@example.com")

	w = call(router, "bob", http.MethodPost, "/requests/v1/"+created.ID+"/respond", map[string]string{"action": "accepted"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(router, "bob", http.MethodPost, "/requests/v1/"+created.ID+"/respond", map[string]string{"action": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "ann@example.com")

	w = call(router, "ann", http.MethodGet, "/requests/v1/sent?status=accepted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sent []PlayRequestView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	require.Len(t, sent, 1)
	assert.Equal(t, "bob@example.com", sent[0].Contact.Email)

	w = call(router, "bob", http.MethodPost, "/requests/v1/"+created.ID+"/respond", map[string]string{"action": "decline"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

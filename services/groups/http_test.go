package groups

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
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
	"github.com/playmatch/api/repos/store"
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

func newTestRouter(s *Service) *gin.Engine {
	router := gin.New()
	group := router.Group("/groups/v1")
	group.Use(auth.AuthMiddleware(staticVerifier{}))
	NewHTTPHandler(HTTPOptions{Service: s, Router: group})
	return router
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

func TestGroupEndpoints(t *testing.T) {
	s, _, _, _ := newTestService(t)
	router := newTestRouter(s)

	w := call(router, "bob", http.MethodPost, "/groups/v1", map[string]string{"name": "x", "sport": "golf"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(router, "bob", http.MethodPost, "/groups/v1", validGroup())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var g store.Group
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))

	w = call(router, "ann", http.MethodPost, "/groups/v1/"+g.ID+"/join", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var request store.GroupRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))

	w = call(router, "ann", http.MethodPost, "/groups/v1/"+g.ID+"/join", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(router, "ann", http.MethodGet, "/groups/v1/"+g.ID+"/requests", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(router, "ann", http.MethodGet, "/groups/v1/requests/mine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), request.ID)

	w = call(router, "bob", http.MethodPost, "/groups/v1/requests/"+request.ID+"/respond", map[string]string{"action": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(router, "ann", http.MethodGet, "/groups/v1/"+g.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail GroupDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.True(t, detail.Viewer.IsMember)
	assert.Equal(t, 2, detail.Group.MemberCount)

	w = call(router, "ann", http.MethodGet, "/groups/v1/mine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), g.ID)

	w = call(router, "ann", http.MethodGet, "/groups/v1/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImageUpload(t *testing.T) {
	s, _, _, up := newTestService(t)
	router := newTestRouter(s)
	g := createGroup(t, s, "bob", 0)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "court.jpg")
	require.NoError(t, err)
	part.Write([]byte("jpeg"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/groups/v1/"+g.ID+"/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer bob")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), up.path)
}

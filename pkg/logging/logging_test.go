package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	Configure("debug", "json", &buf)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("uid", "u1") })
	router.Use(RequestLogger())
	router.GET("/groups/v1/:group_id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/groups/v1/g1", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request rejected", entry["message"])
	assert.Equal(t, "/groups/v1/:group_id", entry["path"])
	assert.Equal(t, "u1", entry["uid"])
	assert.EqualValues(t, http.StatusNotFound, entry["status"])
}

func TestConfigureUnknownLevel(t *testing.T) {
	Configure("chatty", "text", &bytes.Buffer{})
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}

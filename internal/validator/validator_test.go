package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	SID   string `json:"sid" binding:"required,sid"`
	Month string `json:"monthYear" binding:"required,monthyear"`
}

func bindBody(t *testing.T, body string) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var dst sample
	return Bind(c, &dst)
}

func TestBind_CustomTags(t *testing.T) {
	assert.Nil(t, bindBody(t, `{"sid":"0420","monthYear":"March 2025"}`))

	fields := bindBody(t, `{"sid":"42","monthYear":"2025-03"}`)
	assert.Equal(t, "sid must be exactly 4 digits", fields["sid"])
	assert.Contains(t, fields["monthYear"], "March 2025")
}

func TestBind_MissingFields(t *testing.T) {
	fields := bindBody(t, `{}`)
	assert.Contains(t, fields, "sid")
	assert.Contains(t, fields, "monthYear")
}

func TestBind_MalformedJSON(t *testing.T) {
	fields := bindBody(t, `{"sid":`)
	assert.Contains(t, fields, "detail")
}

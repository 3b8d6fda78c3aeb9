package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerDoc(t *testing.T) {
	var doc struct {
		BasePath            string                                `json:"basePath"`
		Paths               map[string]map[string]json.RawMessage `json:"paths"`
		SecurityDefinitions map[string]struct {
			Type string `json:"type"`
			Name string `json:"name"`
			In   string `json:"in"`
		} `json:"securityDefinitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	assert.Equal(t, "/api", doc.BasePath)
	auth, ok := doc.SecurityDefinitions["ApiKeyAuth"]
	require.True(t, ok)
	assert.Equal(t, "Authorization", auth.Name)
	assert.Equal(t, "header", auth.In)

	for path, method := range map[string]string{
		"/auth/login":                               "post",
		"/courses":                                  "get",
		"/courses/{identity}":                       "put",
		"/lessons/{lessonIdentity}/assignments":     "get",
		"/lessons/{lessonIdentity}/feedbacks/chart": "get",
		"/certificates/{id}":                        "delete",
		"/question-pools":                           "post",
		"/users/{id}/status":                        "put",
		"/media":                                    "post",
	} {
		ops, ok := doc.Paths[path]
		if assert.True(t, ok, path) {
			assert.Contains(t, ops, method, path)
		}
	}

	// 登录之外的接口都要求令牌
	var login, courses struct {
		Security []map[string][]string `json:"security"`
	}
	require.NoError(t, json.Unmarshal(doc.Paths["/auth/login"]["post"], &login))
	require.NoError(t, json.Unmarshal(doc.Paths["/courses"]["get"], &courses))
	assert.Empty(t, login.Security)
	require.Len(t, courses.Security, 1)
	assert.Contains(t, courses.Security[0], "ApiKeyAuth")
}

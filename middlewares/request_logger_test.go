package middlewares

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/halcyon-http/halcyon"
	"github.com/stretchr/testify/assert"
)

func TestRequestLoggerLogsMethodPathAndStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := halcyon.NewLogger(&buf, "debug")

	svc := RequestLogger(logger)(terminal(201))

	resp, err := svc(halcyon.NewTestRequest("POST", "/widgets", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, 201, resp.Status)

	var record map[string]any
	assert.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	assert.Equal(t, "POST", record["method"])
	assert.Equal(t, "/widgets", record["path"])
	assert.Equal(t, float64(201), record["status"])
}

func TestRequestLoggerLogsErrorLevelOnFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := halcyon.NewLogger(&buf, "debug")

	failing := func(req *halcyon.Request) (*halcyon.Response, error) {
		return nil, assert.AnError
	}

	svc := RequestLogger(logger)(failing)
	_, err := svc(halcyon.NewTestRequest("GET", "/x", nil, nil))
	assert.Error(t, err)
	assert.True(t, strings.Contains(buf.String(), `"level":"error"`))
}

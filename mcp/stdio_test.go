package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioServerReportsOversizedLine(t *testing.T) {
	in := strings.NewReader(strings.Repeat("x", 2*1024*1024) + "\n")

	var out bytes.Buffer

	srv := NewStdioServer(in, &out)
	require.NoError(t, srv.AddEndpoint(mcp.MethodPing, PingEndpoint(nil)))

	for range 20 {
		err := srv.Listen(context.Background())
		if !assert.ErrorIs(t, err, bufio.ErrTooLong) {
			return
		}

		in.Seek(0, io.SeekStart)
	}

	assert.Empty(t, out.String())
}

func TestStdioServer(t *testing.T) {
	assert := assert.New(t)

	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": {"protocolVersion": "2024-11-05"}}`,
		`{"jsonrpc": "2.0", "method": "notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc": "2.0", "id": 2, "method": "tools/call", "params": {"name": "ask_faq", "arguments": {"question": "When?"}}}`,
		`{"jsonrpc": "2.0", "id": 3, "method": "resources/list"}`,
	}, "\n"))

	var out bytes.Buffer

	srv := NewStdioServer(in, &out)
	for method, endpoint := range MakeEndpoints(&stubService{answer: "8 AM"}) {
		require.NoError(t, srv.AddEndpoint(method, endpoint))
	}

	assert.Error(srv.AddEndpoint(mcp.MethodPing, PingEndpoint(nil)))

	err := srv.Listen(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3, "notifications and garbage get no response")

	type response struct {
		ID     int             `json:"id"`
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code int `json:"code"`
		} `json:"error"`
	}

	responses := make([]response, 0, len(lines))
	for _, line := range lines {
		var resp response
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		responses = append(responses, resp)
	}

	assert.Equal(1, responses[0].ID)
	assert.Contains(string(responses[0].Result), `"faqbot"`)

	assert.Equal(2, responses[1].ID)
	assert.Contains(string(responses[1].Result), "8 AM")

	assert.Equal(3, responses[2].ID)
	if assert.NotNil(responses[2].Error) {
		assert.Equal(mcp.METHOD_NOT_FOUND, responses[2].Error.Code)
	}
}

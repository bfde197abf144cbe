package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	b, err := json.Marshal(OKT(map[string]string{"status": "ok"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"code":0,"message":"ok","data":{"status":"ok"}}`, string(b))

	b, err = json.Marshal(ErrorT[any](APIResponseCodeBadRequest, "invalid sort field"))
	require.NoError(t, err)
	require.JSONEq(t, `{"code":40000,"message":"bad request","data":"invalid sort field"}`, string(b))
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowanceRejectsUnsupportedChain(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/allowance?chainId=424242&token=0x01&symbol=USDC&decimals=6&owner=0x00000000000000000000000000000000000000aa", nil)

	Allowance(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported chain")
}

func TestApproveRejectsUnsupportedChain(t *testing.T) {
	body := strings.NewReader(`{"token":{"address":"0x01","symbol":"USDC","decimals":6},"amount":"1000","chainId":424242}`)

	rec := httptest.NewRecorder()
	Approve(rec, httptest.NewRequest(http.MethodPost, "/approve", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported chain")
}

package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthlens/wealthlens/internal/domain"
)

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(Config{BaseURL: baseURL, Timeout: timeout})
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/fetch_net_worth", r.URL.Path)
		w.Write([]byte(`{"totalNetWorthValue": {"currencyCode": "INR", "units": "500000"}}`))
	}))
	defer srv.Close()

	snap, err := newTestClient(srv.URL, time.Second).Fetch(context.Background(), domain.NetWorthDomain)
	require.NoError(t, err)
	require.NotNil(t, snap.NetWorth)
	assert.Equal(t, int64(500000), snap.NetWorth.Total.Units)
}

func TestFetchHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).Fetch(context.Background(), domain.EpfDetailsDomain)
	require.Error(t, err)
	assert.Equal(t, KindHTTPStatus, KindOf(err))

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
	assert.Equal(t, domain.EpfDetailsDomain, fe.Domain)
}

func TestFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transactions": [`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).Fetch(context.Background(), domain.MfTransactionsDomain)
	require.Error(t, err)
	assert.Equal(t, KindMalformedBody, KindOf(err))
}

func TestFetchTimeoutClassification(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestClient(srv.URL, 50*time.Millisecond).Fetch(context.Background(), domain.CreditReportDomain)
	require.Error(t, err)
	// A deadline expiry must classify as Timeout, never Unknown.
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestFetchNoConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := newTestClient(base, time.Second).Fetch(context.Background(), domain.NetWorthDomain)
	require.Error(t, err)
	assert.Equal(t, KindNoConnection, KindOf(err))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(context.Canceled))
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNetWorth(t *testing.T) {
	raw := []byte(`{
		"totalNetWorthValue": {"currencyCode": "INR", "units": "1250000", "nanos": 500000000},
		"assetValues": [
			{"netWorthAttribute": "MUTUAL_FUND", "value": {"currencyCode": "INR", "units": "900000"}},
			{"netWorthAttribute": "EPF", "value": {"currencyCode": "INR", "units": "350000"}}
		],
		"liabilityValues": [
			{"netWorthAttribute": "HOME_LOAN", "value": {"currencyCode": "INR", "units": "-200000"}}
		]
	}`)

	snap, err := Decode(NetWorthDomain, raw, time.Now())
	require.NoError(t, err)
	require.NotNil(t, snap.NetWorth)
	assert.True(t, snap.HasData())

	nw := snap.NetWorth
	assert.Equal(t, int64(1250000), nw.Total.Units)
	assert.Equal(t, int32(500000000), nw.Total.Nanos)
	require.Len(t, nw.Assets, 2)
	assert.Equal(t, "MUTUAL_FUND", nw.Assets[0].Kind)
	require.Len(t, nw.Liabilities, 1)
	assert.Equal(t, int64(-200000), nw.Liabilities[0].Value.Units)
}

func TestDecodeCreditReportDefensiveFields(t *testing.T) {
	raw := []byte(`{
		"bureauScore": "not-a-number",
		"bureau": "CIBIL",
		"reportDate": "garbage",
		"creditAccounts": [
			{"accountType": "CREDIT_CARD", "openDate": "20190315", "paymentStatus": "DELINQUENT"},
			{"accountType": "PERSONAL_LOAN", "openDate": "15-03-2019"}
		]
	}`)

	snap, err := Decode(CreditReportDomain, raw, time.Now())
	require.NoError(t, err)
	cr := snap.CreditReport
	require.NotNil(t, cr)

	// Unparseable score and date degrade to zero values, never an error.
	assert.Equal(t, 0, cr.Score)
	assert.True(t, cr.ReportedAt.IsZero())

	require.Len(t, cr.Accounts, 2)
	assert.Equal(t, 2019, cr.Accounts[0].OpenedAt.Year())
	assert.Equal(t, time.March, cr.Accounts[0].OpenedAt.Month())
	assert.True(t, cr.Accounts[0].IsDelinquent)
	assert.Equal(t, 2019, cr.Accounts[1].OpenedAt.Year())
	assert.False(t, cr.Accounts[1].IsDelinquent)
}

func TestDecodeMfTransactions(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	raw := []byte(`{"transactions": [
		{"isin": "INF123", "schemeName": "Alpha Fund", "externalOrderType": "BUY",
		 "transactionDate": "2024-01-15",
		 "transactionAmount": {"currencyCode": "INR", "units": "10000"},
		 "transactionUnits": "412.35", "purchasePrice": "24.25"},
		{"isin": "INF123", "schemeName": "Alpha Fund", "externalOrderType": "REDEMPTION",
		 "transactionDate": "not-a-date",
		 "transactionAmount": {"currencyCode": "INR", "units": "2000"},
		 "transactionUnits": "bad", "purchasePrice": "26.10"}
	]}`)

	snap, err := Decode(MfTransactionsDomain, raw, now)
	require.NoError(t, err)
	mf := snap.MfTransactions
	require.NotNil(t, mf)
	require.Len(t, mf.Transactions, 2)

	first := mf.Transactions[0]
	assert.Equal(t, TxnBuy, first.Type)
	assert.Equal(t, 2024, first.Date.Year())
	assert.Equal(t, "412.35", first.Units.String())

	second := mf.Transactions[1]
	assert.Equal(t, TxnSell, second.Type)
	// Unparseable date falls back to now; unparseable units to zero.
	assert.True(t, second.Date.Equal(now))
	assert.True(t, second.Units.IsZero())
}

func TestDecodeMalformedBody(t *testing.T) {
	_, err := Decode(EpfDetailsDomain, []byte(`{"currentBalance": `), time.Now())
	assert.Error(t, err)
}

func TestDecodeUnknownDomain(t *testing.T) {
	_, err := Decode(Domain("equities"), []byte(`{}`), time.Now())
	assert.ErrorIs(t, err, ErrUnknownDomain)
}

func TestSchemeTransactionsGrouping(t *testing.T) {
	mf := MfTransactions{Transactions: []Transaction{
		{SchemeName: "Alpha"},
		{SchemeName: "Beta"},
		{SchemeName: "Alpha"},
	}}
	grouped := mf.SchemeTransactions()
	assert.Len(t, grouped, 2)
	assert.Len(t, grouped["Alpha"], 2)
	assert.Len(t, grouped["Beta"], 1)
}

func TestDomainEnum(t *testing.T) {
	assert.Len(t, All(), Count)
	for _, d := range All() {
		assert.True(t, d.Known())
	}
	assert.Equal(t, "/fetch_net_worth", NetWorthDomain.Endpoint())

	_, err := Parse("net_worth")
	assert.NoError(t, err)
	_, err = Parse("bonds")
	assert.ErrorIs(t, err, ErrUnknownDomain)
}

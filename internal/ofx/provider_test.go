package ofx

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LunNova/import-ynab/internal/model"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>1250.00
<FITID>2024012001
<NAME>PAYROLL
<MEMO>January salary
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>EUR
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func writeOFX(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestProvider_BankStatement(t *testing.T) {
	provider := NewProvider(writeOFX(t, "checking.ofx", sampleBankOFX))
	assert.Equal(t, "ofx:checking.ofx", provider.Name())

	accounts, err := provider.GetAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	account := accounts[0]
	assert.Equal(t, "1234567890", account.ID)
	assert.Equal(t, "USD", account.Currency)
	assert.Equal(t, model.TypeAccount, account.Type)
	assert.Equal(t, int64(1000000), account.Balance, "ledger balance scales into milli-units")

	transactions, err := provider.GetTransactions(context.Background(), account)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	coffee := transactions[0]
	assert.Equal(t, "2024011501", coffee.ID)
	assert.Equal(t, int64(-25500), coffee.Amount)
	assert.Equal(t, "STARBUCKS STORE #1234", coffee.PayeeName, "no PAYEE element falls back to NAME")
	assert.Equal(t, "STARBUCKS STORE #1234", coffee.Description)
	assert.Equal(t, 2024, coffee.Timestamp.Year())
	assert.Equal(t, time.January, coffee.Timestamp.Month())
	assert.Equal(t, 15, coffee.Timestamp.Day())

	salary := transactions[1]
	assert.Equal(t, int64(1250000), salary.Amount, "inflows keep their positive sign")
	assert.Equal(t, "January salary", salary.Description, "MEMO wins over NAME for the description")
	assert.Equal(t, "PAYROLL", salary.PayeeName)
}

func TestProvider_CreditCardStatement(t *testing.T) {
	provider := NewProvider(writeOFX(t, "card.qfx", sampleCreditCardOFX))

	accounts, err := provider.GetAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	account := accounts[0]
	assert.Equal(t, "4111111111111111", account.ID)
	assert.Equal(t, "EUR", account.Currency)
	assert.Equal(t, model.TypeCard, account.Type)
	assert.Equal(t, int64(-500000), account.Balance)

	transactions, err := provider.GetTransactions(context.Background(), account)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "CC2024011001", transactions[0].ID)
	assert.Equal(t, int64(-45990), transactions[0].Amount)
}

func TestProvider_UnknownAccountHasNoTransactions(t *testing.T) {
	provider := NewProvider(writeOFX(t, "checking.ofx", sampleBankOFX))

	transactions, err := provider.GetTransactions(context.Background(), model.Account{ID: "other"})
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestProvider_MissingFile(t *testing.T) {
	provider := NewProvider(filepath.Join(t.TempDir(), "missing.ofx"))
	_, err := provider.GetAccounts(context.Background())
	assert.Error(t, err)
}

func TestProvider_InvalidData(t *testing.T) {
	provider := NewProvider(writeOFX(t, "bad.ofx", "not valid OFX"))
	_, err := provider.GetAccounts(context.Background())
	assert.Error(t, err)
}

func TestPreprocessOFX(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "strips leading blank lines", input: "\n\nOFXHEADER:100", expected: "OFXHEADER:100"},
		{name: "uppercases severity", input: "<SEVERITY>Info</SEVERITY>", expected: "<SEVERITY>INFO</SEVERITY>"},
		{name: "closes truncated tags", input: "  <BANKTRANLIST\n", expected: "  <BANKTRANLIST>\n"},
		{name: "leaves well formed input alone", input: "<CODE>0", expected: "<CODE>0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, preprocessOFX(tt.input))
		})
	}
}

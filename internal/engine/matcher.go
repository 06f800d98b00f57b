package engine

import (
	"log/slog"
	"strings"

	"github.com/LunNova/import-ynab/internal/ynab"
)

// accountIDMarker is the binding convention: a ledger account opts into sync
// by embedding ACCOUNT_ID="<provider account id>" anywhere in its note.
// This free-text contract round-trips through YNAB's UI, so the parsing stays
// isolated here; callers only see the resulting map.
const accountIDMarker = `ACCOUNT_ID="`

// ExtractAccountID pulls the provider account id out of a ledger account
// note. The second return is false when the note carries no binding.
func ExtractAccountID(note string) (string, bool) {
	idx := strings.Index(note, accountIDMarker)
	if idx < 0 {
		return "", false
	}
	rest := note[idx+len(accountIDMarker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// BuildAccountIndex maps provider account ids to ledger accounts by scanning
// account notes for the binding marker. Accounts without a marker are not
// matched and stay invisible to the sync.
//
// No uniqueness is enforced: if two ledger accounts embed the same id, the
// later one wins. Duplicate bindings are a configuration error on the
// ledger side.
func BuildAccountIndex(accounts []ynab.Account) map[string]ynab.Account {
	index := make(map[string]ynab.Account)
	for _, account := range accounts {
		id, ok := ExtractAccountID(account.Note)
		if !ok {
			continue
		}
		if prev, dup := index[id]; dup {
			slog.Warn("Duplicate account binding, keeping the later account",
				"provider_account_id", id,
				"replaced", prev.Name,
				"kept", account.Name)
		}
		slog.Info("Found account binding",
			"provider_account_id", id,
			"ledger_account", account.Name)
		index[id] = account
	}
	return index
}

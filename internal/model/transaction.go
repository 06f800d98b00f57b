package model

import "time"

// Transaction is a provider transaction normalized for import into the ledger.
//
// Amount is in milli-units, signed; positive is an inflow. ID doubles as the
// ledger's import identifier, so it must be unique within one account's batch.
// PayeeName may transiently hold a provider account id for transfer-type
// transactions; the engine resolves those to ledger account ids before import.
type Transaction struct {
	ID          string
	Timestamp   time.Time
	Amount      int64
	Description string
	PayeeName   string
	Category    string
}

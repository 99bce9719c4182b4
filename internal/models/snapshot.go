package models

// Snapshot is the full portable state of a ledger: everything needed to
// reconstruct the store on another device. It is the unit of export, import
// and backup; applying one is an overwrite, never a merge.
type Snapshot struct {
	Transactions  []Transaction `json:"transactions"`
	Users         []User        `json:"users"`
	GlobalUsdRate float64       `json:"globalUsdRate"`
}

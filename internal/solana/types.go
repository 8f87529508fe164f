package solana

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// EnhancedTransaction is one record of the parsed transaction feed.
// Records arrive newest first.
type EnhancedTransaction struct {
	Signature       string           `json:"signature"`
	Slot            uint64           `json:"slot"`
	Timestamp       int64            `json:"timestamp"` // Unix seconds
	NativeTransfers []NativeTransfer `json:"nativeTransfers"`
}

// NativeTransfer is one elementary SOL movement inside a transaction.
type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Amount          int64  `json:"amount"` // lamports
}

// TransfersOpts defines pagination parameters for the transfer feed.
type TransfersOpts struct {
	Before string // Start searching backwards from this signature
	Limit  int    // Maximum number of records to return
}

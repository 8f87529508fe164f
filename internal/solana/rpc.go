package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface used to read battle accounts.
type RPCClient interface {
	// GetAccountInfo retrieves account info by public key. A nil result with
	// a nil error means the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

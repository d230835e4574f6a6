package types

// Transaction represents a confirmed blockchain transaction reference.
//
// Fields:
// - Hash: the hash or digest of the transaction.
// - From: the address from which the transaction is sent.
// - To: the contract or object the transaction targeted.
// - Nonce: the nonce of the transaction (EVM only).
// - ChainID: the unique identifier for the chain where the transaction occurred.
// - OrderHash: the swap order the transaction belongs to.
type Transaction struct {
	Hash      string
	From      string
	To        string
	Nonce     uint64
	ChainID   uint64
	OrderHash string
}

// DeployResult is the outcome of a confirmed escrow deployment.
//
// Fields:
// - Tx: the confirmed deployment transaction.
// - Escrow: the escrow contract address (EVM) or created object id (SUI).
// - DeployedAt: the unix timestamp of the block or checkpoint that included the deployment.
type DeployResult struct {
	Tx         *Transaction
	Escrow     string
	DeployedAt uint64
}

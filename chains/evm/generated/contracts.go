// Package generated holds the ABI definitions of the on-chain escrow
// contracts the relay calls into. The contracts themselves are external,
// immutable state machines; only their call surface is mirrored here.
package generated

// EscrowFactoryABI is the call surface of the escrow factory contract.
// deploySrc locks the maker's funds behind the source escrow using the
// maker's order signature; deployDst locks the resolver's funds behind the
// destination escrow. Both emit a creation event carrying the escrow address.
const EscrowFactoryABI = `[
  {
    "type": "function",
    "name": "deploySrc",
    "stateMutability": "payable",
    "inputs": [
      {
        "name": "immutables",
        "type": "tuple",
        "components": [
          {"name": "orderHash", "type": "bytes32"},
          {"name": "hashlock", "type": "bytes32"},
          {"name": "maker", "type": "address"},
          {"name": "taker", "type": "address"},
          {"name": "token", "type": "address"},
          {"name": "amount", "type": "uint256"},
          {"name": "safetyDeposit", "type": "uint256"},
          {"name": "timelocks", "type": "uint256"}
        ]
      },
      {"name": "signature", "type": "bytes"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "deployDst",
    "stateMutability": "payable",
    "inputs": [
      {
        "name": "immutables",
        "type": "tuple",
        "components": [
          {"name": "orderHash", "type": "bytes32"},
          {"name": "hashlock", "type": "bytes32"},
          {"name": "maker", "type": "address"},
          {"name": "taker", "type": "address"},
          {"name": "token", "type": "address"},
          {"name": "amount", "type": "uint256"},
          {"name": "safetyDeposit", "type": "uint256"},
          {"name": "timelocks", "type": "uint256"}
        ]
      }
    ],
    "outputs": []
  },
  {
    "type": "event",
    "name": "SrcEscrowCreated",
    "inputs": [
      {"name": "escrow", "type": "address", "indexed": false},
      {"name": "orderHash", "type": "bytes32", "indexed": true}
    ],
    "anonymous": false
  },
  {
    "type": "event",
    "name": "DstEscrowCreated",
    "inputs": [
      {"name": "escrow", "type": "address", "indexed": false},
      {"name": "orderHash", "type": "bytes32", "indexed": true}
    ],
    "anonymous": false
  }
]`

// EscrowABI is the call surface shared by deployed source and destination
// escrows. The contract re-verifies the secret against the hash lock and the
// current time against the window boundaries on every call.
const EscrowABI = `[
  {
    "type": "function",
    "name": "withdraw",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "secret", "type": "bytes32"},
      {
        "name": "immutables",
        "type": "tuple",
        "components": [
          {"name": "orderHash", "type": "bytes32"},
          {"name": "hashlock", "type": "bytes32"},
          {"name": "maker", "type": "address"},
          {"name": "taker", "type": "address"},
          {"name": "token", "type": "address"},
          {"name": "amount", "type": "uint256"},
          {"name": "safetyDeposit", "type": "uint256"},
          {"name": "timelocks", "type": "uint256"}
        ]
      }
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "publicWithdraw",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "secret", "type": "bytes32"},
      {
        "name": "immutables",
        "type": "tuple",
        "components": [
          {"name": "orderHash", "type": "bytes32"},
          {"name": "hashlock", "type": "bytes32"},
          {"name": "maker", "type": "address"},
          {"name": "taker", "type": "address"},
          {"name": "token", "type": "address"},
          {"name": "amount", "type": "uint256"},
          {"name": "safetyDeposit", "type": "uint256"},
          {"name": "timelocks", "type": "uint256"}
        ]
      }
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "cancel",
    "stateMutability": "nonpayable",
    "inputs": [
      {
        "name": "immutables",
        "type": "tuple",
        "components": [
          {"name": "orderHash", "type": "bytes32"},
          {"name": "hashlock", "type": "bytes32"},
          {"name": "maker", "type": "address"},
          {"name": "taker", "type": "address"},
          {"name": "token", "type": "address"},
          {"name": "amount", "type": "uint256"},
          {"name": "safetyDeposit", "type": "uint256"},
          {"name": "timelocks", "type": "uint256"}
        ]
      }
    ],
    "outputs": []
  }
]`

// ERC20ABI is the minimal token surface the relay needs.
const ERC20ABI = `[
  {
    "type": "function",
    "name": "balanceOf",
    "stateMutability": "view",
    "inputs": [{"name": "account", "type": "address"}],
    "outputs": [{"name": "", "type": "uint256"}]
  },
  {
    "type": "function",
    "name": "transfer",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "to", "type": "address"},
      {"name": "amount", "type": "uint256"}
    ],
    "outputs": [{"name": "", "type": "bool"}]
  },
  {
    "type": "function",
    "name": "approve",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "spender", "type": "address"},
      {"name": "amount", "type": "uint256"}
    ],
    "outputs": [{"name": "", "type": "bool"}]
  }
]`

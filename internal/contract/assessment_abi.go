package contract

// BuiltinAssessment is the ID of the ATM contract built-in. It is used when
// no compiled artifact is available.
const BuiltinAssessment = "assessment"

// Assessment is the ATM contract: an owner-held balance with deposit,
// withdraw and Ownable-style ownership transfer.
//
// Function selectors:
//
//	getBalance()                → 0x12065fe0
//	deposit(uint256)            → 0xb6b55f25
//	withdraw(uint256)           → 0x2e1a7d4d
//	owner()                     → 0x8da5cb5b
//	transferOwnership(address)  → 0xf2fde38b
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:   BuiltinAssessment,
		Name: "Assessment (ATM)",
		ABI:  assessmentABI,
	})
}

var assessmentABI = []ABIEntry{
	{
		Type:            "constructor",
		Inputs:          []ABIParam{{Name: "initBalance", Type: "uint256"}},
		StateMutability: "payable",
	},
	// ── read ─────────────────────────────────────────────────────────────────
	{
		Name: "getBalance", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "owner", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "address"}},
		StateMutability: "view",
	},
	// ── write ────────────────────────────────────────────────────────────────
	{
		Name: "deposit", Type: "function",
		Inputs:          []ABIParam{{Name: "_amount", Type: "uint256"}},
		StateMutability: "payable",
	},
	{
		Name: "withdraw", Type: "function",
		Inputs:          []ABIParam{{Name: "_withdrawAmount", Type: "uint256"}},
		StateMutability: "nonpayable",
	},
	{
		Name: "transferOwnership", Type: "function",
		Inputs:          []ABIParam{{Name: "newOwner", Type: "address"}},
		StateMutability: "nonpayable",
	},
	// ── events ───────────────────────────────────────────────────────────────
	{
		Name: "Deposit", Type: "event",
		Inputs: []ABIParam{{Name: "amount", Type: "uint256"}},
	},
	{
		Name: "Withdraw", Type: "event",
		Inputs: []ABIParam{{Name: "amount", Type: "uint256"}},
	},
	{
		Name: "OwnershipTransferred", Type: "event",
		Inputs: []ABIParam{
			{Name: "previousOwner", Type: "address", Indexed: true},
			{Name: "newOwner", Type: "address", Indexed: true},
		},
	},
	// ── errors ───────────────────────────────────────────────────────────────
	{
		Name: "InsufficientBalance", Type: "error",
		Inputs: []ABIParam{{Name: "balance", Type: "uint256"}, {Name: "withdrawAmount", Type: "uint256"}},
	},
}

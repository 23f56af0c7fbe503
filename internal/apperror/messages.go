package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General
	CodeInvalidInput:       "Invalid input provided",
	CodeConfigurationError: "Configuration error",
	CodeInternalError:      "Internal error",
	CodeUnknownError:       "An unknown error occurred",

	// Amounts
	CodeInvalidNumericFormat: "Amount is not a valid decimal number",
	CodePrecisionLoss:        "Amount has more decimal places than the chain supports",
	CodeNegativeAmount:       "Token amounts cannot be negative",
	CodeInvalidExponent:      "Unsupported decimal exponent",
	CodeAmountOverflow:       "Amount does not fit the on-chain integer width",
	CodeInvalidAssetID:       "Invalid asset identifier",

	// Swap quoting
	CodePairNotEnabled:        "Trading pair is not enabled",
	CodeInvalidPair:           "Invalid trading pair",
	CodePoolNotFound:          "No pool snapshot for trading pair",
	CodeNoLiquidity:           "Pool has no liquidity",
	CodeInsufficientLiquidity: "Insufficient liquidity for trade size",
	CodeTargetExceedsReserve:  "Requested amount meets or exceeds the pool reserve",
	CodeZeroFeeDenominator:    "Fee rate denominator is zero",
	CodeInvalidFeeRate:        "Fee rate numerator must be below its denominator",
	CodeNegativeResult:        "Computation produced a negative amount",
	CodeInvalidTolerance:      "Slippage tolerance must be between 0 and 10000 basis points",

	// Snapshots
	CodeInvalidSnapshot: "Malformed pool snapshot",
	CodeStaleSnapshot:   "Pool snapshot is stale",
}

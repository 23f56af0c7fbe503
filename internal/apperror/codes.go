package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Amount and unit conversion codes
const (
	CodeInvalidNumericFormat Code = "INVALID_NUMERIC_FORMAT"
	CodePrecisionLoss        Code = "PRECISION_LOSS"
	CodeNegativeAmount       Code = "NEGATIVE_AMOUNT"
	CodeInvalidExponent      Code = "INVALID_EXPONENT"
	CodeAmountOverflow       Code = "AMOUNT_OVERFLOW"
	CodeInvalidAssetID       Code = "INVALID_ASSET_ID"
)

// Swap quoting codes
const (
	CodePairNotEnabled        Code = "PAIR_NOT_ENABLED"
	CodeInvalidPair           Code = "INVALID_PAIR"
	CodePoolNotFound          Code = "POOL_NOT_FOUND"
	CodeNoLiquidity           Code = "NO_LIQUIDITY"
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodeTargetExceedsReserve  Code = "TARGET_EXCEEDS_RESERVE"
	CodeZeroFeeDenominator    Code = "ZERO_FEE_DENOMINATOR"
	CodeInvalidFeeRate        Code = "INVALID_FEE_RATE"
	CodeNegativeResult        Code = "NEGATIVE_RESULT"
	CodeInvalidTolerance      Code = "INVALID_TOLERANCE"
)

// Snapshot feed codes
const (
	CodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	CodeStaleSnapshot   Code = "STALE_SNAPSHOT"
)

// Kind groups codes by how a caller is expected to react.
type Kind string

const (
	// KindInput means the caller should correct the input and try again.
	KindInput Kind = "input"
	// KindMarket is a terminal, user-visible market condition.
	KindMarket Kind = "market"
	// KindInvariant signals a broken upstream assumption. Fatal for the call.
	KindInvariant Kind = "invariant"
	// KindSystem covers configuration and infrastructure failures.
	KindSystem Kind = "system"
)

var kinds = map[Code]Kind{
	CodeInvalidInput:          KindInput,
	CodeInvalidNumericFormat:  KindInput,
	CodePrecisionLoss:         KindInput,
	CodeNegativeAmount:        KindInput,
	CodeInvalidAssetID:        KindInput,
	CodeInvalidPair:           KindInput,
	CodePairNotEnabled:        KindInput,
	CodeInvalidTolerance:      KindInput,
	CodeAmountOverflow:        KindInput,
	CodeNoLiquidity:           KindMarket,
	CodePoolNotFound:          KindMarket,
	CodeInsufficientLiquidity: KindMarket,
	CodeTargetExceedsReserve:  KindMarket,
	CodeStaleSnapshot:         KindMarket,
	CodeZeroFeeDenominator:    KindInvariant,
	CodeInvalidFeeRate:        KindInvariant,
	CodeNegativeResult:        KindInvariant,
	CodeInvalidExponent:       KindInvariant,
	CodeInvalidSnapshot:       KindInvariant,
	CodeConfigurationError:    KindSystem,
	CodeInternalError:         KindSystem,
	CodeUnknownError:          KindSystem,
}

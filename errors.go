package vesting

import (
	"errors"
	"fmt"
)

// Code is the numeric verification result reported to the host.
// The values are part of the host contract and must never be
// renumbered.
type Code int8

// CodeOK is the success code.
const CodeOK Code = 0

// Ledger access failures.
const (
	CodeIndexOutOfBound Code = 1
	CodeItemMissing     Code = 2
	CodeLengthNotEnough Code = 3
	CodeInvalidData     Code = 4
)

// Structural and accounting failures.
const (
	CodeInvalidArgs                    Code = 10
	CodeInvalidWitness                 Code = 11
	CodeInvalidTransaction             Code = 12
	CodeInvalidTransactionStructure    Code = 13
	CodeTotalAmountChanged             Code = 14
	CodeInvalidBeneficiaryClaimedDelta Code = 15
	CodeInvalidCreatorClaimedDelta     Code = 16
	CodeInvalidStateChange             Code = 17
)

// Schedule, authorization and temporal failures.
const (
	CodeInvalidAmount       Code = 20
	CodeInsufficientVested  Code = 21
	CodeAlreadyTerminated   Code = 22
	CodeInvalidEpoch        Code = 23
	CodeStaleHeader         Code = 24
	CodeUnauthorized        Code = 25
	CodeBlockNumberDecrease Code = 26
	CodeBlockNumberMismatch Code = 27
)

// Cell data and transaction shape failures.
const (
	CodeInvalidCellData                      Code = 30
	CodeLoadCellDataFailed                   Code = 31
	CodeWrongDataLength                      Code = 32
	CodeNoMatchingInputCell                  Code = 33
	CodeNoMatchingOutputCell                 Code = 34
	CodeNoHeaderDependencies                 Code = 35
	CodeMultipleInputsNotAllowed             Code = 36
	CodeCreatorOperationMissingOutput        Code = 37
	CodeAnonymousUpdateMissingOutput         Code = 38
	CodeInputDataWrongLength                 Code = 39
	CodeOutputDataWrongLength                Code = 40
	CodeCreatorFullTerminationHasOutput      Code = 41
	CodeBeneficiaryFullClaimHasOutput        Code = 42
	CodeBeneficiaryPartialClaimMissingOutput Code = 43
	CodeNothingToTerminate                   Code = 44
)

var codeNames = map[Code]string{
	CodeOK:                                   "OK",
	CodeIndexOutOfBound:                      "IndexOutOfBound",
	CodeItemMissing:                          "ItemMissing",
	CodeLengthNotEnough:                      "LengthNotEnough",
	CodeInvalidData:                          "InvalidData",
	CodeInvalidArgs:                          "InvalidArgs",
	CodeInvalidWitness:                       "InvalidWitness",
	CodeInvalidTransaction:                   "InvalidTransaction",
	CodeInvalidTransactionStructure:          "InvalidTransactionStructure",
	CodeTotalAmountChanged:                   "TotalAmountChanged",
	CodeInvalidBeneficiaryClaimedDelta:       "InvalidBeneficiaryClaimedDelta",
	CodeInvalidCreatorClaimedDelta:           "InvalidCreatorClaimedDelta",
	CodeInvalidStateChange:                   "InvalidStateChange",
	CodeInvalidAmount:                        "InvalidAmount",
	CodeInsufficientVested:                   "InsufficientVested",
	CodeAlreadyTerminated:                    "AlreadyTerminated",
	CodeInvalidEpoch:                         "InvalidEpoch",
	CodeStaleHeader:                          "StaleHeader",
	CodeUnauthorized:                         "Unauthorized",
	CodeBlockNumberDecrease:                  "BlockNumberDecrease",
	CodeBlockNumberMismatch:                  "BlockNumberMismatch",
	CodeInvalidCellData:                      "InvalidCellData",
	CodeLoadCellDataFailed:                   "LoadCellDataFailed",
	CodeWrongDataLength:                      "WrongDataLength",
	CodeNoMatchingInputCell:                  "NoMatchingInputCell",
	CodeNoMatchingOutputCell:                 "NoMatchingOutputCell",
	CodeNoHeaderDependencies:                 "NoHeaderDependencies",
	CodeMultipleInputsNotAllowed:             "MultipleInputsNotAllowed",
	CodeCreatorOperationMissingOutput:        "CreatorOperationMissingOutput",
	CodeAnonymousUpdateMissingOutput:         "AnonymousUpdateMissingOutput",
	CodeInputDataWrongLength:                 "InputDataWrongLength",
	CodeOutputDataWrongLength:                "OutputDataWrongLength",
	CodeCreatorFullTerminationHasOutput:      "CreatorFullTerminationHasOutput",
	CodeBeneficiaryFullClaimHasOutput:        "BeneficiaryFullClaimHasOutput",
	CodeBeneficiaryPartialClaimMissingOutput: "BeneficiaryPartialClaimMissingOutput",
	CodeNothingToTerminate:                   "NothingToTerminate",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int8(c))
}

// Codes returns every defined code in ascending numeric order,
// including CodeOK.
func Codes() []Code {
	codes := make([]Code, 0, len(codeNames))
	for c := Code(0); c <= CodeNothingToTerminate; c++ {
		if _, ok := codeNames[c]; ok {
			codes = append(codes, c)
		}
	}
	return codes
}

// ParseCode returns the code with the given name.
func ParseCode(name string) (Code, error) {
	for c, n := range codeNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown result code %q", name)
}

// RuleError identifies a rule violation found while verifying a
// vesting transition. Every RuleError carries exactly one Code.
// Call sites add context with github.com/pkg/errors; use CodeOf
// to recover the code from a wrapped error.
type RuleError struct {
	code  Code
	inner error
}

// Error returns the code name, followed by the inner error if any.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.code.String() + ": " + e.inner.Error()
	}
	return e.code.String()
}

// Unwrap returns the inner error, or nil.
func (e RuleError) Unwrap() error {
	return e.inner
}

// Code returns the numeric result code of the violation.
func (e RuleError) Code() Code {
	return e.code
}

func newRuleError(code Code) RuleError {
	return RuleError{code: code}
}

// These values identify a specific RuleError. Compare with errors.Is.
var (
	ErrIndexOutOfBound = newRuleError(CodeIndexOutOfBound)
	ErrItemMissing     = newRuleError(CodeItemMissing)
	ErrLengthNotEnough = newRuleError(CodeLengthNotEnough)
	ErrInvalidData     = newRuleError(CodeInvalidData)

	ErrInvalidArgs                    = newRuleError(CodeInvalidArgs)
	ErrInvalidWitness                 = newRuleError(CodeInvalidWitness)
	ErrInvalidTransaction             = newRuleError(CodeInvalidTransaction)
	ErrInvalidTransactionStructure    = newRuleError(CodeInvalidTransactionStructure)
	ErrTotalAmountChanged             = newRuleError(CodeTotalAmountChanged)
	ErrInvalidBeneficiaryClaimedDelta = newRuleError(CodeInvalidBeneficiaryClaimedDelta)
	ErrInvalidCreatorClaimedDelta     = newRuleError(CodeInvalidCreatorClaimedDelta)
	ErrInvalidStateChange             = newRuleError(CodeInvalidStateChange)

	ErrInvalidAmount       = newRuleError(CodeInvalidAmount)
	ErrInsufficientVested  = newRuleError(CodeInsufficientVested)
	ErrAlreadyTerminated   = newRuleError(CodeAlreadyTerminated)
	ErrInvalidEpoch        = newRuleError(CodeInvalidEpoch)
	ErrStaleHeader         = newRuleError(CodeStaleHeader)
	ErrUnauthorized        = newRuleError(CodeUnauthorized)
	ErrBlockNumberDecrease = newRuleError(CodeBlockNumberDecrease)
	ErrBlockNumberMismatch = newRuleError(CodeBlockNumberMismatch)

	ErrInvalidCellData                      = newRuleError(CodeInvalidCellData)
	ErrLoadCellDataFailed                   = newRuleError(CodeLoadCellDataFailed)
	ErrWrongDataLength                      = newRuleError(CodeWrongDataLength)
	ErrNoMatchingInputCell                  = newRuleError(CodeNoMatchingInputCell)
	ErrNoMatchingOutputCell                 = newRuleError(CodeNoMatchingOutputCell)
	ErrNoHeaderDependencies                 = newRuleError(CodeNoHeaderDependencies)
	ErrMultipleInputsNotAllowed             = newRuleError(CodeMultipleInputsNotAllowed)
	ErrCreatorOperationMissingOutput        = newRuleError(CodeCreatorOperationMissingOutput)
	ErrAnonymousUpdateMissingOutput         = newRuleError(CodeAnonymousUpdateMissingOutput)
	ErrInputDataWrongLength                 = newRuleError(CodeInputDataWrongLength)
	ErrOutputDataWrongLength                = newRuleError(CodeOutputDataWrongLength)
	ErrCreatorFullTerminationHasOutput      = newRuleError(CodeCreatorFullTerminationHasOutput)
	ErrBeneficiaryFullClaimHasOutput        = newRuleError(CodeBeneficiaryFullClaimHasOutput)
	ErrBeneficiaryPartialClaimMissingOutput = newRuleError(CodeBeneficiaryPartialClaimMissingOutput)
	ErrNothingToTerminate                   = newRuleError(CodeNothingToTerminate)
)

// CodeOf maps err to its result code. A nil error is CodeOK; an
// error that does not wrap a RuleError is CodeInvalidData.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var re RuleError
	if errors.As(err, &re) {
		return re.code
	}
	return CodeInvalidData
}

// HaltError signals that the verifier detected an irrecoverable
// inconsistency in what the engine delivered and requests an
// immediate chain halt.
//
// When the engine receives a HaltError from ExecuteBlock, it must
// stop consensus, log the error, and not proceed to Commit.
type HaltError struct {
	Reason string
	Height uint64
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("HALT at height %d: %s", e.Height, e.Reason)
}

// NewHaltError creates a new HaltError.
func NewHaltError(height uint64, reason string) *HaltError {
	return &HaltError{Height: height, Reason: reason}
}

// IsHalt checks whether an error is a HaltError and returns it.
func IsHalt(err error) (*HaltError, bool) {
	var h *HaltError
	if errors.As(err, &h) {
		return h, true
	}
	return nil, false
}

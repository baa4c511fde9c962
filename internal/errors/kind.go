package errors

import "errors"

// Kind classifies an error for reporting and process exit codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindPrecondition
	KindCapability
	KindParse
	KindDecryption
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindCapability:
		return "capability"
	case KindParse:
		return "parse"
	case KindDecryption:
		return "decryption"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrNotMember, KindPrecondition},
	{ErrEmptyName, KindPrecondition},
	{ErrEmptyPayload, KindPrecondition},
	{ErrPayloadTooLarge, KindPrecondition},
	{ErrMissingArgument, KindPrecondition},
	{ErrInvalidArgument, KindPrecondition},
	{ErrConfirmationRequired, KindPrecondition},
	{ErrInvalidConfig, KindPrecondition},
	{ErrPassphraseRequired, KindPrecondition},
	{ErrPublicKeyOnly, KindCapability},
	{ErrParse, KindParse},
	{ErrFormat, KindParse},
	{ErrUnsupportedKey, KindParse},
	{ErrDecrypt, KindDecryption},
	{ErrIO, KindIO},
}

// KindOf returns the kind of the first known sentinel found in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

// ExitCode maps err to a process exit code. A nil error exits 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindPrecondition:
		return 2
	case KindCapability:
		return 3
	case KindParse:
		return 4
	case KindDecryption:
		return 5
	case KindIO:
		return 6
	default:
		return 1
	}
}

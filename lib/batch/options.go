package batch

import (
	"strconv"
	"time"
)

// --------------------------------------------------------------------------
// Scan Options
// --------------------------------------------------------------------------

// ObjectType is the type name of a stored value as reported by TYPE.
type ObjectType string

const (
	ObjectTypeString ObjectType = "string"
	ObjectTypeList   ObjectType = "list"
	ObjectTypeNone   ObjectType = "none"
)

// ScanOptions are the optional arguments of SCAN.
type ScanOptions struct {
	// Glob-style pattern keys have to match. Empty means every key.
	Match string
	// Hint for the number of keys returned per call. Zero leaves the server default.
	Count int64
	// Only return keys holding a value of this type.
	Type ObjectType
}

func NewScanOptions() *ScanOptions {
	return &ScanOptions{}
}

func (opts *ScanOptions) SetMatch(pattern string) *ScanOptions {
	opts.Match = pattern
	return opts
}

func (opts *ScanOptions) SetCount(count int64) *ScanOptions {
	opts.Count = count
	return opts
}

func (opts *ScanOptions) SetType(objectType ObjectType) *ScanOptions {
	opts.Type = objectType
	return opts
}

// ToArgs converts the options to their argument tokens, in the order MATCH, COUNT, TYPE.
func (opts *ScanOptions) ToArgs() ([]string, error) {
	args := []string{}
	if opts == nil {
		return args, nil
	}
	if opts.Match != "" {
		args = append(args, MatchKeyword, opts.Match)
	}
	if opts.Count < 0 {
		return nil, NewErrorf(ErrCInvalidArgumentType, "scan count must not be negative, got %d", opts.Count)
	}
	if opts.Count > 0 {
		args = append(args, CountKeyword, strconv.FormatInt(opts.Count, 10))
	}
	switch opts.Type {
	case "":
	case ObjectTypeString, ObjectTypeList:
		args = append(args, TypeKeyword, string(opts.Type))
	default:
		return nil, NewErrorf(ErrCInvalidArgumentType, "unsupported scan type %q", opts.Type)
	}
	return args, nil
}

// --------------------------------------------------------------------------
// Expiry
// --------------------------------------------------------------------------

// ExpiryType is the protocol token of an expiry.
type ExpiryType string

const (
	Seconds          ExpiryType = "EX"      // expire after a number of seconds
	Milliseconds     ExpiryType = "PX"      // expire after a number of milliseconds
	UnixSeconds      ExpiryType = "EXAT"    // expire at a unix timestamp (seconds)
	UnixMilliseconds ExpiryType = "PXAT"    // expire at a unix timestamp (milliseconds)
	KeepExisting     ExpiryType = "KEEPTTL" // keep the time to live of the old value
)

// Expiry configures the lifetime of a value written by SET.
type Expiry struct {
	Type      ExpiryType
	Duration  uint64
	Timestamp time.Time
}

// NewExpiryIn creates an expiry relative to now.
// Whole seconds use EX, anything finer uses PX.
func NewExpiryIn(d time.Duration) *Expiry {
	if d%time.Second == 0 {
		return &Expiry{Type: Seconds, Duration: uint64(d / time.Second)}
	}
	return &Expiry{Type: Milliseconds, Duration: uint64(d / time.Millisecond)}
}

// NewExpiryAt creates an expiry at an absolute point in time.
func NewExpiryAt(t time.Time) *Expiry {
	return &Expiry{Type: UnixMilliseconds, Timestamp: t}
}

// NewExpiryKeepExisting keeps the time to live of the replaced value.
func NewExpiryKeepExisting() *Expiry {
	return &Expiry{Type: KeepExisting}
}

// time returns the numeric argument of the expiry in the unit its type implies.
func (ex *Expiry) time() uint64 {
	switch ex.Type {
	case UnixSeconds:
		return uint64(ex.Timestamp.Unix())
	case UnixMilliseconds:
		return uint64(ex.Timestamp.UnixMilli())
	default:
		return ex.Duration
	}
}

// --------------------------------------------------------------------------
// Set Options
// --------------------------------------------------------------------------

// ConditionalSet is the write condition of SET.
type ConditionalSet string

const (
	SetAlways        ConditionalSet = ""
	SetIfExists      ConditionalSet = OnlyIfExists
	SetIfNotExists   ConditionalSet = OnlyIfNotExists
	SetIfValueEquals ConditionalSet = OnlyIfEquals
)

// SetOptions are the optional arguments of SET.
type SetOptions struct {
	// Write condition. SetAlways writes regardless of an existing value.
	ConditionalSet ConditionalSet
	// Compared with the current value when ConditionalSet is SetIfValueEquals.
	ComparisonValue string
	// Return the old value instead of OK.
	ReturnOldValue bool
	// Lifetime of the value. nil means no expiry.
	Expiry *Expiry
}

func NewSetOptions() *SetOptions {
	return &SetOptions{}
}

// SetOnlyIfExists overrides any previous condition.
func (opts *SetOptions) SetOnlyIfExists() *SetOptions {
	opts.ConditionalSet = SetIfExists
	opts.ComparisonValue = ""
	return opts
}

// SetOnlyIfDoesNotExist overrides any previous condition.
func (opts *SetOptions) SetOnlyIfDoesNotExist() *SetOptions {
	opts.ConditionalSet = SetIfNotExists
	opts.ComparisonValue = ""
	return opts
}

// SetOnlyIfEquals overrides any previous condition.
func (opts *SetOptions) SetOnlyIfEquals(comparisonValue string) *SetOptions {
	opts.ConditionalSet = SetIfValueEquals
	opts.ComparisonValue = comparisonValue
	return opts
}

func (opts *SetOptions) SetReturnOldValue(returnOldValue bool) *SetOptions {
	opts.ReturnOldValue = returnOldValue
	return opts
}

func (opts *SetOptions) SetExpiry(expiry *Expiry) *SetOptions {
	opts.Expiry = expiry
	return opts
}

// ToArgs converts the options to their argument tokens: condition, GET, expiry.
func (opts *SetOptions) ToArgs() ([]string, error) {
	args := []string{}
	if opts == nil {
		return args, nil
	}

	switch opts.ConditionalSet {
	case SetAlways:
	case SetIfExists, SetIfNotExists:
		args = append(args, string(opts.ConditionalSet))
	case SetIfValueEquals:
		args = append(args, string(opts.ConditionalSet), opts.ComparisonValue)
	default:
		return nil, NewErrorf(ErrCInvalidArgumentType, "invalid set condition %q", opts.ConditionalSet)
	}

	if opts.ReturnOldValue {
		args = append(args, ReturnOldValue)
	}

	if opts.Expiry != nil {
		switch opts.Expiry.Type {
		case Seconds, Milliseconds, UnixSeconds, UnixMilliseconds:
			args = append(args, string(opts.Expiry.Type), strconv.FormatUint(opts.Expiry.time(), 10))
		case KeepExisting:
			args = append(args, string(opts.Expiry.Type))
		default:
			return nil, NewErrorf(ErrCInvalidArgumentType, "invalid expiry type %q", opts.Expiry.Type)
		}
	}

	return args, nil
}

// --------------------------------------------------------------------------
// Copy Options
// --------------------------------------------------------------------------

// CopyOptions are the optional arguments of COPY.
type CopyOptions struct {
	// Remove the destination key before copying.
	Replace bool
	// Destination database. Negative means the selected database.
	DbDestination int64
}

func NewCopyOptions() *CopyOptions {
	return &CopyOptions{DbDestination: -1}
}

func (opts *CopyOptions) SetReplace() *CopyOptions {
	opts.Replace = true
	return opts
}

func (opts *CopyOptions) SetDBDestination(destinationDB int64) *CopyOptions {
	opts.DbDestination = destinationDB
	return opts
}

// ToArgs converts the options to their argument tokens: DB n, then REPLACE.
func (opts *CopyOptions) ToArgs() ([]string, error) {
	args := []string{}
	if opts == nil {
		return args, nil
	}
	if opts.DbDestination >= 0 {
		args = append(args, DBKeyword, strconv.FormatInt(opts.DbDestination, 10))
	}
	if opts.Replace {
		args = append(args, ReplaceKeyword)
	}
	return args, nil
}

package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNotFound aborts a whole pipeline run: there is no point fetching
// data for an instrument that cannot be identified.
var ErrNotFound = errors.New("resolver: instrument not found")

// Full exchange-qualified code, e.g. 600519.SH.
var tsCodePattern = regexp.MustCompile(`^\d{6}\.(SH|SZ|BJ)$`)

// Bare six-digit symbol.
var bareSymbolPattern = regexp.MustCompile(`^\d{6}$`)

// Instrument is a resolved tradable security.
type Instrument struct {
	Code     string // exchange-qualified, e.g. 600519.SH
	Symbol   string // bare symbol, e.g. 600519
	Name     string
	Industry string
	Area     string
}

// NameResolver is the external lookup used when the input is not a code.
// Implementations may hit the provider's instrument directory.
type NameResolver interface {
	ResolveName(ctx context.Context, keyword string) (*Instrument, error)
}

// Resolver turns user input into an Instrument. Inputs matching the code
// patterns bypass the name lookup entirely.
type Resolver struct {
	names NameResolver
	log   zerolog.Logger
}

// New creates a resolver over the given name-lookup collaborator.
func New(names NameResolver, log zerolog.Logger) *Resolver {
	return &Resolver{
		names: names,
		log:   log.With().Str("component", "resolver").Logger(),
	}
}

// GuessCode tries the exact-code fast paths: a full exchange-qualified
// code passes through; a bare six-digit symbol gets its exchange inferred
// from the symbol prefix.
func GuessCode(input string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(input))
	if tsCodePattern.MatchString(t) {
		return t, true
	}
	if !bareSymbolPattern.MatchString(t) {
		return "", false
	}
	switch {
	case hasPrefix(t, "600", "601", "603", "605", "688"):
		return t + ".SH", true
	case hasPrefix(t, "000", "001", "002", "003", "300", "301"):
		return t + ".SZ", true
	case hasPrefix(t, "430", "83", "87", "88"):
		return t + ".BJ", true
	}
	return "", false
}

func hasPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Resolve identifies the instrument for input. The fast path never calls
// the name resolver; otherwise a failed or empty lookup is ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, input string) (*Instrument, error) {
	if code, ok := GuessCode(input); ok {
		return &Instrument{
			Code:   code,
			Symbol: strings.SplitN(code, ".", 2)[0],
			Name:   strings.TrimSpace(input),
		}, nil
	}

	inst, err := r.names.ResolveName(ctx, input)
	if err != nil {
		r.log.Warn().Str("input", input).Err(err).Msg("name resolution failed")
		return nil, fmt.Errorf("%w: %q", ErrNotFound, input)
	}
	if inst == nil || inst.Code == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, input)
	}
	if inst.Symbol == "" {
		inst.Symbol = strings.SplitN(inst.Code, ".", 2)[0]
	}
	return inst, nil
}

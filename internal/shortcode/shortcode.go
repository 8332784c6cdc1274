// Package shortcode generates random short codes, validates user supplied
// custom codes and claims either kind through the store's atomic insert.
package shortcode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the set of symbols generated codes are drawn from.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	DefaultLength      = 6
	DefaultMaxAttempts = 5

	MinCustomLength = 3
	MaxCustomLength = 20
)

// reservedWords collide with top level routes and can never be custom codes.
var reservedWords = map[string]struct{}{
	"api":       {},
	"health":    {},
	"shorten":   {},
	"info":      {},
	"analytics": {},
	"cache":     {},
	"qrcode":    {},
	"metrics":   {},
	"swagger":   {},
	"docs":      {},
}

// Claimer is the store primitive used to claim a code. Create must be a
// single conditional insert returning entity.ErrShortCodeExists when the
// code is already taken.
type Claimer interface {
	Create(ctx context.Context, url *entity.URL) (*entity.URL, error)
}

// Generator produces and reserves short codes.
type Generator struct {
	length      int
	maxAttempts int
	validate    *validator.Validate
}

// New creates a Generator. Non-positive arguments fall back to the defaults.
func New(length, maxAttempts int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Generator{
		length:      length,
		maxAttempts: maxAttempts,
		validate:    validator.New(),
	}
}

// MaxAttempts is the number of generate and reserve rounds before giving up.
func (g *Generator) MaxAttempts() int {
	return g.maxAttempts
}

// Generate returns a random candidate code. The candidate is not guaranteed
// to be unique until it is reserved.
func (g *Generator) Generate() (string, error) {
	const op = "shortcode.Generator.Generate"

	code, err := gonanoid.Generate(Alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	return code, nil
}

// Reserve claims url.ShortCode by inserting the record. It reports false
// without an error when the code is already taken, since collisions are an
// expected and retried condition.
func (g *Generator) Reserve(ctx context.Context, claimer Claimer, url *entity.URL) (*entity.URL, bool, error) {
	const op = "shortcode.Generator.Reserve"

	created, err := claimer.Create(ctx, url)
	if err != nil {
		if errors.Is(err, entity.ErrShortCodeExists) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%s: failed to claim short code: %w", op, err)
	}

	return created, true, nil
}

// ValidateCustom checks a user supplied code. It returns a *entity.ValidationError
// for codes outside 3-20 characters, with non alphanumeric characters or
// matching a reserved word.
func (g *Generator) ValidateCustom(code string) error {
	if err := g.validate.Var(code, fmt.Sprintf("min=%d,max=%d", MinCustomLength, MaxCustomLength)); err != nil {
		return entity.NewValidationError("custom_code",
			fmt.Sprintf("must be %d-%d characters long", MinCustomLength, MaxCustomLength))
	}

	if err := g.validate.Var(code, "alphanum"); err != nil {
		return entity.NewValidationError("custom_code", "must be alphanumeric")
	}

	if _, ok := reservedWords[strings.ToLower(code)]; ok {
		return entity.NewValidationError("custom_code", fmt.Sprintf("%q is reserved", code))
	}

	return nil
}

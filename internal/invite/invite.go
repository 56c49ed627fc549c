// Package invite generates the short join codes for wishlists.
package invite

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/yashs79/wishlist-app/internal/models"
	"gorm.io/gorm"
)

const (
	CodeLength = 6

	charset     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxAttempts = 5
)

var ErrCodeExhausted = errors.New("could not allocate a unique invite code")

// NewCode returns a random 6-character uppercase alphanumeric code.
// Rejection sampling keeps the draw uniform: 252 is the largest multiple
// of len(charset) that fits in a byte.
func NewCode() (string, error) {
	const limit = 252

	code := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength)

	for len(code) < CodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}

		for _, b := range buf {
			if b >= limit {
				continue
			}

			code = append(code, charset[int(b)%len(charset)])

			if len(code) == CodeLength {
				break
			}
		}
	}

	return string(code), nil
}

// Create inserts the wishlist together with a fresh invite code in a
// single statement, so no row ever exists without a resolvable code. A
// collision with another wishlist's code is retried like Rotate.
func Create(db *gorm.DB, wishlist *models.Wishlist) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := NewCode()

		if err != nil {
			return err
		}

		wishlist.InviteCode = &code
		err = db.Create(wishlist).Error

		if err == nil {
			return nil
		}

		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		// Clear the id the failed insert may have assigned.
		wishlist.ID = 0
	}

	return ErrCodeExhausted
}

// Rotate atomically replaces the wishlist's invite code with a fresh unique
// one. The old code stops resolving the moment the update commits. A
// collision with another wishlist's code is retried a bounded number of
// times before surfacing ErrCodeExhausted.
func Rotate(db *gorm.DB, wishlist *models.Wishlist) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := NewCode()

		if err != nil {
			return err
		}

		err = db.Model(wishlist).Update("invite_code", code).Error

		if err == nil {
			wishlist.InviteCode = &code
			return nil
		}

		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}

	return ErrCodeExhausted
}

package tool

import (
	"fmt"

	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
)

const hexAlphabet = "0123456789abcdef"

var (
	txRefSuffix      = mustHexGenerator(32)
	bookingRefSuffix = mustHexGenerator(8)
)

func mustHexGenerator(length int) func() string {
	gen, err := nanoid.CustomASCII(hexAlphabet, length)
	if err != nil {
		panic(fmt.Sprintf("nanoid generator: %v", err))
	}
	return gen
}

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateTxRef combines the booking reference with 128 bits of randomness.
func GenerateTxRef(bookingReference string) string {
	return bookingReference + "-" + txRefSuffix()
}

// GenerateBookingReference synthesizes a reference for payments that arrive without one.
func GenerateBookingReference() string {
	return "booking-" + bookingRefSuffix()
}

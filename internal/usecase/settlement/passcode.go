package settlement

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var passcodeSpace = big.NewInt(1000000)

// GenerateReleasePasscode mints a one-time 6-digit numeric release passcode,
// uniform over 000000-999999.
func GenerateReleasePasscode() (string, error) {
	n, err := rand.Int(rand.Reader, passcodeSpace)
	if err != nil {
		return "", fmt.Errorf("generate release passcode: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

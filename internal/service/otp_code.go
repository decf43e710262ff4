package service

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/pquerna/otp"
)

// RandomCodeGenerator draws uniformly distributed numeric codes, zero padded
// to the configured digit count.
type RandomCodeGenerator struct {
	Digits otp.Digits
}

func NewRandomCodeGenerator() RandomCodeGenerator {
	return RandomCodeGenerator{Digits: otp.DigitsSix}
}

func (g RandomCodeGenerator) Generate() (string, error) {
	digits := g.digits()
	upper := big.NewInt(int64(math.Pow10(digits.Length())))
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", err
	}
	return digits.Format(int32(n.Int64())), nil
}

func (g RandomCodeGenerator) digits() otp.Digits {
	if g.Digits == 0 {
		return otp.DigitsSix
	}
	return g.Digits
}

func validCodeFormat(code string, digits int) bool {
	if len(code) != digits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

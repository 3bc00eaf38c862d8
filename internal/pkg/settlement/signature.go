package settlement

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidSignature = errors.New("invalid settlement signature")

// SignedReport lets players check later that a settlement they were shown
// came from this server unchanged.
type SignedReport struct {
	Report    Report `json:"report"`
	Signature string `json:"signature"`
}

func Sign(report Report, secret []byte) (SignedReport, error) {
	sig, err := computeSignature(report, secret)
	if err != nil {
		return SignedReport{}, err
	}

	return SignedReport{
		Report:    report,
		Signature: sig,
	}, nil
}

func Verify(signed SignedReport, secret []byte) error {
	expected, err := computeSignature(signed.Report, secret)
	if err != nil {
		return err
	}

	if !hmac.Equal([]byte(signed.Signature), []byte(expected)) {
		return ErrInvalidSignature
	}

	return nil
}

func computeSignature(report Report, secret []byte) (string, error) {
	marshaledReport, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	h := hmac.New(sha256.New, secret)
	h.Write(marshaledReport)

	return hex.EncodeToString(h.Sum(nil)), nil
}

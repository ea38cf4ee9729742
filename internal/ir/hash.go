package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/dcsql/internal/dcir"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainConstraint = "dcsql/constraint/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ConstraintObject converts a denial constraint to its canonical IR form.
func ConstraintObject(dc *dcir.DenialConstraint) IRObject {
	preds := make(IRArray, len(dc.Predicates))
	for i, p := range dc.Predicates {
		preds[i] = IRObject{
			"left":  refObject(p.Left),
			"op":    IRString(p.Op),
			"right": refObject(p.Right),
		}
	}
	return IRObject{
		"predicates": preds,
		"version":    IRString(IRVersion),
	}
}

func refObject(r dcir.TupleRef) IRObject {
	return IRObject{
		"tuple":  IRString(r.Tuple),
		"table":  IRString(r.Table),
		"column": IRString(r.Column),
	}
}

// ConstraintID computes the content-addressed ID of a denial constraint.
// Two texts that parse to the same AST share an ID; predicate order is part
// of the identity.
func ConstraintID(dc *dcir.DenialConstraint) (string, error) {
	if dc == nil {
		return "", fmt.Errorf("ConstraintID: nil constraint")
	}
	canonical, err := MarshalCanonical(ConstraintObject(dc))
	if err != nil {
		return "", fmt.Errorf("ConstraintID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConstraint, canonical), nil
}

// MustConstraintID is like ConstraintID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustConstraintID(dc *dcir.DenialConstraint) string {
	id, err := ConstraintID(dc)
	if err != nil {
		panic(err)
	}
	return id
}

package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Phenotype represents a Staphylococcus aureus phenotype category
type Phenotype string

const (
	PhenotypeMRSA   Phenotype = "MRSA"
	PhenotypeVRSA   Phenotype = "VRSA"
	PhenotypeWild   Phenotype = "Wild"
	PhenotypeOthers Phenotype = "others"
)

// AllPhenotypes returns every phenotype category in display order
func AllPhenotypes() []Phenotype {
	return []Phenotype{PhenotypeMRSA, PhenotypeVRSA, PhenotypeWild, PhenotypeOthers}
}

// DefaultPhenotypes returns the selection used when none is given
func DefaultPhenotypes() []Phenotype {
	return []Phenotype{PhenotypeMRSA, PhenotypeVRSA, PhenotypeWild}
}

// String returns the string representation of the phenotype
func (p Phenotype) String() string {
	return string(p)
}

// IsValid checks if the phenotype is one of the known categories
func (p Phenotype) IsValid() bool {
	switch p {
	case PhenotypeMRSA, PhenotypeVRSA, PhenotypeWild, PhenotypeOthers:
		return true
	default:
		return false
	}
}

// ParsePhenotype parses a phenotype name case-insensitively and returns its canonical spelling
func ParsePhenotype(s string) (Phenotype, error) {
	name := strings.TrimSpace(s)
	for _, p := range AllPhenotypes() {
		if strings.EqualFold(name, string(p)) {
			return p, nil
		}
	}
	return "", goerr.New("unknown phenotype", goerr.V("phenotype", s))
}

// NormalizePhenotypes drops duplicates and orders the selection like AllPhenotypes.
// A nil input stays nil so callers can tell "not given" from "empty".
func NormalizePhenotypes(selected []Phenotype) []Phenotype {
	if selected == nil {
		return nil
	}

	seen := make(map[Phenotype]bool, len(selected))
	for _, p := range selected {
		seen[p] = true
	}

	result := make([]Phenotype, 0, len(seen))
	for _, p := range AllPhenotypes() {
		if seen[p] {
			result = append(result, p)
		}
	}
	return result
}

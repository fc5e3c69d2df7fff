package dependent

import (
	"github.com/rpggio/officina/internal/domain/project"
	"github.com/rpggio/officina/internal/repository"
)

// Kind describes one family of dependent records.
type Kind struct {
	Collection   string
	Ref          project.RefField
	FallbackFile string
	// Singular and Plural are the Italian nouns used in user-facing messages.
	Singular string
	Plural   string
}

var (
	Quotes = Kind{
		Collection:   repository.CollectionQuotes,
		Ref:          project.QuoteRef,
		FallbackFile: "preventivo.pdf",
		Singular:     "preventivo",
		Plural:       "preventivi",
	}
	Contracts = Kind{
		Collection:   repository.CollectionContracts,
		Ref:          project.ContractRef,
		FallbackFile: "contratto.pdf",
		Singular:     "contratto",
		Plural:       "contratti",
	}
)

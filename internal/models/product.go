package models

import "time"

// SecurityRef is a security reference as it appears inside product documents.
// Products written by different generations of the portfolio platform carry
// different subsets of these fields; the identity resolver derives the
// canonical full ticker from whichever subset is present.
type SecurityRef struct {
	FullTicker string `json:"full_ticker,omitempty"`
	Symbol     string `json:"symbol,omitempty"`
	Exchange   string `json:"exchange,omitempty"`
	Ticker     string `json:"ticker,omitempty"`
	ISIN       string `json:"isin,omitempty"`
	Name       string `json:"name,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

// PayoffComponent is one leg of a structured product's payoff. It references
// either a single security or a basket of them.
type PayoffComponent struct {
	Type     string        `json:"type,omitempty"`
	Security *SecurityRef  `json:"security,omitempty"`
	Basket   []SecurityRef `json:"basket,omitempty"`
}

// PayoffStructure is the nested payoff description on newer products
type PayoffStructure struct {
	Components []PayoffComponent `json:"components,omitempty"`
}

// StructureSection is a generic section of a product's structure description
type StructureSection struct {
	Name       string        `json:"name,omitempty"`
	Underlying *SecurityRef  `json:"underlying,omitempty"`
	Securities []SecurityRef `json:"securities,omitempty"`
}

// Product is a portfolio product document. Only the fields the refresh
// orchestrator needs are mapped; the platform owns the rest of the schema.
//
// Security references appear in four generations of shapes: the nested
// payoff structure and its baskets, generic structure sections, and the
// legacy underlyings/baskets arrays.
type Product struct {
	ID              string             `json:"id,omitempty"`
	Name            string             `json:"name,omitempty"`
	TradeDate       time.Time          `json:"trade_date,omitempty"`
	ValueDate       time.Time          `json:"value_date,omitempty"`
	PayoffStructure *PayoffStructure   `json:"payoff_structure,omitempty"`
	Structure       []StructureSection `json:"structure,omitempty"`
	Underlyings     []SecurityRef      `json:"underlyings,omitempty"`
	Baskets         []SecurityRef      `json:"baskets,omitempty"`
}

// SecurityRefs returns every security reference in the product across all
// known schema shapes.
func (p *Product) SecurityRefs() []SecurityRef {
	var refs []SecurityRef

	if p.PayoffStructure != nil {
		for _, comp := range p.PayoffStructure.Components {
			if comp.Security != nil {
				refs = append(refs, *comp.Security)
			}
			refs = append(refs, comp.Basket...)
		}
	}

	for _, section := range p.Structure {
		if section.Underlying != nil {
			refs = append(refs, *section.Underlying)
		}
		refs = append(refs, section.Securities...)
	}

	refs = append(refs, p.Underlyings...)
	refs = append(refs, p.Baskets...)

	return refs
}

// EarliestReferenceDate returns the earlier of trade and value date, or zero
// when the product carries neither.
func (p *Product) EarliestReferenceDate() time.Time {
	switch {
	case p.TradeDate.IsZero():
		return p.ValueDate
	case p.ValueDate.IsZero():
		return p.TradeDate
	case p.ValueDate.Before(p.TradeDate):
		return p.ValueDate
	default:
		return p.TradeDate
	}
}

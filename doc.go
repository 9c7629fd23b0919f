// Package fundsxml validates FundsXML4 fund data documents.
//
// A document is decoded once into a tolerant model: missing sections,
// unreadable numbers and unreadable dates never stop decoding, they are kept
// as issues and become findings. Only a document that is not well-formed XML,
// or whose root is not FundsXML4, fails to decode.
//
// The Evaluator runs a fixed set of stateless rules over a document:
//   - Structural: mandatory sections and readable values.
//   - NAV: share class TNA sums, price times shares and ratios.
//   - Portfolio: percentage sums, totals, orphaned and duplicate positions.
//   - Asset: master data quality, bond dates and maturities.
//   - Temporal: freshness, processing delay and date ordering.
//   - Identifier: ISIN, LEI and BIC check digits and coverage.
//   - Currency: ISO 4217 codes and FX consistency.
//
// Every rule produces pass, warning or error findings keyed by the entity
// they are about. Thresholds live in named Tolerances profiles, which can be
// overlaid with YAML. The evaluation date is injected so that a report only
// depends on the document, the profile and that date.
//
// This package serves as the foundational logic for the `fxv` command-line
// tool.
package fundsxml

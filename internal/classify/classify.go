// Package classify detects business-domain categories and data-lifecycle
// stages inside normalized purpose descriptions. It is a secondary signal
// for the purpose comparator: two purposes worded differently but covering
// the same domains and lifecycle stages still score as related.
package classify

import (
	"sort"
	"strings"

	"github.com/ropatools/dedup/internal/textnorm"
)

// Domain is a business-domain category tag.
type Domain string

const (
	DomainMarketing Domain = "marketing"
	DomainHR        Domain = "hr"
	DomainFinance   Domain = "finance"
	DomainSales     Domain = "sales"
	DomainLogistics Domain = "logistics"
)

// Stage is a data-lifecycle stage tag.
type Stage string

const (
	StageCollection Stage = "collection"
	StageProcessing Stage = "processing"
	StageSharing    Stage = "sharing"
	StageStorage    Stage = "storage"
)

// Stages lists every lifecycle stage in canonical order. The purpose
// comparator's agreement score averages over exactly these four.
var Stages = []Stage{StageCollection, StageProcessing, StageSharing, StageStorage}

// domainKeywords maps each domain to the Spanish keywords that signal it.
// Matching is by whole normalized token.
var domainKeywords = map[Domain][]string{
	DomainMarketing: {"marketing", "publicidad", "promocion", "promociones", "campana", "campanas", "newsletter"},
	DomainHR:        {"empleados", "nominas", "nomina", "personal", "laboral", "laborales", "rrhh", "contratacion", "trabajadores"},
	DomainFinance:   {"contabilidad", "facturacion", "facturas", "fiscal", "pagos", "cobros", "financiera", "financiero"},
	DomainSales:     {"ventas", "clientes", "pedidos", "comercial", "comerciales", "presupuestos"},
	DomainLogistics: {"logistica", "envios", "envio", "transporte", "almacen", "distribucion", "reparto"},
}

// stagePatterns maps each lifecycle stage to substring patterns matched
// against the normalized text. Substrings (not whole tokens) so that
// Spanish inflections ("recogida", "recogemos") all hit.
var stagePatterns = map[Stage][]string{
	StageCollection: {"recogid", "recopilaci", "captaci", "obtenci"},
	StageProcessing: {"tratamient", "procesamient", "procesad", "gestion"},
	StageSharing:    {"cesion", "comunicacion", "compartir", "transferencia"},
	StageStorage:    {"almacenamient", "conservaci", "archiv", "custodia"},
}

// Domains returns the business-domain tags present in the text, sorted for
// deterministic output. The text is normalized internally.
func Domains(text string) []string {
	tokens := textnorm.Tokens(text)
	if len(tokens) == 0 {
		return nil
	}
	present := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		present[t] = true
	}

	var tags []string
	for domain, keywords := range domainKeywords {
		for _, kw := range keywords {
			if present[kw] {
				tags = append(tags, string(domain))
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// HasDomain reports whether the text carries the given domain tag.
func HasDomain(text string, domain Domain) bool {
	for _, tag := range Domains(text) {
		if tag == string(domain) {
			return true
		}
	}
	return false
}

// StagePresence reports, for each lifecycle stage, whether the text
// mentions it. The map always contains all four stages.
func StagePresence(text string) map[Stage]bool {
	normalized := textnorm.Normalize(text)
	presence := make(map[Stage]bool, len(Stages))
	for _, stage := range Stages {
		presence[stage] = false
		for _, pattern := range stagePatterns[stage] {
			if strings.Contains(normalized, pattern) {
				presence[stage] = true
				break
			}
		}
	}
	return presence
}

// StageAgreement scores how consistently two texts mention lifecycle
// stages: 1 per stage where both agree on presence or absence, averaged
// over the four stages.
func StageAgreement(a, b string) float64 {
	pa := StagePresence(a)
	pb := StagePresence(b)
	agree := 0
	for _, stage := range Stages {
		if pa[stage] == pb[stage] {
			agree++
		}
	}
	return float64(agree) / float64(len(Stages))
}

package domain

import "strings"

// MaxEnrichments caps how many times org context may be enriched per
// session. The cap is enforced mechanically rather than left advisory.
const MaxEnrichments = 3

// OrgContext accumulates organizational knowledge across the session.
// Public and internal context are append-only; the company name and
// domain track the most recent enrichment.
type OrgContext struct {
	Company            string `json:"company"`
	PublicContext      string `json:"public_context"`
	InternalContext    string `json:"internal_context"`
	LastEnrichedDomain string `json:"last_enriched_domain"`
	EnrichmentCount    int    `json:"enrichment_count"`
}

// OrgContextUpdate carries one enrichment's worth of new context.
type OrgContextUpdate struct {
	Company         string
	Domain          string
	PublicContext   string
	InternalContext string
}

// Apply merges an update into the context. Returns false without mutating
// anything when the enrichment cap has been reached.
func (c *OrgContext) Apply(u OrgContextUpdate) bool {
	if c.EnrichmentCount >= MaxEnrichments {
		return false
	}
	if u.Company != "" {
		c.Company = u.Company
	}
	if u.Domain != "" {
		c.LastEnrichedDomain = u.Domain
	}
	c.PublicContext = appendSection(c.PublicContext, u.PublicContext)
	c.InternalContext = appendSection(c.InternalContext, u.InternalContext)
	c.EnrichmentCount++
	return true
}

// SetInternal replaces the internal context wholesale. Used when loading
// a manually edited context file from disk.
func (c *OrgContext) SetInternal(text string) {
	c.InternalContext = strings.TrimSpace(text)
}

// Render produces the markdown form written to the project's context file.
func (c *OrgContext) Render() string {
	var parts []string
	if c.Company != "" {
		parts = append(parts, "# "+c.Company+"\n")
	}
	if c.PublicContext != "" {
		parts = append(parts, "## Public Context\n"+c.PublicContext+"\n")
	}
	if c.InternalContext != "" {
		parts = append(parts, "## Internal Context\n"+c.InternalContext+"\n")
	}
	return strings.Join(parts, "\n")
}

// Flatten produces the single-string form injected into retrieval context.
func (c *OrgContext) Flatten() string {
	var parts []string
	if c.Company != "" {
		parts = append(parts, c.Company)
	}
	if c.LastEnrichedDomain != "" {
		parts = append(parts, "Domain: "+c.LastEnrichedDomain)
	}
	if c.PublicContext != "" {
		parts = append(parts, c.PublicContext)
	}
	if c.InternalContext != "" {
		parts = append(parts, c.InternalContext)
	}
	return strings.Join(parts, "\n")
}

func appendSection(existing, added string) string {
	added = strings.TrimSpace(added)
	if added == "" {
		return existing
	}
	if existing == "" {
		return added
	}
	return existing + "\n\n" + added
}

package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// AssumptionType classifies what kind of claim an assumption makes.
type AssumptionType string

const (
	AssumptionTypeValue          AssumptionType = "value"
	AssumptionTypeTechnical      AssumptionType = "technical"
	AssumptionTypeStakeholderDep AssumptionType = "stakeholder_dependency"
	AssumptionTypeMarket         AssumptionType = "market"
	AssumptionTypeOrganizational AssumptionType = "organizational"
)

// Impact describes how much an assumption matters if it turns out wrong.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// Confidence describes how well-grounded an assumption currently is.
type Confidence string

const (
	ConfidenceValidated Confidence = "validated"
	ConfidenceInformed  Confidence = "informed"
	ConfidenceGuessed   Confidence = "guessed"
)

// AssumptionStatus tracks an assumption through its lifecycle.
type AssumptionStatus string

const (
	StatusActive      AssumptionStatus = "active"
	StatusAtRisk      AssumptionStatus = "at_risk"
	StatusInvalidated AssumptionStatus = "invalidated"
	StatusConfirmed   AssumptionStatus = "confirmed"
)

// Assumption is a claim that something is true but unvalidated.
// Assumptions are never deleted during a session; they persist across mode
// transitions and are mutated in place by status and confidence updates.
type Assumption struct {
	ID                  string           `json:"id"`
	Claim               string           `json:"claim"`
	Type                AssumptionType   `json:"type"`
	Impact              Impact           `json:"impact"`
	Confidence          Confidence       `json:"confidence"`
	Status              AssumptionStatus `json:"status"`
	Basis               string           `json:"basis"`
	SurfacedBy          string           `json:"surfaced_by"`
	DependsOn           []string         `json:"depends_on"`
	Dependents          []string         `json:"dependents"`
	RecommendedAction   string           `json:"recommended_action"`
	ImpliedStakeholders []string         `json:"implied_stakeholders"`
	CreatedTurn         int              `json:"created_turn"`
	LastUpdatedTurn     int              `json:"last_updated_turn"`
}

// RegisterAssumptionInput carries the caller-supplied fields for registration.
type RegisterAssumptionInput struct {
	Claim               string
	Type                AssumptionType
	Impact              Impact
	Confidence          Confidence
	Basis               string
	SurfacedBy          string
	DependsOn           []string
	RecommendedAction   string
	ImpliedStakeholders []string
}

// AssumptionRegister is the mutable graph of assumptions for one session.
// Dependents are always the transpose of DependsOn across the register:
// every edge is wired symmetrically at registration time. DependsOn entries
// that reference a nonexistent id are tolerated silently (no reverse edge).
type AssumptionRegister struct {
	Items   map[string]*Assumption `json:"items"`
	Counter int                    `json:"counter"`
}

// NewAssumptionRegister creates an empty register.
func NewAssumptionRegister() *AssumptionRegister {
	return &AssumptionRegister{Items: make(map[string]*Assumption)}
}

// Register creates a new assumption with a monotonic id ("A1", "A2", ...)
// and wires up the dependency graph.
func (r *AssumptionRegister) Register(input RegisterAssumptionInput, turn int) *Assumption {
	r.Counter++
	id := fmt.Sprintf("A%d", r.Counter)

	a := &Assumption{
		ID:                  id,
		Claim:               input.Claim,
		Type:                input.Type,
		Impact:              input.Impact,
		Confidence:          input.Confidence,
		Status:              StatusActive,
		Basis:               input.Basis,
		SurfacedBy:          input.SurfacedBy,
		DependsOn:           append([]string{}, input.DependsOn...),
		Dependents:          []string{},
		RecommendedAction:   input.RecommendedAction,
		ImpliedStakeholders: append([]string{}, input.ImpliedStakeholders...),
		CreatedTurn:         turn,
		LastUpdatedTurn:     turn,
	}

	for _, depID := range a.DependsOn {
		if dep, ok := r.Items[depID]; ok {
			dep.Dependents = append(dep.Dependents, id)
		}
	}

	r.Items[id] = a
	return a
}

// Get returns the assumption with the given id, if present.
func (r *AssumptionRegister) Get(id string) (*Assumption, bool) {
	a, ok := r.Items[id]
	return a, ok
}

// UpdateStatus sets a new status and applies the dependency cascade.
// Returns (cascade notes, found). A missing id is a recoverable condition,
// not an error: the id may come from a model hallucination.
//
// Cascade on "invalidated": every dependent currently active is forced to
// at_risk and its basis is appended (never overwritten) with a note naming
// the invalidated prerequisite. Cascade on "confirmed": every dependent at
// confidence guessed is upgraded to informed, since confirmation of a
// prerequisite is evidence, not proof, for the dependent. No cascade fires
// on other transitions.
func (r *AssumptionRegister) UpdateStatus(id string, newStatus AssumptionStatus, reason string, turn int) ([]string, bool) {
	a, ok := r.Items[id]
	if !ok {
		return nil, false
	}

	a.Status = newStatus
	a.LastUpdatedTurn = turn

	var cascade []string
	switch newStatus {
	case StatusInvalidated:
		for _, depID := range a.Dependents {
			dep, ok := r.Items[depID]
			if !ok || dep.Status != StatusActive {
				continue
			}
			dep.Status = StatusAtRisk
			dep.Basis += fmt.Sprintf("\nDependency %s was invalidated: %s", id, reason)
			dep.LastUpdatedTurn = turn
			cascade = append(cascade, fmt.Sprintf("%s flagged as at_risk", depID))
		}
	case StatusConfirmed:
		for _, depID := range a.Dependents {
			dep, ok := r.Items[depID]
			if !ok || dep.Confidence != ConfidenceGuessed {
				continue
			}
			dep.Confidence = ConfidenceInformed
			dep.LastUpdatedTurn = turn
			cascade = append(cascade, fmt.Sprintf("%s confidence upgraded to informed", depID))
		}
	}

	return cascade, true
}

// UpdateConfidence sets a new confidence level. Confidence-only updates
// never cascade. Returns false when the id is unknown.
func (r *AssumptionRegister) UpdateConfidence(id string, newConfidence Confidence, turn int) bool {
	a, ok := r.Items[id]
	if !ok {
		return false
	}
	a.Confidence = newConfidence
	a.LastUpdatedTurn = turn
	return true
}

// Sorted returns all assumptions in id order (A1, A2, ..., A10).
func (r *AssumptionRegister) Sorted() []*Assumption {
	out := make([]*Assumption, 0, len(r.Items))
	for _, a := range r.Items {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return assumptionOrdinal(out[i].ID) < assumptionOrdinal(out[j].ID)
	})
	return out
}

// Len returns the number of registered assumptions.
func (r *AssumptionRegister) Len() int {
	return len(r.Items)
}

func assumptionOrdinal(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "A"))
	if err != nil {
		return 0
	}
	return n
}

// Summary formats a one-line-per-assumption digest for the routing prompt.
// High-impact guessed assumptions are flagged as high risk.
func (r *AssumptionRegister) Summary() string {
	if len(r.Items) == 0 {
		return "No assumptions registered yet."
	}
	var b strings.Builder
	for _, a := range r.Sorted() {
		flag := ""
		if a.Impact == ImpactHigh && a.Confidence == ConfidenceGuessed {
			flag = "[HIGH RISK] "
		}
		fmt.Fprintf(&b, "%s%s: [%s/%s/%s] %s\n", flag, a.ID, a.Impact, a.Confidence, a.Status, a.Claim)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Detail formats the full register for the execution-phase prompt.
func (r *AssumptionRegister) Detail() string {
	if len(r.Items) == 0 {
		return "No assumptions registered yet."
	}
	var b strings.Builder
	for _, a := range r.Sorted() {
		fmt.Fprintf(&b, "- **%s** [%s] %s\n", a.ID, a.Type, a.Claim)
		fmt.Fprintf(&b, "  Impact: %s | Confidence: %s | Status: %s\n", a.Impact, a.Confidence, a.Status)
		fmt.Fprintf(&b, "  Basis: %s | Surfaced by: %s\n", a.Basis, a.SurfacedBy)
		fmt.Fprintf(&b, "  Depends on: %v | Action: %s\n", a.DependsOn, a.RecommendedAction)
	}
	return strings.TrimRight(b.String(), "\n")
}
